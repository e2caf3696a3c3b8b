// Package net publishes the foreground annotation to websocket
// subscribers on the local network.
package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"annotator/internal/state"

	"github.com/gorilla/websocket"
)

// Message is the JSON frame sent to subscribers.
type Message struct {
	Type       string           `json:"type"`
	Session    string           `json:"session"`
	Annotation state.Annotation `json:"annotation"`
}

// Feed is an http.Handler that upgrades requests to websocket
// subscriptions. New subscribers first receive the last published
// snapshot.
type Feed struct {
	Peers *PeerManager

	upgrader websocket.Upgrader
	mu       sync.Mutex
	last     []byte
}

// NewFeed creates a feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{
		Peers: NewPeerManager(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Publish sends a snapshot of a to every subscriber.
func (f *Feed) Publish(a state.Annotation) error {
	data, err := json.Marshal(Message{
		Type:       "annotation",
		Session:    state.SessionID(),
		Annotation: a.Clone(),
	})
	if err != nil {
		return fmt.Errorf("encode annotation: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = data
	f.Peers.Broadcast(data)
	return nil
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[FEED] Upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	p := newPeer(conn)

	f.mu.Lock()
	if f.last != nil {
		p.send <- f.last
	}
	f.Peers.Add(p)
	f.mu.Unlock()

	go p.writeLoop(f.Peers)

	// Subscribers never send; reading only detects the close.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	f.Peers.Remove(p)
}

// Close disconnects every subscriber.
func (f *Feed) Close() {
	f.Peers.CloseAll()
}

// Serve runs an HTTP server for h on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	log.Printf("[FEED] Listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// PortOf returns the numeric port of a listen address such as ":8899".
func PortOf(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(port)
}
