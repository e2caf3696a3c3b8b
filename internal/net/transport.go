package net

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait   = 5 * time.Second
	sendBacklog = 16
)

// Peer is one websocket subscriber of the feed.
type Peer struct {
	Conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func newPeer(conn *websocket.Conn) *Peer {
	return &Peer{Conn: conn, send: make(chan []byte, sendBacklog)}
}

func (p *Peer) addr() string {
	return p.Conn.RemoteAddr().String()
}

func (p *Peer) close() {
	p.once.Do(func() {
		close(p.send)
		p.Conn.Close()
	})
}

// writeLoop delivers queued messages until the queue is closed or a
// write fails.
func (p *Peer) writeLoop(pm *PeerManager) {
	for msg := range p.send {
		p.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("[FEED] Error sending to %s: %v", p.addr(), err)
			pm.Remove(p)
			return
		}
	}
}

// PeerManager tracks the connected subscribers.
type PeerManager struct {
	peers map[*Peer]struct{}
	mu    sync.RWMutex
}

// NewPeerManager creates a new manager.
func NewPeerManager() *PeerManager {
	return &PeerManager{
		peers: make(map[*Peer]struct{}),
	}
}

// Add registers a subscriber.
func (pm *PeerManager) Add(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.peers[peer] = struct{}{}
	log.Printf("[FEED] Subscriber connected from %s", peer.addr())
}

// Remove drops a subscriber and closes its connection. Removing an
// unknown peer is a no-op.
func (pm *PeerManager) Remove(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, ok := pm.peers[peer]; !ok {
		return
	}
	delete(pm.peers, peer)
	peer.close()
	log.Printf("[FEED] Subscriber %s removed", peer.addr())
}

// Len returns the number of connected subscribers.
func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Broadcast queues data for every subscriber. Subscribers whose queue
// is full are dropped.
func (pm *PeerManager) Broadcast(data []byte) {
	var slow []*Peer
	pm.mu.RLock()
	for p := range pm.peers {
		select {
		case p.send <- data:
		default:
			slow = append(slow, p)
		}
	}
	pm.mu.RUnlock()

	for _, p := range slow {
		log.Printf("[FEED] Dropping slow subscriber %s", p.addr())
		pm.Remove(p)
	}
}

// CloseAll disconnects every subscriber.
func (pm *PeerManager) CloseAll() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for p := range pm.peers {
		delete(pm.peers, p)
		p.close()
	}
}
