package state

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	sessionID = uuid.NewString()
	lineSeq   uint64
)

// SessionID identifies this running instance in published snapshots.
func SessionID() string {
	return sessionID
}

// NewLineID returns a unique identifier for a freshly started stroke.
func NewLineID() string {
	n := atomic.AddUint64(&lineSeq, 1)
	return fmt.Sprintf("%s-%d", uuid.NewString()[:8], n)
}
