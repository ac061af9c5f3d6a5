package whatsapp

import (
	"encoding/base64"
	"sync"

	"gowa-gateway/pkg/log"
)

// Phase is the lifecycle state of the single WhatsApp session owned by this
// process.
type Phase string

const (
	PhaseUninitialized   Phase = "uninitialized"
	PhaseAwaitingPairing Phase = "awaiting_pairing"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseReady           Phase = "ready"
	PhaseDisconnected    Phase = "disconnected"
	PhaseAuthFailed      Phase = "auth_failed"
)

// Session tracks the connection lifecycle of the underlying client. It is
// mutated by whatsmeow event goroutines and read by HTTP handlers, so every
// access goes through the mutex. The pairing artifact (QR PNG) is held only
// while the phase is awaiting_pairing and cleared on any other transition.
type Session struct {
	mu      sync.RWMutex
	phase   Phase
	qrImage []byte
}

func NewSession() *Session {
	return &Session{phase: PhaseUninitialized}
}

// SessionSnapshot is a point-in-time copy of the session state. Snapshot
// never blocks on in-flight lifecycle work.
type SessionSnapshot struct {
	Phase   Phase
	QRImage []byte
}

func (s SessionSnapshot) Connected() bool {
	return s.Phase == PhaseReady
}

func (s SessionSnapshot) HasQRCode() bool {
	return len(s.QRImage) > 0
}

// QRDataURL renders the pairing artifact as a data URL for JSON responses.
func (s SessionSnapshot) QRDataURL() string {
	if len(s.QRImage) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(s.QRImage)
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSnapshot{Phase: s.phase, QRImage: s.qrImage}
}

// PairingCode stores a freshly issued QR image and moves the session into
// awaiting_pairing. Called again on QR rotation or after a disconnect and
// re-pair cycle.
func (s *Session) PairingCode(qrImage []byte) {
	s.transition(PhaseAwaitingPairing, qrImage)
}

func (s *Session) Authenticated() {
	s.transition(PhaseAuthenticated, nil)
}

func (s *Session) Ready() {
	s.transition(PhaseReady, nil)
}

func (s *Session) AuthFailed() {
	s.transition(PhaseAuthFailed, nil)
}

func (s *Session) Disconnected() {
	s.transition(PhaseDisconnected, nil)
}

// Reset returns the session to uninitialized after an explicit logout or
// clear-session. The machine has no terminal state: the caller re-arms it by
// scheduling a fresh client initialization.
func (s *Session) Reset() {
	s.transition(PhaseUninitialized, nil)
}

func (s *Session) transition(next Phase, qrImage []byte) {
	s.mu.Lock()
	previous := s.phase
	s.phase = next
	s.qrImage = qrImage
	s.mu.Unlock()

	if previous != next {
		log.SessionOp("transition").
			WithField("from", string(previous)).
			WithField("to", string(next)).
			Info("Session phase changed")
	}
}
