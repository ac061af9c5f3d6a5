package whatsapp

import (
	"strings"
	"testing"
)

func TestNewSession_StartsUninitialized(t *testing.T) {
	s := NewSession()

	snap := s.Snapshot()
	if snap.Phase != PhaseUninitialized {
		t.Errorf("expected phase %q, got %q", PhaseUninitialized, snap.Phase)
	}
	if snap.HasQRCode() {
		t.Error("fresh session should not carry a QR image")
	}
	if snap.Connected() {
		t.Error("fresh session should not report connected")
	}
}

func TestSession_PairingCodeStoresArtifact(t *testing.T) {
	s := NewSession()
	s.PairingCode([]byte{0x89, 0x50, 0x4e, 0x47})

	snap := s.Snapshot()
	if snap.Phase != PhaseAwaitingPairing {
		t.Fatalf("expected phase %q, got %q", PhaseAwaitingPairing, snap.Phase)
	}
	if !snap.HasQRCode() {
		t.Fatal("pairing artifact should be present while awaiting pairing")
	}
	if !strings.HasPrefix(snap.QRDataURL(), "data:image/png;base64,") {
		t.Errorf("unexpected data URL: %q", snap.QRDataURL())
	}
}

func TestSession_TransitionsClearArtifact(t *testing.T) {
	transitions := map[string]func(*Session){
		"authenticated": (*Session).Authenticated,
		"ready":         (*Session).Ready,
		"auth_failed":   (*Session).AuthFailed,
		"disconnected":  (*Session).Disconnected,
		"reset":         (*Session).Reset,
	}

	for name, apply := range transitions {
		s := NewSession()
		s.PairingCode([]byte("qr"))
		apply(s)

		if s.Snapshot().HasQRCode() {
			t.Errorf("%s: artifact should be cleared on leaving awaiting_pairing", name)
		}
	}
}

func TestSession_ArtifactOnlyWhileAwaitingPairing(t *testing.T) {
	s := NewSession()

	// Walk the full pairing lifecycle and check the invariant at each step.
	steps := []struct {
		name  string
		apply func()
	}{
		{"pairing", func() { s.PairingCode([]byte("qr1")) }},
		{"authenticated", s.Authenticated},
		{"ready", s.Ready},
		{"disconnected", s.Disconnected},
		{"re-pair", func() { s.PairingCode([]byte("qr2")) }},
		{"reset", s.Reset},
	}

	for _, step := range steps {
		step.apply()
		snap := s.Snapshot()
		awaiting := snap.Phase == PhaseAwaitingPairing
		if awaiting != snap.HasQRCode() {
			t.Errorf("%s: artifact presence (%v) must match awaiting_pairing (%v)",
				step.name, snap.HasQRCode(), awaiting)
		}
	}
}

func TestSession_RepairCycleRepopulatesArtifact(t *testing.T) {
	s := NewSession()
	s.PairingCode([]byte("first"))
	s.Ready()

	if s.Snapshot().HasQRCode() {
		t.Fatal("artifact should be cleared on ready")
	}

	s.Disconnected()
	s.PairingCode([]byte("second"))

	snap := s.Snapshot()
	if snap.Phase != PhaseAwaitingPairing || string(snap.QRImage) != "second" {
		t.Errorf("re-pair should repopulate the artifact, got phase=%q image=%q", snap.Phase, snap.QRImage)
	}
}

func TestSession_ReadyIsIdempotentOnArtifact(t *testing.T) {
	s := NewSession()
	s.PairingCode([]byte("qr"))
	s.Authenticated()
	s.Ready()
	s.Ready()

	snap := s.Snapshot()
	if snap.Phase != PhaseReady || snap.HasQRCode() {
		t.Errorf("expected ready with no artifact, got phase=%q hasQR=%v", snap.Phase, snap.HasQRCode())
	}
}

func TestSessionSnapshot_EmptyDataURL(t *testing.T) {
	if url := (SessionSnapshot{}).QRDataURL(); url != "" {
		t.Errorf("expected empty data URL without artifact, got %q", url)
	}
}
