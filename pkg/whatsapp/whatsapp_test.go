package whatsapp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.mau.fi/whatsmeow"
)

func TestPurgeSession_SucceedsWhenTeardownFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "whatsapp.db"), []byte("creds"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	teardown := func() error { return errors.New("socket closed") }
	if err := purgeSession(teardown, os.RemoveAll, dir); err != nil {
		t.Fatalf("teardown failure must not fail the purge, got %v", err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("session directory should be removed, stat returned %v", err)
	}
}

func TestPurgeSession_SurfacesRemovalFailure(t *testing.T) {
	removeErr := errors.New("permission denied")
	teardownCalled := false

	err := purgeSession(
		func() error { teardownCalled = true; return nil },
		func(string) error { return removeErr },
		"ignored",
	)

	if !teardownCalled {
		t.Error("teardown should run before the removal attempt")
	}
	if !errors.Is(err, removeErr) {
		t.Errorf("removal failure must surface, got %v", err)
	}
}

// A pump left over from a torn-down client must not touch the session.
func TestPumpQRChannel_StaleClientLeavesSessionUntouched(t *testing.T) {
	session.Reset()
	defer session.Reset()

	stale := &whatsmeow.Client{}
	qrChan := make(chan whatsmeow.QRChannelItem, 1)
	qrChan <- whatsmeow.QRChannelItem{Event: "code", Code: "stale-pairing-code"}
	close(qrChan)

	pumpQRChannel(stale, qrChan)

	snap := session.Snapshot()
	if snap.Phase != PhaseUninitialized || snap.HasQRCode() {
		t.Errorf("stale pump must drop events, got phase=%q hasQR=%v", snap.Phase, snap.HasQRCode())
	}
}

func TestPumpQRChannel_CurrentClientStoresPairingCode(t *testing.T) {
	session.Reset()
	defer session.Reset()

	current := &whatsmeow.Client{}
	clientMu.Lock()
	client = current
	clientMu.Unlock()
	defer func() {
		clientMu.Lock()
		client = nil
		clientMu.Unlock()
	}()

	qrChan := make(chan whatsmeow.QRChannelItem, 1)
	qrChan <- whatsmeow.QRChannelItem{Event: "code", Code: "2@pairing-code"}
	close(qrChan)

	pumpQRChannel(current, qrChan)

	snap := session.Snapshot()
	if snap.Phase != PhaseAwaitingPairing || !snap.HasQRCode() {
		t.Errorf("current pump should store the artifact, got phase=%q hasQR=%v", snap.Phase, snap.HasQRCode())
	}
}
