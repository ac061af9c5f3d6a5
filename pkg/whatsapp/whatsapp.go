package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	qrCode "github.com/skip2/go-qrcode"
	"golang.org/x/sync/singleflight"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waCompanionReg"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"gowa-gateway/pkg/env"
	"gowa-gateway/pkg/log"
)

var (
	clientMu  sync.Mutex
	client    *whatsmeow.Client
	datastore *sqlstore.Container

	// sendMu serializes all sends: the connection is a process-wide
	// exclusive resource and concurrent HTTP requests must not interleave
	// calls against it.
	sendMu sync.Mutex

	session = NewSession()

	reinitGroup singleflight.Group

	sessionPath string
)

const (
	qrImageSize          = 256
	logoutRequestTimeout = 30 * time.Second
	storeDeleteTimeout   = 5 * time.Second
	lookupTimeout        = 15 * time.Second
)

var ErrClientNotInitialized = errors.New("whatsapp client is not initialized")

// GetState returns a read-only snapshot of the session lifecycle.
func GetState() SessionSnapshot {
	return session.Snapshot()
}

// IsReady reports whether the session can send messages.
func IsReady() bool {
	return session.Snapshot().Connected()
}

// SessionPath is the directory holding the persisted session credentials.
// Clear-session deletes it wholesale.
func SessionPath() string {
	if sessionPath == "" {
		sessionPath = env.GetEnvStringOrDefault("SESSION_PATH", "./session")
	}
	return sessionPath
}

// InitDatastore opens the whatsmeow credential store, an SQLite database
// inside the session directory.
func InitDatastore(ctx context.Context) error {
	clientMu.Lock()
	defer clientMu.Unlock()
	return initDatastoreLocked(ctx)
}

func initDatastoreLocked(ctx context.Context) error {
	if datastore != nil {
		return nil
	}

	path := SessionPath()
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	dsn := "file:" + filepath.Join(path, "whatsapp.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)"
	container, err := sqlstore.New(ctx, "sqlite", dsn, nil)
	if err != nil {
		return fmt.Errorf("open session datastore: %w", err)
	}
	if err := container.Upgrade(ctx); err != nil {
		return fmt.Errorf("upgrade session datastore schema: %w", err)
	}

	datastore = container
	log.SessionOp("InitDatastore").Info("Session datastore is ok")
	return nil
}

// InitClient builds and connects the single client. Any previous client is
// fully torn down first; at most one connection is active per process.
func InitClient(ctx context.Context) error {
	clientMu.Lock()
	defer clientMu.Unlock()

	teardownLocked()

	if err := initDatastoreLocked(ctx); err != nil {
		return err
	}

	device, err := datastore.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("load device from datastore: %w", err)
	}

	store.DeviceProps.Os = proto.String(runtime.GOOS)
	store.DeviceProps.PlatformType = waCompanionReg.DeviceProps_CHROME.Enum()
	store.DeviceProps.RequireFullSync = proto.Bool(false)

	c := whatsmeow.NewClient(device, nil)
	c.EnableAutoReconnect = true
	c.AutoTrustIdentity = true
	c.AddEventHandler(handleEvents)

	if c.Store.ID == nil {
		// Unpaired: the QR channel must be requested before Connect.
		qrChan, err := c.GetQRChannel(context.Background())
		if err != nil {
			return fmt.Errorf("open qr channel: %w", err)
		}
		if err := c.Connect(); err != nil {
			return fmt.Errorf("connect for pairing: %w", err)
		}
		go pumpQRChannel(c, qrChan)
	} else {
		if err := c.Connect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}

	client = c
	return nil
}

// teardownLocked disconnects and drops the current client. Callers hold
// clientMu.
func teardownLocked() {
	if client == nil {
		return
	}
	client.RemoveEventHandlers()
	client.Disconnect()
	client = nil
}

func currentClient() *whatsmeow.Client {
	clientMu.Lock()
	defer clientMu.Unlock()
	return client
}

// pumpQRChannel feeds pairing codes from the client into the session state
// machine until the channel closes. Errors never escape: a bad code leaves
// the artifact absent and the flow degrades to "not yet ready". Once c is no
// longer the current client the channel is drained without touching the
// session, so a torn-down pump cannot push stale transitions.
func pumpQRChannel(c *whatsmeow.Client, qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		if currentClient() != c {
			continue
		}
		switch evt.Event {
		case "code":
			qrImage, err := qrCode.Encode(evt.Code, qrCode.Medium, qrImageSize)
			if err != nil {
				log.SessionOp("PairingCode").WithError(err).Error("Failed to encode QR code image")
				continue
			}
			session.PairingCode(qrImage)
		case whatsmeow.QRChannelSuccess.Event:
			session.Authenticated()
		case whatsmeow.QRChannelTimeout.Event:
			log.SessionOp("PairingCode").Warn("QR channel timed out, scheduling re-initialization")
			session.AuthFailed()
			ScheduleReinit()
		default:
			if evt.Error != nil {
				log.SessionOp("PairingCode").WithError(evt.Error).Error("QR channel reported an error")
			}
			session.AuthFailed()
			ScheduleReinit()
		}
	}
}

func handleEvents(evt interface{}) {
	switch e := evt.(type) {
	case *events.PairSuccess:
		log.SessionOp("PairSuccess").Info("Device paired: " + e.ID.String())
		session.Authenticated()
	case *events.Connected:
		log.SessionOp("Connected").Info("Client connected and ready")
		session.Ready()
	case *events.Disconnected:
		log.SessionOp("Disconnected").Warn("Client disconnected")
		session.Disconnected()
	case *events.StreamReplaced:
		log.SessionOp("StreamReplaced").Warn("Stream replaced by another connection")
		session.Disconnected()
	case *events.LoggedOut:
		// Remote logout from the paired phone. Credentials are only purged
		// by an explicit clear-session.
		log.SessionOp("LoggedOut").Warn("Logged out by remote device")
		session.Disconnected()
	case *events.ConnectFailure:
		log.SessionOp("ConnectFailure").Error(fmt.Sprintf("Connection failure: reason=%s, message=%s", e.Reason, e.Message))
		session.AuthFailed()
	}
}

// ScheduleReinit re-arms the session after a settle delay. Concurrent
// resets collapse into a single re-initialization.
func ScheduleReinit() {
	delay := env.GetEnvDurationOrDefault("WHATSAPP_RECONNECT_SETTLE_DELAY", 2*time.Second)
	time.AfterFunc(delay, func() {
		_, err, _ := reinitGroup.Do("reinit", func() (interface{}, error) {
			return nil, InitClient(context.Background())
		})
		if err != nil {
			log.SessionOp("Reinit").WithError(err).Error("Failed to re-initialize client, scheduling retry")
			ScheduleReinit()
		}
	})
}

// Logout signs the device out of the network, tears the connection down and
// re-arms the session. A missing client is a no-op success.
func Logout(ctx context.Context) error {
	clientMu.Lock()
	c := client
	client = nil
	clientMu.Unlock()

	var logoutErr error
	if c != nil {
		if c.Store.ID != nil {
			logoutCtx, cancel := context.WithTimeout(ctx, logoutRequestTimeout)
			logoutErr = c.Logout(logoutCtx)
			cancel()
		}
		c.RemoveEventHandlers()
		c.Disconnect()
	}

	session.Reset()
	ScheduleReinit()
	return logoutErr
}

// ClearSession tears down the connection best-effort, purges the persisted
// session directory and re-arms. Teardown errors are logged and swallowed;
// only a failed directory removal fails the call.
func ClearSession(ctx context.Context) error {
	clientMu.Lock()
	c := client
	client = nil
	ds := datastore
	datastore = nil
	clientMu.Unlock()

	teardown := func() error {
		var firstErr error
		if c != nil {
			c.RemoveEventHandlers()
			c.Disconnect()
			deleteCtx, cancel := context.WithTimeout(ctx, storeDeleteTimeout)
			if err := c.Store.Delete(deleteCtx); err != nil {
				firstErr = fmt.Errorf("delete device store: %w", err)
			}
			cancel()
		}
		if ds != nil {
			if err := ds.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close session datastore: %w", err)
			}
		}
		return firstErr
	}

	if err := purgeSession(teardown, os.RemoveAll, SessionPath()); err != nil {
		return err
	}

	session.Reset()
	ScheduleReinit()
	return nil
}

// purgeSession runs the best-effort teardown and then removes the session
// directory. A teardown failure is logged and swallowed; only a failed
// removal fails the purge, since the endpoint's one hard promise is that
// durable state is gone.
func purgeSession(teardown func() error, removeAll func(string) error, dir string) error {
	if err := teardown(); err != nil {
		log.SessionOp("ClearSession").WithError(err).Warn("Teardown failed, continuing with purge")
	}
	if err := removeAll(dir); err != nil {
		return fmt.Errorf("remove session directory: %w", err)
	}
	return nil
}

// SendText sends one text message to an already-resolved canonical chat
// identifier and returns the network message ID.
func SendText(ctx context.Context, canonicalID string, body string) (string, error) {
	sendMu.Lock()
	defer sendMu.Unlock()

	c := currentClient()
	if c == nil {
		return "", ErrClientNotInitialized
	}

	chatJID, err := types.ParseJID(canonicalID)
	if err != nil {
		return "", fmt.Errorf("parse chat identifier %q: %w", canonicalID, err)
	}

	resp, err := c.SendMessage(ctx, chatJID, &waE2E.Message{
		Conversation: proto.String(body),
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// clientLookup adapts the live client to the resolver's lookup seam.
type clientLookup struct{}

func (clientLookup) LookupRegistered(ctx context.Context, number string) (string, bool, error) {
	c := currentClient()
	if c == nil {
		return "", false, ErrClientNotInitialized
	}

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	infos, err := c.IsOnWhatsApp(lookupCtx, []string{"+" + number})
	if err != nil {
		return "", false, err
	}
	if len(infos) == 0 || !infos[0].IsIn {
		return "", false, nil
	}
	return infos[0].JID.String(), true, nil
}

// NewResolver returns a resolver backed by the live client connection.
func NewResolver() *Resolver {
	return &Resolver{Lookup: clientLookup{}}
}

type senderFunc func(ctx context.Context, canonicalID string, body string) (string, error)

func (f senderFunc) SendText(ctx context.Context, canonicalID string, body string) (string, error) {
	return f(ctx, canonicalID, body)
}

// NewDispatcher returns a batch dispatcher wired to the live client.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Resolver: NewResolver(),
		Sender:   senderFunc(SendText),
	}
}

// HealthCheck marks the session disconnected when the ready phase no longer
// matches the socket state. Run periodically from a cron routine.
func HealthCheck() {
	if !session.Snapshot().Connected() {
		return
	}
	c := currentClient()
	if c == nil || !c.IsConnected() {
		log.SessionOp("HealthCheck").Warn("Session marked ready but connection is down")
		session.Disconnected()
	}
}
