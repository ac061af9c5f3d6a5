package message

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"gowa-gateway/pkg/router"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: router.HttpErrorHandler})
	app.Post("/api/send-message", SendMessage)
	app.Post("/api/send-batch-message", SendBatchMessage)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

// The session in this test process is never initialized, so every send must
// be rejected before the underlying client is touched.
func TestSendMessage_NotReadyReturns400(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/api/send-message", `{"number":"628111222333","message":"hello"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body router.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Success {
		t.Error("not-ready response must have success=false")
	}
	if !strings.Contains(body.Message, "not ready") {
		t.Errorf("expected not-ready message, got %q", body.Message)
	}
	if body.Error == "" {
		t.Error("failure responses must carry error text")
	}
}

func TestSendBatchMessage_NotReadyReturns400(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/api/send-batch-message", `{"recipients":["628111"],"message":"hello"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body router.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Success {
		t.Error("not-ready response must have success=false")
	}
}
