package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookEmitterDeliversSignedEvents(t *testing.T) {
	type delivery struct {
		body      []byte
		signature string
	}
	received := make(chan delivery, 1)
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received <- delivery{body: b, signature: r.Header.Get("X-Parley-Signature")}
	}))
	defer target.Close()

	emitter := newWebhookEmitter([]string{target.URL}, "s3cret")
	emitter.Emit("message.sent", map[string]any{"id": 1, "from": "alice", "to": "bob"})

	var got delivery
	select {
	case got = <-received:
	case <-time.After(5 * time.Second):
		t.Fatalf("webhook never delivered")
	}

	var payload struct {
		Event string         `json:"event"`
		At    string         `json:"at"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("decode webhook body: %v", err)
	}
	if payload.Event != "message.sent" || payload.At == "" {
		t.Fatalf("unexpected webhook payload: %+v", payload)
	}
	if payload.Data["from"] != "alice" {
		t.Fatalf("unexpected data: %+v", payload.Data)
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	_, _ = mac.Write(got.body)
	if got.signature != hex.EncodeToString(mac.Sum(nil)) {
		t.Fatalf("signature mismatch")
	}
}

func TestWebhookEmitterNoURLsIsNoop(t *testing.T) {
	emitter := newWebhookEmitter(nil, "")
	// Must not panic or block.
	emitter.Emit("agent.registered", map[string]any{"name": "alice"})
}
