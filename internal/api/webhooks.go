package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"
)

// webhookEmitter posts best-effort JSON events to the configured URLs.
// Delivery runs off the request path with a short timeout; failures are
// dropped silently since the webhook surface is purely informational.
type webhookEmitter struct {
	urls   []string
	secret string
	client *http.Client
}

func newWebhookEmitter(urls []string, secret string) *webhookEmitter {
	return &webhookEmitter{
		urls:   urls,
		secret: secret,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (e *webhookEmitter) Emit(event string, payload map[string]any) {
	if len(e.urls) == 0 {
		return
	}
	body := map[string]any{
		"event": event,
		"at":    time.Now().UTC().Format(time.RFC3339),
		"data":  payload,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, url := range e.urls {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
			if err != nil {
				continue
			}
			req.Header.Set("Content-Type", "application/json")
			if e.secret != "" {
				mac := hmac.New(sha256.New, []byte(e.secret))
				_, _ = mac.Write(b)
				req.Header.Set("X-Parley-Signature", hex.EncodeToString(mac.Sum(nil)))
			}
			resp, err := e.client.Do(req)
			if err != nil {
				continue
			}
			_ = resp.Body.Close()
		}
	}()
}
