package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/infra/media"
	"character-match-service/internal/infra/memory"
	"character-match-service/internal/seed"
	"go.uber.org/zap"
)

const testToken = "secret-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, time.Now, media.CopyTransformer{})
}

// newTestServerWith wires the API around the given clock and portrait
// transformer.
func newTestServerWith(t *testing.T, now func() time.Time, transformer app.ImageTransformer) *httptest.Server {
	t.Helper()
	catalog := memory.NewCatalog()
	if err := seed.Apply(context.Background(), catalog, now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	events := app.NewEventHub()
	blobs := memory.NewBlobStore()
	sessions := app.NewSessionService(memory.NewSessionStore(), catalog, events, zap.NewNop()).WithClock(now)
	results := app.NewResultService(sessions, memory.NewResultStore(), blobs, transformer, events, zap.NewNop()).WithClock(now)
	api := NewAPI(app.NewCatalogService(catalog, zap.NewNop()), sessions, results, blobs, events, Options{
		AdminToken:     testToken,
		MaxUploadBytes: 1 << 20,
		CORSOrigin:     "*",
	}, zap.NewNop())

	server := httptest.NewServer(api.Routes())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func createSession(t *testing.T, server *httptest.Server) string {
	t.Helper()
	var created struct {
		SessionID string    `json:"session_id"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if status := doJSON(t, http.MethodPost, server.URL+"/session", nil, &created); status != http.StatusOK {
		t.Fatalf("create session: status %d", status)
	}
	if created.SessionID == "" || created.ExpiresAt.IsZero() {
		t.Fatalf("unexpected session payload %+v", created)
	}
	return created.SessionID
}

// testClock is a settable time source for expiry tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func uploadSelfie(t *testing.T, server *httptest.Server, sessionID, contentType string, data []byte) (int, map[string]string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("session_id", sessionID); err != nil {
		t.Fatalf("write field: %v", err)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="selfie"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	resp, err := http.Post(server.URL+"/upload/selfie", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}
