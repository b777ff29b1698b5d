package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path string
	Body map[string]string
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		captured = append(captured, capturedRequest{Path: r.URL.Path, Body: body})

		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv, &captured
}

func TestSendText(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c := NewClient("TOKEN", "606", WithBaseURL(srv.URL))

	err := c.SendText(context.Background(), "hello *world*")
	require.NoError(t, err)

	require.Len(t, *captured, 1)
	got := (*captured)[0]
	assert.Equal(t, "/botTOKEN/sendMessage", got.Path)
	assert.Equal(t, map[string]string{
		"chat_id":    "606",
		"text":       "hello *world*",
		"parse_mode": "Markdown",
	}, got.Body)
}

func TestSendPhoto(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c := NewClient("TOKEN", "606", WithBaseURL(srv.URL+"/"))

	err := c.SendPhoto(context.Background(), "https://img.example/milk.jpg", "caption")
	require.NoError(t, err)

	require.Len(t, *captured, 1)
	got := (*captured)[0]
	assert.Equal(t, "/botTOKEN/sendPhoto", got.Path)
	assert.Equal(t, map[string]string{
		"chat_id":    "606",
		"photo":      "https://img.example/milk.jpg",
		"caption":    "caption",
		"parse_mode": "Markdown",
	}, got.Body)
}

func TestNon2xxIsError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	c := NewClient("TOKEN", "606", WithBaseURL(srv.URL))

	err := c.SendText(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestOKFalseIsError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"ok":false,"description":"something odd"}`)
	c := NewClient("TOKEN", "606", WithBaseURL(srv.URL))

	err := c.SendText(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something odd")
}

func TestNotConfigured(t *testing.T) {
	assert.ErrorIs(t, NewClient("", "606").SendText(context.Background(), "hi"), ErrNotConfigured)
	assert.ErrorIs(t, NewClient("TOKEN", "").SendPhoto(context.Background(), "u", "c"), ErrNotConfigured)
}

func TestTimeoutDoesNotLeakToken(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c := NewClient("SECRET-TOKEN", "606", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))

	err := c.SendText(context.Background(), "hi")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-TOKEN")
}
