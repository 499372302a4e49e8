package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akakura-hackathon/LocAIver/internal/pipeline"
	"github.com/akakura-hackathon/LocAIver/internal/story"
)

func newTestServer() http.Handler {
	return New(pipeline.New(pipeline.Options{})).Router()
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("request id header missing")
	}
}

func TestInvalidJSONRejected(t *testing.T) {
	for _, path := range []string{"/form", "/chat", "/chat-fin", "/edit", "/video"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{not json"))
			newTestServer().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "error") {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestMissingProjectFolderRejected(t *testing.T) {
	for _, path := range []string{"/chat-fin", "/edit", "/video"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
			newTestServer().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestChatRequestLatest(t *testing.T) {
	tests := []struct {
		name string
		req  chatRequest
		want string
	}{
		{"message field wins", chatRequest{Message: "a", Input: "b"}, "a"},
		{"input alias", chatRequest{Input: "b"}, "b"},
		{"last user entry", chatRequest{Messages: []story.ChatMessage{
			{Role: "user", Text: "first"},
			{Role: "assistant", Text: "reply"},
			{Role: "user", Content: "second"},
		}}, "second"},
		{"empty", chatRequest{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.latest(); got != tt.want {
				t.Errorf("latest() = %q, want %q", got, tt.want)
			}
		})
	}
}
