package gen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLyriaGenerate(t *testing.T) {
	audio := []byte("RIFF....WAVE")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var req lyriaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Instances) != 1 || req.Instances[0].Prompt != "calm piano" {
			t.Errorf("instances = %+v", req.Instances)
		}
		if req.Instances[0].Seed != lyriaSeed {
			t.Errorf("seed = %d, want %d", req.Instances[0].Seed, lyriaSeed)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"predictions": []map[string]string{
				{"bytesBase64Encoded": base64.StdEncoding.EncodeToString(audio)},
			},
		})
	}))
	defer srv.Close()

	c := NewLyriaClient(srv.URL, "tok")
	got, err := c.Generate(context.Background(), "calm piano", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(got) != string(audio) {
		t.Errorf("audio = %q, want %q", got, audio)
	}
}

func TestLyriaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewLyriaClient(srv.URL, "tok")
	if _, err := c.Generate(context.Background(), "p", ""); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestLyriaGenerateEmptyPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"predictions": []}`))
	}))
	defer srv.Close()

	c := NewLyriaClient(srv.URL, "tok")
	if _, err := c.Generate(context.Background(), "p", ""); err == nil {
		t.Fatal("expected error on empty predictions")
	}
}
