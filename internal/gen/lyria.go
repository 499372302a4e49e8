package gen

// lyria.go calls the Lyria music model through its Vertex AI REST endpoint.
// The Gemini SDK has no music surface, so this is a direct HTTP client in
// the same shape as the image REST clients elsewhere in the codebase.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// lyriaSeed pins the sampler so regenerating a project keeps the same score.
const lyriaSeed = 98765

// LyriaClient generates background music from a text prompt.
type LyriaClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewLyriaClient builds a client for the given prediction endpoint. token is
// the bearer token for the endpoint's project.
func NewLyriaClient(endpoint, token string) *LyriaClient {
	return &LyriaClient{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type lyriaInstance struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Seed           int    `json:"seed"`
}

type lyriaRequest struct {
	Instances  []lyriaInstance `json:"instances"`
	Parameters struct{}        `json:"parameters"`
}

type lyriaResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
}

// Generate renders a WAV track for the prompt.
func (c *LyriaClient) Generate(ctx context.Context, prompt, negativePrompt string) ([]byte, error) {
	body, err := json.Marshal(lyriaRequest{
		Instances: []lyriaInstance{{
			Prompt:         prompt,
			NegativePrompt: negativePrompt,
			Seed:           lyriaSeed,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal lyria request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build lyria request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call lyria endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read lyria response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lyria endpoint returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed lyriaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse lyria response: %w", err)
	}
	if len(parsed.Predictions) == 0 || parsed.Predictions[0].BytesBase64Encoded == "" {
		return nil, fmt.Errorf("no audio in lyria response")
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("decode lyria audio: %w", err)
	}

	log.Info().Int("bytes", len(audio)).Dur("duration", time.Since(start)).
		Msg("Background score generated")
	return audio, nil
}
