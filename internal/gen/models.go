package gen

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/akakura-hackathon/LocAIver/internal/config"
	"github.com/akakura-hackathon/LocAIver/internal/prompt"
)

// veoPollInterval is how often a pending video operation is polled.
const veoPollInterval = 10 * time.Second

// Models wraps the Gemini SDK client with the model routing for each
// generation unit.
type Models struct {
	client          *genai.Client
	textModel       string
	portraitModel   string
	sceneImageModel string
	videoModel      string
}

// NewModels builds the Gemini client from config.
func NewModels(ctx context.Context, cfg *config.Config) (*Models, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Models{
		client:          client,
		textModel:       cfg.TextModel,
		portraitModel:   cfg.PortraitModel,
		sceneImageModel: cfg.SceneImageModel,
		videoModel:      cfg.VideoModel,
	}, nil
}

// GenerateText sends a plain text prompt and returns the response text.
func (m *Models) GenerateText(ctx context.Context, p string) (string, error) {
	return m.generateText(ctx, p, nil)
}

// GenerateTextWithSystem sends a text prompt under a system instruction.
func (m *Models) GenerateTextWithSystem(ctx context.Context, system, p string) (string, error) {
	return m.generateText(ctx, p, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
}

func (m *Models) generateText(ctx context.Context, p string, cfg *genai.GenerateContentConfig) (string, error) {
	start := time.Now()
	resp, err := m.client.Models.GenerateContent(ctx, m.textModel, genai.Text(p), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from %s", m.textModel)
	}
	log.Debug().Str("model", m.textModel).Int("prompt_len", len(p)).
		Int("response_len", len(text)).Dur("duration", time.Since(start)).
		Msg("Text generated")
	return text, nil
}

// Sanitize rewrites a rejected generation prompt into a safe one. Implements
// the executor's Sanitizer.
func (m *Models) Sanitize(ctx context.Context, p string) (string, error) {
	temp := float32(0)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.SanitizeSystem, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   256,
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.textModel, genai.Text(p), cfg)
	if err != nil {
		return "", fmt.Errorf("sanitize prompt: %w", err)
	}
	safe := resp.Text()
	if safe == "" {
		return "", fmt.Errorf("empty sanitize response")
	}
	return safe, nil
}

// GeneratePortrait renders the character portrait with the image model.
func (m *Models) GeneratePortrait(ctx context.Context, p, negative, aspectRatio string) ([]byte, error) {
	resp, err := m.client.Models.GenerateImages(ctx, m.portraitModel, p, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio,
		NegativePrompt: negative,
	})
	if err != nil {
		return nil, fmt.Errorf("generate portrait: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("no image in portrait response")
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// GenerateSceneImage renders one scene image. When portrait is non-nil it is
// attached so the character stays consistent across scenes; the multimodal
// model returns the composed image inline.
func (m *Models) GenerateSceneImage(ctx context.Context, p string, portrait []byte) ([]byte, error) {
	parts := []*genai.Part{genai.NewPartFromText(p)}
	if portrait != nil {
		parts = append(parts, genai.NewPartFromBytes(portrait, "image/png"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := m.client.Models.GenerateContent(ctx, m.sceneImageModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("generate scene image: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	// The model sometimes answers with text only; retryable.
	return nil, fmt.Errorf("no image part in scene response")
}

// GenerateClip renders one video clip from a still image, polling the async
// operation until it settles. Safety-filtered results surface as a
// PolicyRejectionError so the executor rewrites the prompt instead of
// retrying it verbatim.
func (m *Models) GenerateClip(ctx context.Context, p string, image []byte, aspectRatio string, seconds int) ([]byte, error) {
	duration := int32(seconds)
	firstFrame := &genai.Image{ImageBytes: image, MIMEType: "image/png"}
	cfg := &genai.GenerateVideosConfig{
		AspectRatio:      aspectRatio,
		NumberOfVideos:   1,
		DurationSeconds:  &duration,
		PersonGeneration: "allow_all",
	}

	op, err := m.client.Models.GenerateVideos(ctx, m.videoModel, p, firstFrame, cfg)
	if err != nil {
		return nil, fmt.Errorf("start video generation: %w", err)
	}
	log.Debug().Str("operation", op.Name).Msg("Video operation started")

	polls := 0
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("video generation cancelled: %w", ctx.Err())
		case <-time.After(veoPollInterval):
		}
		polls++
		op, err = m.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, fmt.Errorf("poll video operation: %w", err)
		}
	}

	if op.Response == nil {
		return nil, fmt.Errorf("no response in completed operation %s", op.Name)
	}
	if op.Response.RAIMediaFilteredCount > 0 {
		return nil, &PolicyRejectionError{Reasons: op.Response.RAIMediaFilteredReasons}
	}
	if len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, fmt.Errorf("no video in response after %d polls", polls)
	}

	video := op.Response.GeneratedVideos[0].Video
	data, err := m.client.Files.Download(ctx, genai.NewDownloadURIFromVideo(video), nil)
	if err != nil {
		return nil, fmt.Errorf("download generated video: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("downloaded video is empty")
	}
	log.Debug().Int("bytes", len(data)).Int("polls", polls).Msg("Video clip ready")
	return data, nil
}
