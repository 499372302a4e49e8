// Package pipeline orchestrates the stages that turn an intake form into a
// finished promotional video: interview, story extraction, scene split,
// image generation, revision, and final assembly.
//
// Every stage persists its outputs to the artifact store before the next
// stage starts, and every stage reloads its inputs from the store. Nothing
// is carried in process memory between requests, so a restart between any
// two requests loses no work.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akakura-hackathon/LocAIver/internal/gen"
	"github.com/akakura-hackathon/LocAIver/internal/jsonutil"
	"github.com/akakura-hackathon/LocAIver/internal/prompt"
	"github.com/akakura-hackathon/LocAIver/internal/store"
)

// TextModel generates and rewrites text.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateTextWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// ImageModel renders images. GeneratePortrait is a pure text-to-image call;
// GenerateSceneImage composes a scene, optionally conditioned on a portrait
// so the character stays consistent across scenes.
type ImageModel interface {
	GeneratePortrait(ctx context.Context, prompt, negative, aspectRatio string) ([]byte, error)
	GenerateSceneImage(ctx context.Context, prompt string, portrait []byte) ([]byte, error)
}

// VideoModel renders one clip from a still frame.
type VideoModel interface {
	GenerateClip(ctx context.Context, prompt string, image []byte, aspectRatio string, seconds int) ([]byte, error)
}

// MusicModel renders a score from a text prompt.
type MusicModel interface {
	Generate(ctx context.Context, prompt, negativePrompt string) ([]byte, error)
}

// Assembler joins clips and lays the score under the cut.
type Assembler interface {
	Concat(ctx context.Context, clipPaths []string, outputPath string) error
	Mux(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// Pipeline wires the stages together over one artifact store.
type Pipeline struct {
	store store.Store
	text  TextModel
	image ImageModel
	video VideoModel
	music MusicModel
	exec  *gen.Executor
	media Assembler

	docTag  string
	signTTL time.Duration
}

// Options carries the pipeline collaborators.
type Options struct {
	Store     store.Store
	Text      TextModel
	Image     ImageModel
	Video     VideoModel
	Music     MusicModel
	Executor  *gen.Executor
	Assembler Assembler
	DocTag    string
	SignTTL   time.Duration
}

// New builds a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		store:   opts.Store,
		text:    opts.Text,
		image:   opts.Image,
		video:   opts.Video,
		music:   opts.Music,
		exec:    opts.Executor,
		media:   opts.Assembler,
		docTag:  opts.DocTag,
		signTTL: opts.SignTTL,
	}
}

// generateJSON runs a text unit through the executor and parses the response
// as a JSON document, preserving the exact bytes the model produced. A parse
// failure is fatal to the unit, with the raw response kept for diagnosis.
func (p *Pipeline) generateJSON(ctx context.Context, label, promptText string) (json.RawMessage, error) {
	var doc json.RawMessage
	err := p.exec.Do(ctx, gen.KindText, label, promptText, func(ctx context.Context, current string) error {
		text, err := p.text.GenerateText(ctx, current)
		if err != nil {
			return err
		}
		raw, err := jsonutil.Raw(text)
		if err != nil {
			return &gen.MalformedOutputError{Raw: text, Err: err}
		}
		doc = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// translate renders docJSON's values into English, keeping the structure and
// keys intact, and stores the result at key.
func (p *Pipeline) translate(ctx context.Context, docJSON []byte, key string) error {
	doc, err := p.generateJSON(ctx, "translate", prompt.Translate(string(docJSON)))
	if err != nil {
		return fmt.Errorf("translate %s: %w", key, err)
	}
	return p.store.Write(ctx, key, indent(doc), "application/json")
}

// indent pretty-prints a JSON document, falling back to the input when it
// will not re-marshal.
func indent(doc json.RawMessage) []byte {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return doc
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return doc
	}
	return out
}
