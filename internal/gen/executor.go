// Package gen runs generation units against the model backends with bounded
// retry. A unit is one prompt-to-artifact call: a text extraction, an image,
// a video clip, or a music track. The executor owns the retry policy so the
// pipeline stages stay linear.
package gen

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akakura-hackathon/LocAIver/internal/metrics"
)

// Kind classifies a generation unit for retry budgeting.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Attempt budgets per kind. Media calls fail transiently far more often than
// text calls, so they get the larger budget.
func maxAttempts(k Kind) int {
	if k == KindText {
		return 3
	}
	return 7
}

const initialBackoff = 2 * time.Second

// Sanitizer rewrites a policy-rejected prompt into a safe one.
type Sanitizer interface {
	Sanitize(ctx context.Context, prompt string) (string, error)
}

// Executor retries generation units with exponential backoff. On a policy
// rejection the prompt is rewritten through the sanitizer and the rewritten
// prompt replaces the original for all remaining attempts.
type Executor struct {
	sanitizer Sanitizer

	// Sleep waits between attempts. Overridable in tests; the default
	// honours context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor builds an Executor. sanitizer may be nil, in which case policy
// rejections are retried with the original prompt.
func NewExecutor(sanitizer Sanitizer) *Executor {
	return &Executor{sanitizer: sanitizer, Sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs one generation unit. run receives the current prompt, which starts
// as prompt and may be replaced by a sanitized rewrite after a policy
// rejection. Malformed output fails immediately; everything else retries
// with doubling backoff until the kind's attempt budget runs out, then an
// ExhaustedError is returned.
func (e *Executor) Do(ctx context.Context, kind Kind, label, prompt string, run func(ctx context.Context, prompt string) error) error {
	attempts := maxAttempts(kind)
	backoff := initialBackoff
	current := prompt

	start := time.Now()
	m := metrics.New(label).Dimension("kind", string(kind))
	defer func() {
		m.Value("duration_ms", float64(time.Since(start).Milliseconds())).Flush()
	}()

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		m.Count("attempts")
		err := run(ctx, current)
		if err == nil {
			return nil
		}
		last = err

		var malformed *MalformedOutputError
		if errors.As(err, &malformed) {
			m.Count("malformed")
			log.Error().Err(err).Str("unit", label).Str("raw", malformed.Raw).
				Msg("Model output unparseable, not retrying")
			return err
		}

		var rejected *PolicyRejectionError
		if errors.As(err, &rejected) && e.sanitizer != nil {
			m.Count("policy_rejections")
			log.Warn().Strs("reasons", rejected.Reasons).Str("unit", label).
				Int("attempt", attempt).Msg("Prompt rejected, sanitizing")
			safe, serr := e.sanitizer.Sanitize(ctx, current)
			if serr != nil {
				log.Error().Err(serr).Str("unit", label).Msg("Prompt sanitize failed")
			} else {
				current = safe
			}
		} else {
			log.Warn().Err(err).Str("unit", label).Int("attempt", attempt).
				Dur("backoff", backoff).Msg("Generation attempt failed")
		}

		if attempt == attempts {
			break
		}
		if err := e.Sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
	}

	m.Count("exhausted")
	return &ExhaustedError{Kind: kind, Attempts: attempts, Last: last}
}
