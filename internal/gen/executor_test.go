package gen

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeSanitizer struct {
	calls int
}

func (f *fakeSanitizer) Sanitize(_ context.Context, prompt string) (string, error) {
	f.calls++
	return "safe: " + prompt, nil
}

func newTestExecutor(s Sanitizer) (*Executor, *[]time.Duration) {
	e := NewExecutor(s)
	var slept []time.Duration
	e.Sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return e, &slept
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	e, slept := newTestExecutor(nil)
	calls := 0
	err := e.Do(context.Background(), KindText, "unit", "p", func(context.Context, string) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 || len(*slept) != 0 {
		t.Errorf("calls = %d, sleeps = %d; want 1 call, 0 sleeps", calls, len(*slept))
	}
}

func TestDoBackoffDoubles(t *testing.T) {
	e, slept := newTestExecutor(nil)
	calls := 0
	err := e.Do(context.Background(), KindText, "unit", "p", func(context.Context, string) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *slept, want)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("sleep %d = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindText, 3},
		{KindImage, 7},
		{KindVideo, 7},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e, _ := newTestExecutor(nil)
			calls := 0
			err := e.Do(context.Background(), tt.kind, "unit", "p", func(context.Context, string) error {
				calls++
				return errors.New("always fails")
			})
			if calls != tt.want {
				t.Errorf("calls = %d, want %d", calls, tt.want)
			}
			var ex *ExhaustedError
			if !errors.As(err, &ex) {
				t.Fatalf("err = %v, want ExhaustedError", err)
			}
			if ex.Attempts != tt.want {
				t.Errorf("ExhaustedError.Attempts = %d, want %d", ex.Attempts, tt.want)
			}
		})
	}
}

func TestDoSanitizesAfterPolicyRejection(t *testing.T) {
	s := &fakeSanitizer{}
	e, _ := newTestExecutor(s)

	var prompts []string
	err := e.Do(context.Background(), KindVideo, "unit", "original", func(_ context.Context, p string) error {
		prompts = append(prompts, p)
		if len(prompts) == 1 {
			return &PolicyRejectionError{Reasons: []string{"violence"}}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if s.calls != 1 {
		t.Errorf("sanitizer called %d times, want 1", s.calls)
	}
	if len(prompts) != 2 || prompts[0] != "original" || prompts[1] != "safe: original" {
		t.Errorf("prompts = %v; rejected prompt should be replaced by the rewrite", prompts)
	}
}

func TestDoSanitizedPromptSticksForRemainingAttempts(t *testing.T) {
	s := &fakeSanitizer{}
	e, _ := newTestExecutor(s)

	var prompts []string
	err := e.Do(context.Background(), KindImage, "unit", "original", func(_ context.Context, p string) error {
		prompts = append(prompts, p)
		switch len(prompts) {
		case 1:
			return &PolicyRejectionError{}
		case 2:
			return errors.New("transient")
		default:
			return nil
		}
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if prompts[1] != "safe: original" || prompts[2] != "safe: original" {
		t.Errorf("prompts = %v; rewrite should persist across later attempts", prompts)
	}
}

func TestDoMalformedOutputFailsFast(t *testing.T) {
	e, slept := newTestExecutor(nil)
	calls := 0
	wantErr := &MalformedOutputError{Raw: "not json at all", Err: fmt.Errorf("bad")}
	err := e.Do(context.Background(), KindText, "unit", "p", func(context.Context, string) error {
		calls++
		return wantErr
	})
	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want MalformedOutputError", err)
	}
	if malformed.Raw != "not json at all" {
		t.Errorf("raw output not preserved: %q", malformed.Raw)
	}
	if calls != 1 || len(*slept) != 0 {
		t.Errorf("calls = %d, sleeps = %d; malformed output must not retry", calls, len(*slept))
	}
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	e := NewExecutor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	e.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	err := e.Do(ctx, KindImage, "unit", "p", func(context.Context, string) error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
