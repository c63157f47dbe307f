// Package execute proxies code-execution requests to an external judge
// backend: one submission call, then a bounded polling loop.
package execute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Backend status ids below this value mean the job is still queued or
// running; at or above it the job is terminal.
const completedStatusID = 3

// Languages maps supported language names to backend numeric ids.
var Languages = map[string]int{
	"javascript": 63,
	"typescript": 63,
	"python":     71,
	"cpp":        54,
	"react":      63,
}

var (
	// ErrUpstream means the backend rejected the submission or a poll
	// request failed. Diagnostic detail stays in the logs.
	ErrUpstream = errors.New("execution backend failure")
	// ErrTimeout means the poll budget ran out before the backend
	// reported a terminal status.
	ErrTimeout = errors.New("execution timed out")
)

// BadRequestError carries a caller-facing message about invalid input.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string { return e.Reason }

type Request struct {
	SourceCode string
	Language   string
}

// Result is the normalized terminal state of a job. Output fields default
// to the empty string when the backend omits them.
type Result struct {
	Status        string  `json:"status"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compileOutput"`
	Time          string  `json:"time"`
	Memory        float64 `json:"memory"`
}

// Backend is the judge API surface the service depends on.
type Backend interface {
	CreateSubmission(ctx context.Context, sourceCode string, languageID int) (string, error)
	GetSubmission(ctx context.Context, token string) (*Submission, error)
}

// Service drives one submission through the backend. It is stateless per
// request; concurrent Run calls share nothing but the client.
type Service struct {
	backend  Backend
	attempts int
	interval time.Duration

	// sleep is the inter-poll wait, injected so tests run without wall
	// clock. It must return promptly with ctx.Err() on cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(backend Backend, attempts int, interval time.Duration) *Service {
	return &Service{
		backend:  backend,
		attempts: attempts,
		interval: interval,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run validates the request, submits the job and polls until a terminal
// status, the attempt budget, or ctx cancellation.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.SourceCode == "" || req.Language == "" {
		return nil, &BadRequestError{Reason: "missing sourceCode or language"}
	}
	languageID, ok := Languages[req.Language]
	if !ok {
		return nil, &BadRequestError{Reason: fmt.Sprintf("unsupported language: %s", req.Language)}
	}

	token, err := s.backend.CreateSubmission(ctx, req.SourceCode, languageID)
	if err != nil {
		log.Error().Err(err).Str("module", "execute").Str("language", req.Language).Msg("submission rejected")
		return nil, fmt.Errorf("submit: %w", ErrUpstream)
	}
	log.Info().Str("module", "execute").Str("token", token).Str("language", req.Language).Msg("submission created")

	for attempt := 0; attempt < s.attempts; attempt++ {
		if err := s.sleep(ctx, s.interval); err != nil {
			return nil, err
		}
		sub, err := s.backend.GetSubmission(ctx, token)
		if err != nil {
			// A failed fetch aborts: it is not retried and does not
			// count against the remaining budget.
			log.Error().Err(err).Str("module", "execute").Str("token", token).Msg("poll failed")
			return nil, fmt.Errorf("poll: %w", ErrUpstream)
		}
		if sub.Status.ID >= completedStatusID {
			log.Info().Str("module", "execute").Str("token", token).
				Str("status", sub.Status.Description).Int("polls", attempt+1).Msg("submission completed")
			return &Result{
				Status:        sub.Status.Description,
				Stdout:        deref(sub.Stdout),
				Stderr:        deref(sub.Stderr),
				CompileOutput: deref(sub.CompileOutput),
				Time:          sub.Time,
				Memory:        sub.Memory,
			}, nil
		}
	}

	log.Warn().Str("module", "execute").Str("token", token).Int("attempts", s.attempts).Msg("poll budget exhausted")
	return nil, ErrTimeout
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
