package state

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
)

// base carries what every container shares: the mutex serializing all state
// mutation (the Go rendition of the source's event-loop serialization) and
// the single error funnel.
type base struct {
	mu      sync.Mutex
	logger  *slog.Logger
	lastErr string
}

// fail is the container error funnel: log, record a user-visible message,
// hand the error back for callers that must react. Caller holds b.mu.
func (b *base) fail(op string, err error) error {
	b.logger.Error(op+" failed", "error", err)
	b.lastErr = userMessage(err)
	return err
}

// clearErr resets the error slot at the start of a new operation. Caller
// holds b.mu.
func (b *base) clearErr() {
	b.lastErr = ""
}

// Err returns the user-visible error from the last failed operation, or "".
func (b *base) Err() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "something went wrong, try again"
}
