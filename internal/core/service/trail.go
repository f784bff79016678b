package service

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/pkg/metrics"
)

// trail records the writes a multi-step ledger operation has applied so far.
// The backend has no transactions; when a later step fails the trail is
// logged so an operator can see exactly what needs manual repair.
type trail struct {
	op     string
	steps  []string
	logger zerolog.Logger
}

func newTrail(op string, logger zerolog.Logger) *trail {
	return &trail{op: op, logger: logger}
}

func (t *trail) done(format string, args ...any) {
	t.steps = append(t.steps, fmt.Sprintf(format, args...))
}

// applied reports whether any write has been made.
func (t *trail) applied() bool { return len(t.steps) > 0 }

// fail wraps err with the failing step and, if earlier writes were applied,
// logs them at error level.
func (t *trail) fail(step string, err error) error {
	if t.applied() {
		metrics.LedgerPartialFailuresTotal.WithLabelValues(t.op).Inc()
		t.logger.Error().
			Err(err).
			Str("operation", t.op).
			Str("failed_step", step).
			Str("completed_steps", strings.Join(t.steps, "; ")).
			Msg("ledger operation partially applied")
	}
	return fmt.Errorf("%s: %s: %w", t.op, step, err)
}
