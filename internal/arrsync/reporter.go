package arrsync

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Reporter accumulates per-phase counters, per-item outcomes and warnings
// for one batch. It is safe for use from concurrent upload tasks.
type Reporter struct {
	mu sync.Mutex

	compileTotal   int
	compileCurrent int
	uploadTotal    int
	uploadCurrent  int

	added   int
	updated int
	failed  int

	details  []Detail
	warnings []string

	logger zerolog.Logger
}

// NewReporter creates a batch-scoped reporter.
func NewReporter(logger zerolog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// StartCompile sets the compile-phase denominator.
func (r *Reporter) StartCompile(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compileTotal = total
}

// CompileDone advances the compile-phase counter.
func (r *Reporter) CompileDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compileCurrent++
}

// StartUpload sets the upload-phase denominator.
func (r *Reporter) StartUpload(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploadTotal = total
}

// Added records a successful create.
func (r *Reporter) Added(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploadCurrent++
	r.added++
	r.details = append(r.details, Detail{Name: name, Action: ActionAdded})
}

// Updated records a successful update.
func (r *Reporter) Updated(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploadCurrent++
	r.updated++
	r.details = append(r.details, Detail{Name: name, Action: ActionUpdated})
}

// Failed records a per-item failure.
func (r *Reporter) Failed(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploadCurrent++
	r.failed++
	detail := Detail{Name: name, Action: ActionFailed}
	if err != nil {
		detail.Error = err.Error()
	}
	r.details = append(r.details, detail)
	r.logger.Warn().Str("item", name).Err(err).Msg("sync item failed")
}

// Warn records a non-fatal message with the offending item name baked in.
func (r *Reporter) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.mu.Unlock()
	r.logger.Warn().Msg(msg)
}

// Counts returns the aggregate added/updated/failed counters.
func (r *Reporter) Counts() (added, updated, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.added, r.updated, r.failed
}

// Details returns the per-item outcomes in record order.
func (r *Reporter) Details() []Detail {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Detail, len(r.details))
	copy(out, r.details)
	return out
}

// Warnings returns the recorded warnings.
func (r *Reporter) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Summary writes the one-line batch outcome to the log.
func (r *Reporter) Summary(strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Info().
		Str("strategy", string(strategy)).
		Int("compiled", r.compileCurrent).
		Int("added", r.added).
		Int("updated", r.updated).
		Int("failed", r.failed).
		Int("warnings", len(r.warnings)).
		Msg("sync batch finished")
}
