package llm

import (
	"context"
	"sync/atomic"
)

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	runKey     contextKey = "llm_run"
	attemptKey contextKey = "llm_attempt"
	budgetKey  contextKey = "llm_budget"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithAttempt tags the context with the pipeline run and the 0-based
// generation attempt so request events can be grouped per run.
func WithAttempt(ctx context.Context, runID string, attempt int) context.Context {
	ctx = context.WithValue(ctx, runKey, runID)
	return context.WithValue(ctx, attemptKey, attempt)
}

// AttemptFrom returns the run ID and attempt set by WithAttempt.
func AttemptFrom(ctx context.Context) (string, int) {
	run, _ := ctx.Value(runKey).(string)
	attempt, _ := ctx.Value(attemptKey).(int)
	return run, attempt
}

// WithCallBudget caps the backend calls made under ctx at n. Every layer
// that calls SpendCall draws from the same budget, so retries at different
// layers cannot multiply.
func WithCallBudget(ctx context.Context, n int) context.Context {
	b := new(atomic.Int64)
	b.Store(int64(n))
	return context.WithValue(ctx, budgetKey, b)
}

// SpendCall takes one call from the budget on ctx and reports whether one
// was left. A context without a budget never runs out.
func SpendCall(ctx context.Context) bool {
	b, ok := ctx.Value(budgetKey).(*atomic.Int64)
	if !ok {
		return true
	}
	return b.Add(-1) >= 0
}
