package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // LLM events only
	RunID   string    // LLM events only
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	RunID        string
	Attempt      int
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates token usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// RunRecord is one pipeline execution.
type RunRecord struct {
	ID           string
	Sequence     int64
	Timestamp    time.Time
	Grade        string
	Subject      string
	SkillID      string
	SkillName    string
	QuestionType string
	State        string
	Success      bool
	ErrorMessage string
	Attempts     int
	DurationMs   int64

	// Question holds the normalized question as JSON, empty when none
	// was produced.
	Question string

	History []AttemptRecord
}

// AttemptRecord is one generation attempt inside a run.
type AttemptRecord struct {
	Sequence     int64
	Timestamp    time.Time
	RunID        string
	Attempt      int
	QuestionType string
	Action       string
	Defects      []string
	ErrorMessage string
	LatencyMs    int64
}

// RunRepo persists pipeline runs with their attempt history.
type RunRepo interface {
	// SaveRun stores the run and its History atomically.
	SaveRun(ctx context.Context, run RunRecord) error

	// ListRuns returns runs newest first, without History.
	ListRuns(ctx context.Context, opts QueryOpts) ([]RunRecord, error)

	// GetRun returns one run with History, or ErrNotFound.
	GetRun(ctx context.Context, id string) (*RunRecord, error)
}
