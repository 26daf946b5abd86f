package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/questgen/internal/answer"
	"github.com/abhisek/questgen/internal/curriculum"
	"github.com/abhisek/questgen/internal/feedback"
	"github.com/abhisek/questgen/internal/problemgen"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
	"github.com/abhisek/questgen/internal/store"
)

const (
	msgInvalidSelection = "Invalid user selection"
	msgInvalidSkill     = "Invalid skill context"
)

// Generator produces a question candidate. *problemgen.Orchestrator
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, in problemgen.GenerateInput) (*problemgen.Outcome, error)
}

// Evaluator scores a submitted answer. *answer.Evaluator satisfies it.
type Evaluator interface {
	Evaluate(q *question.Question, submitted question.Value) (answer.Result, error)
}

// RunRecorder persists run summaries. store.RunRepo satisfies it.
type RunRecorder interface {
	SaveRun(ctx context.Context, run store.RunRecord) error
}

// Coordinator runs the pipeline stages in order and stops at the first
// failure.
type Coordinator struct {
	generator  Generator
	normalizer *question.Normalizer
	evaluator  Evaluator
	skills     curriculum.Store
	recorder   RunRecorder
	logger     *zap.Logger
	newID      func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *question.Normalizer) Option {
	return func(c *Coordinator) { c.normalizer = n }
}

// WithEvaluator replaces the default answer evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(c *Coordinator) { c.evaluator = e }
}

// WithSkillStore enables skill metadata lookups by skill ID.
func WithSkillStore(s curriculum.Store) Option {
	return func(c *Coordinator) { c.skills = s }
}

// WithRecorder persists a summary of every run.
func WithRecorder(r RunRecorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator wires a Coordinator around generator.
func NewCoordinator(generator Generator, opts ...Option) *Coordinator {
	c := &Coordinator{
		generator:  generator,
		normalizer: question.NewNormalizer(),
		evaluator:  answer.NewEvaluator(),
		logger:     zap.NewNop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one pipeline run. It never returns nil and never panics;
// every failure is reported through Result.Error.
func (c *Coordinator) Run(ctx context.Context, req Request) (res *Result) {
	res = &Result{RunID: c.newID()}
	log := c.logger.With(zap.String("run_id", res.RunID))
	start := time.Now()

	var outcome *problemgen.Outcome
	defer func() {
		res.Success = res.Stages.mandatory()
		if r := recover(); r != nil {
			log.Error("pipeline panicked", zap.Any("panic", r), zap.Stack("stack"))
			res.Error = fmt.Sprintf("internal error: %v", r)
			res.Success = false
		}
		c.save(ctx, log, req, res, outcome, time.Since(start))
	}()

	if err := validateSelection(req.Selection); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Stages.UserSelection = true

	if err := validateSkill(req.Skill); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Stages.SkillContext = true

	outcome, err := c.generator.Generate(ctx, problemgen.GenerateInput{
		RunID:          res.RunID,
		Grade:          req.Selection.GradeLevel,
		Career:         req.Selection.Career,
		Skill:          req.Skill,
		Type:           req.ForceType,
		PriorQuestions: req.PriorQuestions,
	})
	if outcome != nil {
		res.Attempts = outcome.Calls
		res.History = outcome.History
		res.Defects = outcome.Defects.Strings()
	}
	if err != nil {
		log.Warn("generation failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}
	res.Stages.AIGeneration = true
	res.Source = outcome.Source

	q, err := c.normalizer.Normalize(outcome.Candidate, c.skillMeta(ctx, log, req, outcome.Source))
	if err != nil {
		log.Warn("normalization failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}
	res.Question = q
	res.Stages.ContentConversion = true

	res.RenderData = buildRenderData(q)
	res.Stages.RenderData = true

	if req.Answer == nil {
		return res
	}

	// An unscorable answer is reported but leaves Success intact.
	vr, err := c.evaluator.Evaluate(q, *req.Answer)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Validation = &vr
	res.Stages.AnswerValidation = true

	res.Feedback = feedback.Compose(q, *req.Answer, vr, req.Selection.Career)
	res.Stages.Feedback = true
	return res
}

func validateSelection(s UserSelection) error {
	var missing []string
	if strings.TrimSpace(s.GradeLevel) == "" {
		missing = append(missing, "grade_level")
	}
	if strings.TrimSpace(s.Career) == "" {
		missing = append(missing, "career")
	}
	if len(missing) > 0 {
		return &InputError{Message: msgInvalidSelection, Fields: missing}
	}
	return nil
}

func validateSkill(sc problemgen.SkillContext) error {
	var missing []string
	if strings.TrimSpace(sc.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(sc.SkillName) == "" {
		missing = append(missing, "skill_name")
	}
	if len(missing) > 0 {
		return &InputError{Message: msgInvalidSkill, Fields: missing}
	}
	return nil
}

// skillMeta builds normalization metadata. Catalog names win over the
// request's when the skill ID is known; lookup failures are not fatal.
func (c *Coordinator) skillMeta(ctx context.Context, log *zap.Logger, req Request, src question.Source) question.SkillMeta {
	meta := question.SkillMeta{
		Grade:     req.Selection.GradeLevel,
		Subject:   req.Skill.Subject,
		SkillID:   req.Skill.SkillID,
		SkillName: req.Skill.SkillName,
		Source:    src,
	}
	if n, ok := questiontype.NormalizeGrade(meta.Grade); ok {
		meta.Grade = questiontype.GradeLabel(n)
	}
	if c.skills == nil || req.Skill.SkillID == "" {
		return meta
	}

	skill, err := c.skills.SkillByID(ctx, req.Skill.SkillID)
	switch {
	case errors.Is(err, curriculum.ErrSkillNotFound):
		log.Debug("skill not in catalog", zap.String("skill_id", req.Skill.SkillID))
	case err != nil:
		log.Warn("skill lookup failed", zap.String("skill_id", req.Skill.SkillID), zap.Error(err))
	default:
		meta.Subject = skill.Subject
		meta.SkillName = skill.Name
	}
	return meta
}

func (c *Coordinator) save(ctx context.Context, log *zap.Logger, req Request, res *Result, outcome *problemgen.Outcome, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}

	run := store.RunRecord{
		ID:           res.RunID,
		Grade:        req.Selection.GradeLevel,
		Subject:      req.Skill.Subject,
		SkillID:      req.Skill.SkillID,
		SkillName:    req.Skill.SkillName,
		Success:      res.Success,
		ErrorMessage: res.Error,
		Attempts:     res.Attempts,
		DurationMs:   elapsed.Milliseconds(),
	}
	if outcome != nil {
		run.QuestionType = string(outcome.Type)
		run.State = string(outcome.State)
		for _, a := range outcome.History {
			run.History = append(run.History, store.AttemptRecord{
				Attempt:      a.Attempt,
				QuestionType: string(a.Type),
				Action:       string(a.Action),
				Defects:      a.Defects.Strings(),
				ErrorMessage: a.Error,
				LatencyMs:    a.Latency.Milliseconds(),
			})
		}
	}
	if res.Question != nil {
		if data, err := json.Marshal(res.Question); err == nil {
			run.Question = string(data)
		}
	}

	// The run is recorded even when the caller's context is already done.
	if err := c.recorder.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("failed to record run", zap.Error(err))
	}
}
