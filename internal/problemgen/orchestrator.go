package problemgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/questgen/internal/llm"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

// Classifier picks a question type when none is forced.
type Classifier interface {
	Classify(grade, subject, skillName string) questiontype.Tag
}

// Detector finds defects in a parsed backend response.
type Detector interface {
	Detect(p ParseResult, requested questiontype.Tag, sc SkillContext) DefectSet
}

// placeholderText is the answer patched into text-shaped candidates that
// arrive without one. It carries no meaning; it only keeps the question
// usable.
const placeholderText = "answer"

// MaxBackendCalls bounds the backend calls of one Generate, counting
// retries made below the orchestrator.
const MaxBackendCalls = 4

var errExhausted = errors.New("retry budget exhausted")

// Orchestrator runs the generate, detect and repair loop for one question
// at a time. Attempts are strictly sequential.
type Orchestrator struct {
	provider   llm.Provider
	config     Config
	classifier Classifier
	prompter   PromptAssembler
	detector   Detector
	policy     RepairPolicy
	templates  *TemplateSet
	logger     *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClassifier replaces the default rule-based classifier.
func WithClassifier(c Classifier) Option {
	return func(o *Orchestrator) { o.classifier = c }
}

// WithPrompter replaces the default TemplatePrompter.
func WithPrompter(p PromptAssembler) Option {
	return func(o *Orchestrator) { o.prompter = p }
}

// WithDetector replaces the default DefectDetector.
func WithDetector(d Detector) Option {
	return func(o *Orchestrator) { o.detector = d }
}

// WithPolicy replaces the policy derived from Config. Its MaxRetries bounds
// the loop.
func WithPolicy(p RepairPolicy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithTemplates replaces the embedded fallback templates. A nil set
// disables template fallback.
func WithTemplates(s *TemplateSet) Option {
	return func(o *Orchestrator) { o.templates = s }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrchestrator returns an Orchestrator calling provider.
func NewOrchestrator(provider llm.Provider, cfg Config, opts ...Option) *Orchestrator {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	o := &Orchestrator{
		provider:   provider,
		config:     cfg,
		classifier: questiontype.NewClassifier(nil),
		prompter:   TemplatePrompter{MaxPriorQuestions: cfg.MaxPriorQuestions},
		detector:   DefectDetector{},
		policy:     RepairPolicy{MaxRetries: cfg.MaxRetries, Fallback: cfg.Fallback},
		templates:  DefaultTemplates(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.policy.MaxRetries = min(max(o.policy.MaxRetries, 0), MaxBackendCalls-1)
	return o
}

// Generate produces one candidate for in. It returns an Outcome in state
// NORMALIZING or FALLBACK, or a *GenerationError together with the FAILED
// Outcome so callers can inspect the history.
func (o *Orchestrator) Generate(ctx context.Context, in GenerateInput) (*Outcome, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")
	ctx = llm.WithCallBudget(ctx, o.policy.MaxRetries+1)

	out := &Outcome{Skill: in.Skill}
	var lead []State

	tag := in.Type
	if tag == "" {
		tag = o.classifier.Classify(in.Grade, in.Skill.Subject, in.Skill.SkillName)
		lead = []State{StateClassifying}
	} else if !tag.Valid() {
		out.State = StateFailed
		return out, &GenerationError{Type: tag, Err: fmt.Errorf("unknown question type %q", tag)}
	}
	out.Type = tag

	log := o.logger.With(zap.String("run_id", in.RunID), zap.String("type", string(tag)))

	sc := in.Skill
	var lastErr error
	for attempt := 0; attempt <= o.policy.MaxRetries; attempt++ {
		// Retries below the orchestrator may have used the calls left.
		if !llm.SpendCall(ctx) {
			log.Debug("backend call budget spent", zap.Int("attempt", attempt), zap.Int("calls", out.Calls))
			break
		}
		rec := AttemptRecord{
			Attempt: attempt,
			Type:    tag,
			Hints:   sc.Hints,
			Trail:   append(lead, StatePrompting),
		}
		lead = nil

		system, user := o.prompter.Assemble(o.promptRequest(in, tag, sc))
		rec.Trail = append(rec.Trail, StateAwaitingResponse)

		start := time.Now()
		resp, err := o.call(ctx, in.RunID, attempt, tag, system, user)
		rec.Latency = time.Since(start)
		out.Calls++

		var (
			decision   Decision
			parsed     ParseResult
			backendErr error
		)
		if err != nil && !llm.IsInvalidResponse(err) {
			backendErr = err
			lastErr = err
			rec.Error = err.Error()
			decision = o.policy.BackendFailure(attempt, sc)
		} else {
			rec.Trail = append(rec.Trail, StateParsing)
			if err != nil {
				parsed = ParseResult{Err: err}
			} else {
				parsed = Parse(resp.Content, tag)
			}
			rec.Trail = append(rec.Trail, StateDetecting)
			rec.Defects = o.detector.Detect(parsed, tag, sc)
			if !parsed.OK() {
				rec.Error = parsed.Err.Error()
			}
			if len(rec.Defects) > 0 {
				lastErr = &DefectError{Attempt: attempt, Defects: rec.Defects, Err: parsed.Err}
			}
			decision = o.policy.Decide(rec.Defects, attempt, sc)
		}

		if decision.Action == ActionRetry {
			var wait time.Duration
			if backendErr != nil {
				wait = o.config.Backoff.Wait(attempt, backendErr)
			}
			// A cancelled parent makes every further call fail.
			if serr := llm.Sleep(ctx, wait); serr != nil {
				decision = o.policy.exhausted(sc, "generation cancelled: "+serr.Error())
				if lastErr == nil {
					lastErr = serr
				}
			}
		}
		rec.Action = decision.Action
		rec.Reason = decision.Reason

		switch decision.Action {
		case ActionRetry:
			if len(rec.Defects.Blocking()) > 0 {
				rec.Trail = append(rec.Trail, StateRepairing)
			}
			o.record(log, out, rec)
			sc = decision.Context
			out.Skill = sc

		case ActionAccept, ActionPatch:
			c := parsed.Candidate
			if !c.HasAnswer() {
				// The normalizer converts by the declared type, which may
				// differ from the requested one.
				shape := tag
				if declared, ok := questiontype.ParseTag(c.Type); ok {
					shape = declared
				}
				c.SetAnswer(placeholderAnswer(&c, shape))
			}
			rec.Trail = append(rec.Trail, StateNormalizing)
			o.record(log, out, rec)
			out.Candidate = c
			out.Source = question.SourceGenerated
			out.State = StateNormalizing
			out.Defects = rec.Defects
			return out, nil

		case ActionFallback:
			rec.Trail = append(rec.Trail, StateFallback)
			o.record(log, out, rec)
			return o.fallback(log, out, lastErr)

		default:
			rec.Trail = append(rec.Trail, StateFailed)
			o.record(log, out, rec)
			return o.fail(out, lastErr)
		}
	}

	if o.policy.Fallback {
		return o.fallback(log, out, lastErr)
	}
	return o.fail(out, lastErr)
}

func (o *Orchestrator) promptRequest(in GenerateInput, tag questiontype.Tag, sc SkillContext) PromptRequest {
	return PromptRequest{
		Grade:          in.Grade,
		Career:         in.Career,
		Subject:        sc.Subject,
		SkillName:      sc.SkillName,
		SkillID:        sc.SkillID,
		Type:           tag,
		Hints:          sc.Hints,
		PriorQuestions: in.PriorQuestions,
	}
}

// call sends one request bounded by the configured per-call timeout.
func (o *Orchestrator) call(ctx context.Context, runID string, attempt int, tag questiontype.Tag, system, user string) (*llm.Response, error) {
	if o.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.CallTimeout)
		defer cancel()
	}
	ctx = llm.WithAttempt(ctx, runID, attempt)

	resp, err := o.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		Schema:      SchemaFor(tag),
		MaxTokens:   o.config.MaxTokens,
		Temperature: o.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s question: %w", tag, err)
	}
	return resp, nil
}

func (o *Orchestrator) record(log *zap.Logger, out *Outcome, rec AttemptRecord) {
	out.History = append(out.History, rec)
	log.Debug("generation attempt",
		zap.Int("attempt", rec.Attempt),
		zap.String("state", string(rec.Final())),
		zap.Strings("defects", rec.Defects.Strings()),
		zap.String("action", string(rec.Action)),
		zap.String("reason", rec.Reason),
		zap.Duration("latency", rec.Latency),
	)
}

// fallback ends the run with the template for the outcome's type, or
// fails when there is none.
func (o *Orchestrator) fallback(log *zap.Logger, out *Outcome, cause error) (*Outcome, error) {
	tpl, ok := o.templates.Lookup(out.Type)
	if !ok {
		if n := len(out.History); n > 0 {
			out.History[n-1].Trail = append(out.History[n-1].Trail, StateFailed)
		}
		log.Warn("no template for fallback", zap.Int("calls", out.Calls), zap.Error(cause))
		return o.fail(out, cause)
	}
	log.Warn("using template fallback", zap.Int("calls", out.Calls), zap.Error(cause))
	out.Candidate = tpl
	out.Source = question.SourceTemplate
	out.State = StateFallback
	out.Defects = nil
	return out, nil
}

func (o *Orchestrator) fail(out *Outcome, cause error) (*Outcome, error) {
	if cause == nil {
		cause = errExhausted
	}
	out.State = StateFailed
	return out, &GenerationError{Type: out.Type, Calls: out.Calls, Err: cause}
}

// placeholderAnswer returns a deterministic answer of the right shape for
// tag, built only from the candidate's own fields.
func placeholderAnswer(c *question.Candidate, tag questiontype.Tag) question.Value {
	switch tag {
	case questiontype.MultipleChoice, questiontype.VisualIdentification:
		return question.Int(0)
	case questiontype.PatternRecognition:
		if len(c.Options) > 0 {
			return question.Int(0)
		}
	case questiontype.TrueFalse:
		return question.Bool(true)
	case questiontype.Counting, questiontype.Numeric:
		return question.Int(0)
	case questiontype.Ordering:
		return question.List(c.Items...)
	case questiontype.Matching, questiontype.DiagramLabeling:
		m := make(map[string]string, len(c.Pairs))
		for _, p := range c.Pairs {
			m[p.Left] = p.Right
		}
		return question.Pairs(m)
	case questiontype.Classification:
		if len(c.Categories) > 0 {
			m := make(map[string]string, len(c.Items))
			for _, item := range c.Items {
				m[item] = c.Categories[0]
			}
			return question.Pairs(m)
		}
	}
	return question.Text(placeholderText)
}
