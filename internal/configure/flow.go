// Package configure implements the two-phase workflow for a workspace
// admin submitting new OpenAI credentials: a synchronous validation phase
// that must answer within Slack's acknowledgment window, and an
// asynchronous commit phase that persists the record after the
// acknowledgment has gone out.
package configure

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tessellate-io/slackwise/internal/i18n"
	"github.com/tessellate-io/slackwise/internal/openai"
	"github.com/tessellate-io/slackwise/internal/tenant"
	"github.com/tessellate-io/slackwise/internal/tenantconfig"
)

// Field identifiers match the modal input block ids, so a rejection can
// be attached to the input the user needs to fix.
const (
	FieldAPIKey = "api_key"
	FieldModel  = "model"
)

const (
	msgInvalidKey       = "This API key seems to be invalid"
	msgModelUnavailable = "This model is not yet available for this API key"
)

// Each live probe gets its own deadline so two probes still fit inside
// Slack's 3 second acknowledgment window. A probe that cannot answer in
// time counts as a failure: the ack is rejected rather than left hanging.
const defaultProbeTimeout = 2500 * time.Millisecond

// The commit runs detached from the originating request and re-verifies
// before writing, so it gets a far more generous budget.
const defaultCommitTimeout = 30 * time.Second

// Submission is a parsed credential form: the key to store and the model
// the user picked from the enumerated set.
type Submission struct {
	APIKey string
	Model  string
}

// Result is the typed outcome of the validation phase. A rejected
// submission carries exactly one field-targeted message.
type Result struct {
	Accepted    bool
	FieldErrors map[string]string
}

// Prober verifies that a model id is retrievable with an API key. It is
// the sole validation primitive the credential provider offers.
type Prober interface {
	ProbeModel(ctx context.Context, apiKey, model string) error
}

// OpenAIProber probes against the live OpenAI API.
type OpenAIProber struct {
	baseURL string
	orgID   string
	opts    []openai.ClientOption
}

var _ Prober = (*OpenAIProber)(nil)

// NewOpenAIProber creates a prober for the given API base. Extra client
// options are mainly for tests.
func NewOpenAIProber(baseURL, orgID string, opts ...openai.ClientOption) *OpenAIProber {
	return &OpenAIProber{baseURL: baseURL, orgID: orgID, opts: opts}
}

func (p *OpenAIProber) ProbeModel(ctx context.Context, apiKey, model string) error {
	opts := append([]openai.ClientOption{
		openai.WithBaseURL(p.baseURL),
		openai.WithOrganization(p.orgID),
	}, p.opts...)
	client := openai.NewClient(apiKey, opts...)
	_, err := client.RetrieveModel(ctx, model)
	return err
}

// Flow runs validations and schedules commits.
type Flow struct {
	configs       *tenantconfig.Store
	prober        Prober
	translator    i18n.Translator
	logger        *slog.Logger
	baselineModel string
	probeTimeout  time.Duration
	commitTimeout time.Duration

	commits sync.WaitGroup
}

// FlowOption customizes a Flow.
type FlowOption func(*Flow)

// WithProbeTimeout overrides the per-probe deadline of the ack phase.
func WithProbeTimeout(d time.Duration) FlowOption {
	return func(f *Flow) { f.probeTimeout = d }
}

// WithCommitTimeout overrides the commit-phase deadline.
func WithCommitTimeout(d time.Duration) FlowOption {
	return func(f *Flow) { f.commitTimeout = d }
}

// NewFlow creates a validation flow. baselineModel is the well-known
// model probed to decide whether a key is usable at all.
func NewFlow(configs *tenantconfig.Store, prober Prober, translator i18n.Translator, baselineModel string, logger *slog.Logger, opts ...FlowOption) *Flow {
	f := &Flow{
		configs:       configs,
		prober:        prober,
		translator:    translator,
		logger:        logger,
		baselineModel: baselineModel,
		probeTimeout:  defaultProbeTimeout,
		commitTimeout: defaultCommitTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Validate is the synchronous ack phase. It probes the submitted key
// against the baseline model, then against the submitted model, and
// never persists anything regardless of outcome. Rejection messages are
// localized with the workspace's currently active credential — not the
// pending one.
func (f *Flow) Validate(ctx context.Context, active tenant.Context, sub Submission) Result {
	if err := f.probe(ctx, sub.APIKey, f.baselineModel); err != nil {
		f.logger.Info("credential submission rejected: baseline probe failed",
			slog.String("model", f.baselineModel),
			slog.String("error", err.Error()),
		)
		return f.reject(ctx, active, FieldAPIKey, msgInvalidKey)
	}

	if err := f.probe(ctx, sub.APIKey, sub.Model); err != nil {
		f.logger.Info("credential submission rejected: model probe failed",
			slog.String("model", sub.Model),
			slog.String("error", err.Error()),
		)
		return f.reject(ctx, active, FieldModel, msgModelUnavailable)
	}

	return Result{Accepted: true}
}

func (f *Flow) probe(ctx context.Context, apiKey, model string) error {
	ctx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()
	return f.prober.ProbeModel(ctx, apiKey, model)
}

func (f *Flow) reject(ctx context.Context, active tenant.Context, field, text string) Result {
	if active.Configured() {
		// Best effort: on translation failure the English text stands.
		text, _ = f.translator.Translate(ctx, active.APIKey, active.Locale, text)
	}
	return Result{FieldErrors: map[string]string{field: text}}
}

// ScheduleCommit runs the commit phase on its own goroutine, detached
// from the request context so the user-visible acknowledgment is never
// held up. The outcome is not reported to the submitter.
func (f *Flow) ScheduleCommit(ctx context.Context, teamID string, sub Submission) {
	detached := context.WithoutCancel(ctx)
	f.commits.Add(1)
	go func() {
		defer f.commits.Done()
		ctx, cancel := context.WithTimeout(detached, f.commitTimeout)
		defer cancel()
		f.Commit(ctx, teamID, sub)
	}()
}

// Commit re-verifies the submitted model with the submitted key and, on
// success, overwrites the workspace record. Both the re-verification and
// the write can fail after the user already saw the acknowledgment;
// those failures are logged and the prior record is left untouched.
func (f *Flow) Commit(ctx context.Context, teamID string, sub Submission) {
	if err := f.prober.ProbeModel(ctx, sub.APIKey, sub.Model); err != nil {
		f.logger.Warn("credential commit skipped: re-verification failed",
			slog.String("team_id", teamID),
			slog.String("model", sub.Model),
			slog.String("error", err.Error()),
		)
		return
	}

	rec := tenantconfig.Record{APIKey: sub.APIKey, Model: sub.Model}
	if err := f.configs.Save(ctx, teamID, rec); err != nil {
		f.logger.Error("failed to save workspace credential record",
			slog.String("team_id", teamID),
			slog.String("error", err.Error()),
		)
	}
}

// Drain blocks until all scheduled commits have finished. Called on
// shutdown and by tests.
func (f *Flow) Drain() {
	f.commits.Wait()
}
