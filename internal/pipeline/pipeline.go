// Package pipeline composes the crux extraction run: anonymize, select,
// fan out model calls, validate, score, aggregate, sanitize.
package pipeline

import (
	"context"
	"fmt"

	"github.com/opencouncil/crux/internal/anonymize"
	"github.com/opencouncil/crux/internal/cache"
	"github.com/opencouncil/crux/internal/llm"
	"github.com/opencouncil/crux/internal/logger"
	"github.com/opencouncil/crux/internal/matrix"
	"github.com/opencouncil/crux/internal/model"
	"github.com/opencouncil/crux/internal/pricing"
	"github.com/opencouncil/crux/internal/score"
	"github.com/opencouncil/crux/internal/selector"
	"github.com/opencouncil/crux/internal/worker"
)

// Pipeline drives one crux extraction run end to end. Construct once,
// run per ingest; the LLM client inside the provider is shared by every
// concurrent call.
type Pipeline struct {
	provider     llm.Provider
	orchestrator *worker.Orchestrator
	pricing      *pricing.Table
	sanitizer    Sanitizer
	cfg          *model.Config
}

// New builds a pipeline from configuration.
func New(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		responseCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	var limiter *worker.Limiter
	if cfg.Concurrency.RequestsPerSecond > 0 {
		limiter = worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)
	}

	return &Pipeline{
		provider:     provider,
		orchestrator: worker.NewOrchestrator(provider, limiter, responseCache, cfg.Cache.TTL, cfg.Concurrency.CruxWorkers),
		pricing:      pricing.NewTable(),
		sanitizer:    NewRegexSanitizer(),
		cfg:          cfg,
	}, nil
}

// ExtractCruxes is the library entry point: one call, one complete run.
// Per-item failures degrade the result instead of failing it; only
// structural input problems and pricing lookups are fatal.
//
// Zero-value llmCfg fields fall back to the defaults, so a minimal
// config carrying only the model name and prompts is enough; the
// provider defaults to openai.
func ExtractCruxes(ctx context.Context, tree model.ClaimsTree, topics []model.TopicMetadata, llmCfg model.LLMConfig, apiKey string, opts *model.RunOptions) (*model.PipelineResult, error) {
	cfg := model.DefaultConfig()
	if llmCfg.Provider != "" {
		cfg.LLM.Provider = llmCfg.Provider
	}
	if llmCfg.Model != "" {
		cfg.LLM.Model = llmCfg.Model
	}
	if llmCfg.BaseURL != "" {
		cfg.LLM.BaseURL = llmCfg.BaseURL
	}
	if llmCfg.Timeout > 0 {
		cfg.LLM.Timeout = llmCfg.Timeout
	}
	if llmCfg.MaxTokens > 0 {
		cfg.LLM.MaxTokens = llmCfg.MaxTokens
	}
	cfg.LLM.SystemPrompt = llmCfg.SystemPrompt
	cfg.LLM.UserPrompt = llmCfg.UserPrompt
	cfg.LLM.APIKey = apiKey

	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, tree, topics, opts)
}

// Run executes the staged pipeline: validating → selecting →
// batch-processing → aggregating → sanitizing → done.
func (p *Pipeline) Run(ctx context.Context, tree model.ClaimsTree, topics []model.TopicMetadata, opts *model.RunOptions) (*model.PipelineResult, error) {
	if opts == nil {
		opts = &model.RunOptions{}
	}
	fields := logger.Fields{
		"report_id": opts.ReportID,
		"user_id":   opts.UserID,
	}
	if opts.EnableTelemetry {
		fields["telemetry_project"] = opts.TelemetryProject
	}
	runLog := logger.WithFields(fields)

	// validating
	if len(tree) == 0 {
		return nil, fmt.Errorf("validate input: %w", selector.ErrEmptyTree)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("validate input: %w", selector.ErrNoTopicMetadata)
	}

	speakers := anonymize.Build(tree)
	runLog.Debugf("anonymized %d speakers", len(speakers))

	// selecting
	items, err := selector.Select(tree, topics)
	if err != nil {
		return nil, fmt.Errorf("select subtopics: %w", err)
	}
	runLog.Infof("extracting cruxes for %d subtopics (model %s, ceiling %d)",
		len(items), p.cfg.LLM.Model, p.cfg.Concurrency.CruxWorkers)

	// batch-processing
	req := worker.RequestConfig{
		Model:        p.cfg.LLM.Model,
		SystemPrompt: p.cfg.LLM.SystemPrompt,
		UserPrompt:   p.cfg.LLM.UserPrompt,
		MaxTokens:    p.cfg.LLM.MaxTokens,
		ReportID:     opts.ReportID,
		UserID:       opts.UserID,
	}
	if opts.EnableTelemetry {
		req.TelemetryProject = opts.TelemetryProject
	}
	results := p.orchestrator.Process(ctx, items, speakers, req)

	// Cancellation is all-or-nothing: no partial result leaves the
	// facade once the run's context has been cancelled.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// aggregating
	var cruxes []model.SubtopicCrux
	var usage model.TokenUsage
	skipped := 0
	for _, r := range results {
		usage.Add(r.Usage)
		if r.Err != nil {
			skipped++
			continue
		}
		cruxes = append(cruxes, *r.Crux)
	}
	if skipped > 0 {
		runLog.Warnf("%d of %d subtopics skipped after call or validation failures", skipped, len(results))
	}

	cost, err := p.pricing.Cost(p.cfg.LLM.Model, usage)
	if err != nil {
		return nil, fmt.Errorf("price usage: %w", err)
	}

	result := &model.PipelineResult{
		SubtopicCruxes: cruxes,
		TopicScores:    score.Rollup(cruxes),
		Matrix:         matrix.Build(cruxes, speakers.Tags()),
		Usage:          usage,
		Cost:           cost,
	}
	if result.SubtopicCruxes == nil {
		result.SubtopicCruxes = []model.SubtopicCrux{}
	}
	if result.TopicScores == nil {
		result.TopicScores = []model.TopicScore{}
	}

	// sanitizing
	result = p.sanitizer.Sanitize(result)

	// done
	runLog.Infof("run complete: %d cruxes, %d tokens, $%.4f", len(result.SubtopicCruxes), usage.TotalTokens, cost)
	return result, nil
}
