package worker

import (
	"context"
	"time"

	"github.com/opencouncil/crux/internal/anonymize"
	"github.com/opencouncil/crux/internal/cache"
	"github.com/opencouncil/crux/internal/extract"
	"github.com/opencouncil/crux/internal/llm"
	"github.com/opencouncil/crux/internal/logger"
	"github.com/opencouncil/crux/internal/model"
)

// DefaultConcurrency is the in-flight ceiling for crux calls. Fixed
// rather than NumCPU because the provider's rate limit is the real
// constraint, not local parallelism.
const DefaultConcurrency = 6

// RequestConfig carries the per-run call parameters shared by every item.
type RequestConfig struct {
	Model            string
	SystemPrompt     string
	UserPrompt       string
	MaxTokens        int
	ReportID         string
	UserID           string
	TelemetryProject string
}

// itemFields is the field set attached to every per-item log line, so
// run-level correlation IDs survive into item diagnostics.
func itemFields(item model.SubtopicWorkItem, req RequestConfig) logger.Fields {
	fields := logger.Fields{
		"subtopic":  item.Label,
		"ordinal":   item.Ordinal,
		"report_id": req.ReportID,
		"user_id":   req.UserID,
	}
	if req.TelemetryProject != "" {
		fields["telemetry_project"] = req.TelemetryProject
	}
	return fields
}

// CruxResult is one settled (item, outcome) pair. Usage is populated
// whenever the provider returned a response, even if validation failed
// afterwards: those tokens were still bought.
type CruxResult struct {
	Item   model.SubtopicWorkItem
	Crux   *model.SubtopicCrux
	Usage  model.TokenUsage
	Cached bool
	Err    error
}

// GetError returns the item's error, nil on success.
func (r *CruxResult) GetError() error {
	return r.Err
}

// Orchestrator fans the selector's work items out to the LLM provider
// with a fixed concurrency ceiling and per-item error isolation: one
// item failing never aborts or delays the others.
type Orchestrator struct {
	provider llm.Provider
	limiter  *Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	pool     *Pool
}

// NewOrchestrator wires an orchestrator around a shared provider client.
// limiter and responseCache may be nil to disable rate limiting or
// caching.
func NewOrchestrator(provider llm.Provider, limiter *Limiter, responseCache cache.Cache, cacheTTL time.Duration, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		provider: provider,
		limiter:  limiter,
		cache:    responseCache,
		cacheTTL: cacheTTL,
		pool:     NewPool(concurrency),
	}
}

// Process runs every work item and returns the settled results in the
// selector's traversal order regardless of completion order. speakers is
// the run's anonymization map; its inverse re-attaches names during
// validation.
func (o *Orchestrator) Process(ctx context.Context, items []model.SubtopicWorkItem, speakers anonymize.SpeakerMap, req RequestConfig) []*CruxResult {
	if len(items) == 0 {
		return []*CruxResult{}
	}

	idToName := speakers.Inverse()

	jobs := make([]Job, len(items))
	for i, item := range items {
		jobs[i] = &cruxJob{
			orch:     o,
			item:     item,
			validIDs: extract.ValidIDSet(item, speakers),
			idToName: idToName,
			claims:   anonymizeClaims(item.Claims, speakers),
			req:      req,
		}
	}

	raw := o.pool.Run(ctx, jobs)

	results := make([]*CruxResult, len(raw))
	for i, r := range raw {
		if r == nil {
			// Never ran: the pipeline was cancelled before its slot opened.
			results[i] = &CruxResult{Item: items[i], Err: ctx.Err()}
			continue
		}
		results[i] = r.(*CruxResult)
	}
	return results
}

func anonymizeClaims(claims []model.Claim, speakerToID map[string]string) []llm.AnonymizedClaim {
	out := make([]llm.AnonymizedClaim, len(claims))
	for i, claim := range claims {
		out[i] = llm.AnonymizedClaim{
			SpeakerID: speakerToID[claim.Speaker],
			Text:      claim.Text,
		}
	}
	return out
}

// cruxJob is one subtopic's call: rate limit, cache probe, provider
// call, then validation. All failure modes land in the result, never a
// panic or a pipeline abort.
type cruxJob struct {
	orch     *Orchestrator
	item     model.SubtopicWorkItem
	validIDs map[string]bool
	idToName map[string]string
	claims   []llm.AnonymizedClaim
	req      RequestConfig
}

func (j *cruxJob) Execute(ctx context.Context) Result {
	res := &CruxResult{Item: j.item}
	o := j.orch

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx, j.req.Model); err != nil {
			res.Err = err
			return res
		}
	}

	var raw string
	key := cache.ResponseKey(j.req.Model, j.item)

	if o.cache != nil {
		if cached, found := o.cache.Get(key); found {
			raw = string(cached)
			res.Cached = true
		}
	}

	if raw == "" {
		resp, err := o.provider.ExtractCrux(ctx, llm.CruxRequest{
			Model:        j.req.Model,
			SystemPrompt: j.req.SystemPrompt,
			UserPrompt:   j.req.UserPrompt,
			Subtopic:     j.item.Label,
			Description:  j.item.Description,
			Claims:       j.claims,
			MaxTokens:    j.req.MaxTokens,
			ReportID:     j.req.ReportID,
		})
		if err != nil {
			res.Err = err
			logger.WithFields(itemFields(j.item, j.req)).Warnf("crux call failed: %v", err)
			return res
		}
		raw = resp.Raw
		res.Usage = resp.Usage

		if o.cache != nil {
			_ = o.cache.Set(key, []byte(raw), o.cacheTTL)
		}
	}

	crux, err := extract.Parse(raw, j.item, j.validIDs, j.idToName)
	if err != nil {
		res.Err = err
		logger.WithFields(itemFields(j.item, j.req)).Warnf("crux response rejected: %v", err)
		return res
	}

	res.Crux = crux
	return res
}
