// Package aimatch matches a free-text request against stored leads with the help of a
// hosted language model.
package aimatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/domain"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/industry"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/llm"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// LeadStore is the read side of the lead repository.
type LeadStore interface {
	List(ctx context.Context) ([]*storage.Lead, error)
	GetByID(ctx context.Context, id int64) (*storage.Lead, error)
	Count(ctx context.Context) (int, error)
}

// Options tunes the request sent to the model.
type Options struct {
	Temperature float64
	MaxTokens   int
	WindowSize  int
	CacheTTL    time.Duration
}

// DefaultOptions returns the stock request settings.
func DefaultOptions() Options {
	return Options{
		Temperature: 0.3,
		MaxTokens:   1500,
		WindowSize:  150,
		CacheTTL:    10 * time.Minute,
	}
}

// Match is one lead the model recommended. The annotations live only in the result.
type Match struct {
	Lead            *storage.Lead `json:"lead"`
	ConfidenceScore int           `json:"confidence_score"`
	Reasoning       string        `json:"reasoning"`
	Strengths       []string      `json:"strengths"`
	Concerns        []string      `json:"concerns"`
}

// Result is the outcome of an AI match.
type Result struct {
	Prompt            string                `json:"prompt"`
	Interpretation    string                `json:"interpretation"`
	SearchType        string                `json:"search_type"`
	IndustryAlignment string                `json:"industry_alignment"`
	Matches           []Match               `json:"leads"`
	TotalLeads        int                   `json:"total_leads"`
	AnalyzedLeads     int                   `json:"analyzed_leads"`
	Composition       *industry.Composition `json:"database_insights,omitempty"`
	NoLeads           bool                  `json:"no_leads"`
}

// Overview is the landing data for AI matching.
type Overview struct {
	TotalLeads int              `json:"total_leads"`
	Industries []industry.Share `json:"industry_stats"`
}

// Orchestrator runs AI matches.
type Orchestrator struct {
	store  LeadStore
	llm    llm.Completer
	cache  cache.Client
	logger *observability.Logger
	opts   Options
}

// NewOrchestrator creates an orchestrator. cacheClient may be nil.
func NewOrchestrator(store LeadStore, completer llm.Completer, cacheClient cache.Client, logger *observability.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = observability.NopLogger()
	}
	def := DefaultOptions()
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = def.WindowSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = def.CacheTTL
	}
	return &Orchestrator{
		store:  store,
		llm:    completer,
		cache:  cacheClient,
		logger: logger.WithComponent("aimatch"),
		opts:   opts,
	}
}

// Match asks the model which stored leads fit prompt. The store is only read.
func (o *Orchestrator) Match(ctx context.Context, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ValidationError("please enter a description of what you're looking for", nil)
	}

	log := o.logger.WithContext(ctx).WithOperation("match")
	start := time.Now()

	leads, err := o.store.List(ctx)
	if err != nil {
		return nil, domain.StorageError("load leads", err)
	}
	if len(leads) == 0 {
		log.Info().Msg("No leads stored, skipping model call")
		return &Result{Prompt: prompt, Matches: []Match{}, NoLeads: true}, nil
	}
	if o.llm == nil {
		return nil, domain.ConfigError("no language model configured", nil)
	}

	comp, cached := o.composition(ctx, leads)
	win := window(leads, o.opts.WindowSize)

	userMsg, err := buildUserMessage(prompt, comp, win)
	if err != nil {
		return nil, domain.NewError(domain.ErrorTypeAI, "build model request", err)
	}

	raw, err := o.llm.Complete(ctx, llm.Request{
		System:      systemPrompt,
		User:        userMsg,
		Temperature: o.opts.Temperature,
		MaxTokens:   o.opts.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Model call failed")
		return nil, classifyLLMError(err)
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		log.Warn().Err(err).Int("response_len", len(raw)).Msg("Model returned unparseable output")
		return nil, domain.NewError(domain.ErrorTypeParse, "error parsing AI response", err)
	}

	matches, err := o.resolve(ctx, parsed.Matches)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("analyzed_leads", len(win)).
		Int("suggested", len(parsed.Matches)).
		Int("matched", len(matches)).
		Bool("composition_cached", cached).
		Dur("elapsed", time.Since(start)).
		Msg("AI match completed")

	return &Result{
		Prompt:            prompt,
		Interpretation:    parsed.Interpretation,
		SearchType:        parsed.SearchType,
		IndustryAlignment: parsed.IndustryAlignment,
		Matches:           matches,
		TotalLeads:        len(leads),
		AnalyzedLeads:     len(win),
		Composition:       comp,
	}, nil
}

// resolve loads the leads the model named, in model order. Malformed entries and ids
// that no longer exist are dropped.
func (o *Orchestrator) resolve(ctx context.Context, suggested []json.RawMessage) ([]Match, error) {
	matches := make([]Match, 0, len(suggested))
	for _, raw := range suggested {
		m, err := decodeMatch(raw)
		if err != nil {
			o.logger.Debug().Err(err).Msg("Skipping malformed match from model")
			continue
		}
		lead, err := o.store.GetByID(ctx, m.LeadID)
		if errors.Is(err, storage.ErrNotFound) {
			o.logger.Debug().Int64("lead_id", m.LeadID).Msg("Skipping unknown lead id from model")
			continue
		}
		if err != nil {
			return nil, domain.StorageError(fmt.Sprintf("load lead %d", m.LeadID), err)
		}

		matches = append(matches, Match{
			Lead:            lead,
			ConfidenceScore: int(math.Round(m.ConfidenceScore)),
			Reasoning:       m.Reasoning,
			Strengths:       m.Strengths,
			Concerns:        m.Concerns,
		})
	}
	return matches, nil
}

// composition returns the cached composition summary, rebuilding it on a miss. The bool
// reports a cache hit.
func (o *Orchestrator) composition(ctx context.Context, leads []*storage.Lead) (*industry.Composition, bool) {
	if o.cache != nil {
		var cached industry.Composition
		err := cache.GetJSON(ctx, o.cache, cache.KeyComposition, &cached)
		if err == nil && cached.TotalLeads == len(leads) {
			return &cached, true
		}
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			o.logger.Warn().Err(err).Msg("Composition cache read failed")
		}
	}

	comp := industry.Analyze(leads)
	if o.cache != nil {
		if err := cache.SetJSON(ctx, o.cache, cache.KeyComposition, comp, o.opts.CacheTTL); err != nil {
			o.logger.Warn().Err(err).Msg("Composition cache write failed")
		}
	}
	return comp, false
}

// Overview returns the lead count and industry distribution. A cached overview is only
// served while its total still matches the store, since another process may have written.
func (o *Orchestrator) Overview(ctx context.Context) (*Overview, error) {
	if o.cache != nil {
		var cached Overview
		if err := cache.GetJSON(ctx, o.cache, cache.KeyDistribution, &cached); err == nil {
			total, err := o.store.Count(ctx)
			if err != nil {
				return nil, domain.StorageError("count leads", err)
			}
			if cached.TotalLeads == total {
				return &cached, nil
			}
		}
	}

	leads, err := o.store.List(ctx)
	if err != nil {
		return nil, domain.StorageError("load leads", err)
	}
	ov := &Overview{TotalLeads: len(leads), Industries: industry.Distribution(leads)}

	if o.cache != nil {
		if err := cache.SetJSON(ctx, o.cache, cache.KeyDistribution, ov, o.opts.CacheTTL); err != nil {
			o.logger.Warn().Err(err).Msg("Distribution cache write failed")
		}
	}
	return ov, nil
}

func classifyLLMError(err error) error {
	switch llm.KindOf(err) {
	case llm.KindAuth:
		return domain.NewError(domain.ErrorTypeAuth, "AI service rejected the credentials", err)
	case llm.KindRateLimit:
		return domain.NewError(domain.ErrorTypeRateLimit, "AI service rate limit reached", err)
	case llm.KindContextTooLarge:
		return domain.NewError(domain.ErrorTypeContextTooLarge, "request too large for the model", err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "json") {
		return domain.NewError(domain.ErrorTypeParse, "error parsing AI response", err)
	}
	return domain.NewError(domain.ErrorTypeAI, "AI lead generation failed", err)
}

// UserMessage turns an AI match error into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return "AI lead generation failed: " + err.Error()
	}
	switch de.Type {
	case domain.ErrorTypeValidation:
		return "Please enter a description of what you're looking for"
	case domain.ErrorTypeAuth:
		return "AI service API key is invalid. Please check your settings."
	case domain.ErrorTypeRateLimit:
		return "AI service rate limit reached. Please try again later."
	case domain.ErrorTypeContextTooLarge:
		return "Too much data to process. Try being more specific in your search."
	case domain.ErrorTypeParse:
		return "Error parsing AI response. Please try again."
	case domain.ErrorTypeConfig:
		return "AI lead generation is not configured: " + de.Message
	}
	detail := de.Message
	if de.Err != nil {
		detail = de.Err.Error()
	}
	return "AI lead generation failed: " + detail
}
