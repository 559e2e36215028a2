package internal

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// DefaultAnalyticsDebounce is the delay between ApplyFilters and the fetch
const DefaultAnalyticsDebounce = 300 * time.Millisecond

// Filter keys, matching the dashboard query parameters
const (
	FilterDateFrom        = "dateFrom"
	FilterDateTo          = "dateTo"
	FilterMerchantSegment = "merchantSegment"
	FilterIntent          = "intent"
)

var (
	// MerchantSegments are the plan tiers the dashboard can filter on
	MerchantSegments = []string{"basic", "shopify", "advanced", "plus", "enterprise"}
	// Intents are the intent classes the dashboard can filter on
	Intents = []string{"setup", "troubleshooting", "optimization", "billing", "general"}
)

// AnalyticsFilters narrows the dashboard. Empty fields are not sent.
type AnalyticsFilters struct {
	DateFrom        string `json:"dateFrom,omitempty" yaml:"date_from,omitempty"`
	DateTo          string `json:"dateTo,omitempty" yaml:"date_to,omitempty"`
	MerchantSegment string `json:"merchantSegment,omitempty" yaml:"merchant_segment,omitempty"`
	Intent          string `json:"intent,omitempty" yaml:"intent,omitempty"`
}

// Query encodes the non-empty filters as URL query parameters
func (f AnalyticsFilters) Query() url.Values {
	q := url.Values{}
	if f.DateFrom != "" {
		q.Set(FilterDateFrom, f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set(FilterDateTo, f.DateTo)
	}
	if f.MerchantSegment != "" {
		q.Set(FilterMerchantSegment, f.MerchantSegment)
	}
	if f.Intent != "" {
		q.Set(FilterIntent, f.Intent)
	}
	return q
}

// With returns a copy of f with one field changed
func (f AnalyticsFilters) With(key, value string) (AnalyticsFilters, error) {
	switch key {
	case FilterDateFrom:
		f.DateFrom = value
	case FilterDateTo:
		f.DateTo = value
	case FilterMerchantSegment:
		f.MerchantSegment = value
	case FilterIntent:
		f.Intent = value
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	return f, nil
}

// AnalyticsSnapshot is the aggregate dashboard data
type AnalyticsSnapshot struct {
	TotalQuestions          int                     `json:"totalQuestions" yaml:"total_questions"`
	TopQuestions            []QuestionCount         `json:"topQuestions" yaml:"top_questions"`
	IntentDistribution      map[string]int          `json:"intentDistribution" yaml:"intent_distribution"`
	ConfidenceTrends        ConfidenceTrends        `json:"confidenceTrends" yaml:"confidence_trends"`
	MerchantSegmentInsights MerchantSegmentInsights `json:"merchantSegmentInsights" yaml:"merchant_segment_insights"`
	SourceEffectiveness     []SourceEffectiveness   `json:"sourceEffectiveness" yaml:"source_effectiveness"`
}

// QuestionCount is a frequently asked question
type QuestionCount struct {
	Question string `json:"question" yaml:"question"`
	Count    int    `json:"count" yaml:"count"`
}

// ConfidenceTrends summarizes answer confidence
type ConfidenceTrends struct {
	AverageConfidence      float64                `json:"averageConfidence" yaml:"average_confidence"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidenceDistribution" yaml:"confidence_distribution"`
}

// ConfidenceDistribution counts answers per confidence level
type ConfidenceDistribution struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// MerchantSegmentInsights breaks questions down by merchant segment
type MerchantSegmentInsights struct {
	ByPlanTier  map[string]SegmentInsight `json:"byPlanTier" yaml:"by_plan_tier"`
	ByStoreType map[string]SegmentInsight `json:"byStoreType" yaml:"by_store_type"`
}

// SegmentInsight is the question count and intent mix for one segment
type SegmentInsight struct {
	Count   int            `json:"count" yaml:"count"`
	Intents map[string]int `json:"intents" yaml:"intents"`
}

// SourceEffectiveness reports how useful a documentation source was
type SourceEffectiveness struct {
	Title        string  `json:"title" yaml:"title"`
	Category     string  `json:"category,omitempty" yaml:"category,omitempty"`
	UsageCount   int     `json:"usageCount" yaml:"usage_count"`
	AverageScore float64 `json:"averageScore" yaml:"average_score"`
}

// AnalyticsSource fetches dashboard snapshots
type AnalyticsSource interface {
	Dashboard(ctx context.Context, filters AnalyticsFilters) (*AnalyticsSnapshot, error)
}

// AnalyticsView is what the dashboard shows: the filters plus either the
// latest snapshot or the latest error
type AnalyticsView struct {
	Filters  AnalyticsFilters
	Snapshot *AnalyticsSnapshot
	Err      error
	Loading  bool
}

// AnalyticsClient owns the dashboard filters and the latest result.
// ApplyFilters is debounced; an in-flight fetch is never canceled, so when
// two fetches overlap the one that finishes last wins.
type AnalyticsClient struct {
	source   AnalyticsSource
	debounce time.Duration
	baseCtx  context.Context
	onUpdate func(AnalyticsView)

	mu       sync.Mutex
	filters  AnalyticsFilters
	snapshot *AnalyticsSnapshot
	err      error
	inFlight int
	timer    *time.Timer
}

// AnalyticsOption configures an AnalyticsClient
type AnalyticsOption func(*AnalyticsClient)

// WithDebounce overrides the ApplyFilters delay
func WithDebounce(d time.Duration) AnalyticsOption {
	return func(c *AnalyticsClient) {
		c.debounce = d
	}
}

// WithUpdateHook registers fn to run after every fetch completes
func WithUpdateHook(fn func(AnalyticsView)) AnalyticsOption {
	return func(c *AnalyticsClient) {
		c.onUpdate = fn
	}
}

// WithBaseContext sets the context used by debounced fetches
func WithBaseContext(ctx context.Context) AnalyticsOption {
	return func(c *AnalyticsClient) {
		c.baseCtx = ctx
	}
}

// NewAnalyticsClient creates a client with empty filters and no data
func NewAnalyticsClient(source AnalyticsSource, opts ...AnalyticsOption) *AnalyticsClient {
	c := &AnalyticsClient{
		source:   source,
		debounce: DefaultAnalyticsDebounce,
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetFilter changes one filter without fetching
func (c *AnalyticsClient) SetFilter(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	filters, err := c.filters.With(key, value)
	if err != nil {
		return err
	}
	c.filters = filters
	return nil
}

// Filters returns the current filters
func (c *AnalyticsClient) Filters() AnalyticsFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// ApplyFilters schedules a fetch after the debounce delay, replacing any
// fetch that has not started yet. The fetch uses the filters as they are
// when it fires.
func (c *AnalyticsClient) ApplyFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.debounce, func() {
		_ = c.fetch(c.baseCtx, c.Filters())
	})
	LogDebug("Analytics fetch scheduled in %s", c.debounce)
}

// ClearFilters empties every filter and fetches at once
func (c *AnalyticsClient) ClearFilters(ctx context.Context) error {
	c.mu.Lock()
	c.stopTimerLocked()
	c.filters = AnalyticsFilters{}
	c.mu.Unlock()
	return c.fetch(ctx, AnalyticsFilters{})
}

// Refresh fetches at once with the current filters
func (c *AnalyticsClient) Refresh(ctx context.Context) error {
	return c.fetch(ctx, c.Filters())
}

// View returns the current filters and result
func (c *AnalyticsClient) View() AnalyticsView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Close cancels a scheduled fetch
func (c *AnalyticsClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

func (c *AnalyticsClient) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *AnalyticsClient) viewLocked() AnalyticsView {
	return AnalyticsView{
		Filters:  c.filters,
		Snapshot: c.snapshot,
		Err:      c.err,
		Loading:  c.inFlight > 0,
	}
}

func (c *AnalyticsClient) fetch(ctx context.Context, filters AnalyticsFilters) error {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()

	LogDebug("Fetching analytics with filters: %s", filters.Query().Encode())
	snapshot, err := c.source.Dashboard(ctx, filters)

	c.mu.Lock()
	c.inFlight--
	if err != nil {
		LogError("Error fetching analytics: %v", err)
		c.snapshot = nil
		c.err = err
	} else {
		c.snapshot = normalizeSnapshot(snapshot)
		c.err = nil
	}
	view := c.viewLocked()
	c.mu.Unlock()

	if c.onUpdate != nil {
		c.onUpdate(view)
	}
	return err
}

func normalizeSnapshot(s *AnalyticsSnapshot) *AnalyticsSnapshot {
	if s == nil {
		s = &AnalyticsSnapshot{}
	}
	s.TopQuestions = nonNil(s.TopQuestions)
	s.SourceEffectiveness = nonNil(s.SourceEffectiveness)
	if s.IntentDistribution == nil {
		s.IntentDistribution = map[string]int{}
	}
	if s.MerchantSegmentInsights.ByPlanTier == nil {
		s.MerchantSegmentInsights.ByPlanTier = map[string]SegmentInsight{}
	}
	if s.MerchantSegmentInsights.ByStoreType == nil {
		s.MerchantSegmentInsights.ByStoreType = map[string]SegmentInsight{}
	}
	return s
}
