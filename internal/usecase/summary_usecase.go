package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/kakeibo/internal/domain"
)

// SummaryCache is a best-effort read-through cache for summaries. Keys carry
// a per-owner generation; Invalidate bumps the generation so every cached
// summary of that owner is bypassed at once. A nil *SummaryCache is valid and
// caches nothing.
type SummaryCache struct {
	cache   Cache
	ttl     time.Duration
	clock   Clock
	metrics Metrics
	logger  zerolog.Logger
}

// NewSummaryCache creates a new SummaryCache.
func NewSummaryCache(cache Cache, ttl time.Duration, metrics Metrics, logger zerolog.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryCacheTTL
	}
	return &SummaryCache{
		cache:   cache,
		ttl:     ttl,
		clock:   SystemClock{},
		metrics: metricsOrDefault(metrics),
		logger:  logger,
	}
}

// Invalidate drops every cached summary of the owner.
func (c *SummaryCache) Invalidate(ctx context.Context, ownerID string) {
	if c == nil {
		return
	}
	gen := strconv.FormatInt(c.clock.Now().UnixNano(), 36) + "." + strconv.FormatUint(generationSeq.Add(1), 36)
	// The generation outlives the summaries it guards.
	if err := c.cache.Set(ctx, c.generationKey(ownerID), []byte(gen), 2*c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("summary cache invalidation failed")
	}
}

var generationSeq atomic.Uint64

func (c *SummaryCache) generationKey(ownerID string) string {
	return "summary:" + ownerID + ":gen"
}

func (c *SummaryCache) key(ctx context.Context, ownerID, name string) (string, bool) {
	gen, err := c.cache.Get(ctx, c.generationKey(ownerID))
	switch {
	case errors.Is(err, ErrCacheMiss):
		gen = []byte("0")
	case err != nil:
		c.logger.Warn().Err(err).Msg("summary cache unavailable")
		return "", false
	}
	return fmt.Sprintf("summary:%s:%s:%s", ownerID, gen, name), true
}

// load resolves the cache key for name and decodes a hit into dst. The key
// is returned even on a miss; the caller stores the fresh result under it,
// so a write that commits meanwhile orphans that entry instead of
// inheriting it. An empty key means nothing should be stored.
func (c *SummaryCache) load(ctx context.Context, ownerID, name string, dst any) (string, bool) {
	if c == nil {
		return "", false
	}
	key, ok := c.key(ctx, ownerID, name)
	if !ok {
		return "", false
	}

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key).Msg("summary cache read failed")
		}
		c.metrics.SummaryCacheLookup(false)
		return key, false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.metrics.SummaryCacheLookup(false)
		return key, false
	}

	c.metrics.SummaryCacheLookup(true)
	return key, true
}

func (c *SummaryCache) store(ctx context.Context, key string, v any) {
	if c == nil || key == "" {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("summary cache write failed")
	}
}

// SummaryUseCase computes income/expense reports.
type SummaryUseCase struct {
	summaryRepo SummaryRepository
	cache       *SummaryCache
}

// NewSummaryUseCase creates a new SummaryUseCase. cache may be nil.
func NewSummaryUseCase(summaryRepo SummaryRepository, cache *SummaryCache) *SummaryUseCase {
	return &SummaryUseCase{
		summaryRepo: summaryRepo,
		cache:       cache,
	}
}

// YearSummary totals income and expense for a calendar year.
func (uc *SummaryUseCase) YearSummary(ctx context.Context, year int) (domain.YearSummary, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return domain.YearSummary{}, err
	}

	name := fmt.Sprintf("year:%d", year)

	var summary domain.YearSummary
	key, hit := uc.cache.load(ctx, ownerID, name, &summary)
	if hit {
		return summary, nil
	}

	totals, err := uc.summaryRepo.TotalsByType(ctx, ownerID, year, 0)
	if err != nil {
		return domain.YearSummary{}, err
	}

	summary = domain.NewYearSummary(totals)
	uc.cache.store(ctx, key, summary)

	return summary, nil
}

// MonthSummary totals a single period and adds the opening balance across
// all accounts and the adjustment total.
func (uc *SummaryUseCase) MonthSummary(ctx context.Context, period domain.Period) (domain.MonthSummary, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return domain.MonthSummary{}, err
	}
	if err := period.Validate(); err != nil {
		return domain.MonthSummary{}, err
	}

	name := "month:" + period.String()

	var summary domain.MonthSummary
	key, hit := uc.cache.load(ctx, ownerID, name, &summary)
	if hit {
		return summary, nil
	}

	totals, err := uc.summaryRepo.TotalsByType(ctx, ownerID, period.Year, period.Month)
	if err != nil {
		return domain.MonthSummary{}, err
	}

	opening, err := uc.summaryRepo.OpeningBalanceTotal(ctx, ownerID, period)
	if err != nil {
		return domain.MonthSummary{}, err
	}

	summary = domain.NewMonthSummary(totals, opening)
	uc.cache.store(ctx, key, summary)

	return summary, nil
}
