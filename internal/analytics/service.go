package analytics

import (
	"context"
	"time"

	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentOriginQueries = 8

type Store interface {
	ListSince(ctx context.Context, since time.Time) ([]LeadRow, error)
	DistinctOrigins(ctx context.Context) ([]string, error)
	OriginBreakdown(ctx context.Context, origin string) (SourceSummary, error)
}

type Service struct {
	store Store
	now   func() time.Time
	log   *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, now: time.Now, log: log}
}

// Report aggregates the leads created within period.
func (s *Service) Report(ctx context.Context, period string) (Report, error) {
	if period == "" {
		period = DefaultPeriod
	}
	now := s.now()
	since, ok := PeriodStart(period, now)
	if !ok {
		return Report{}, apperr.Validation("Period must be one of 7d, 30d, 90d")
	}

	leads, err := s.store.ListSince(ctx, since)
	if err != nil {
		return Report{}, apperr.Store(apperr.CodeDatabaseError, err)
	}

	report := Aggregate(period, leads, now)
	s.log.WithContext(ctx).Info("analytics generated", "period", period, "leads", report.Summary.TotalLeads)
	return report, nil
}

// Sources returns the qualification breakdown of every origin, one query per origin.
func (s *Service) Sources(ctx context.Context) ([]SourceSummary, error) {
	origins, err := s.store.DistinctOrigins(ctx)
	if err != nil {
		return nil, apperr.Store(apperr.CodeDatabaseError, err)
	}

	results := make([]SourceSummary, len(origins))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOriginQueries)

	for i, origin := range origins {
		g.Go(func() error {
			summary, err := s.store.OriginBreakdown(gctx, origin)
			if err != nil {
				return err
			}
			results[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, apperr.Store(apperr.CodeDatabaseError, err)
	}
	return results, nil
}
