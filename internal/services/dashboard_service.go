package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fathimasithara01/caseflow/internal/cache"
	"github.com/fathimasithara01/caseflow/internal/repository"
)

// DashboardKey is the cache key a firm's report is served from. The cache
// middleware reads it; Report populates it. The key carries the firm id so
// one firm's report can never be served to another.
func DashboardKey(firmID string) string {
	return "dashboard:summary:" + firmID
}

type DashboardService struct {
	cases  *repository.CaseRepo
	events *repository.EventRepo
	store  *cache.Store
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewDashboardService(cases *repository.CaseRepo, events *repository.EventRepo, store *cache.Store, ttl time.Duration, log *zap.SugaredLogger) *DashboardService {
	return &DashboardService{cases: cases, events: events, store: store, ttl: ttl, log: log}
}

type DashboardReport struct {
	CasesByStatus  any `json:"casesByStatus"`
	UpcomingEvents any `json:"upcomingEvents"`
}

// Report computes the firm dashboard and writes it back to the cache. A
// failed events query degrades the report instead of failing it.
func (s *DashboardService) Report(ctx context.Context, firmID string) (*DashboardReport, error) {
	byStatus, err := s.cases.CountByStatus(ctx, firmID)
	if err != nil {
		return nil, err
	}

	report := &DashboardReport{CasesByStatus: byStatus}
	upcoming, err := s.events.Upcoming(ctx, firmID, time.Now().UTC(), 10)
	if err != nil {
		s.log.Warnw("upcoming events query failed", "firm", firmID, "error", err)
	} else {
		report.UpcomingEvents = upcoming
	}

	s.store.Set(ctx, DashboardKey(firmID), report, s.ttl)
	return report, nil
}
