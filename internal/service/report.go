package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// StatsFetcher is the slice of the upstream client the report service
// needs.
type StatsFetcher interface {
	Get(ctx context.Context, token, path string) (json.RawMessage, error)
}

// reportSections maps dashboard section names to upstream stat endpoints.
var reportSections = map[string]string{
	"orders":  "/admin/stats/orders",
	"shops":   "/admin/stats/shops",
	"clients": "/admin/stats/clients",
	"revenue": "/admin/stats/revenue",
}

// Report is the aggregated overview payload for the dashboard home page.
type Report struct {
	Sections map[string]json.RawMessage `json:"sections"`
}

// ReportServiceOptions groups dependencies for ReportService.
type ReportServiceOptions struct {
	Fetcher StatsFetcher
	Logger  *slog.Logger
}

// ReportService aggregates upstream stat endpoints into a single overview.
type ReportService struct {
	fetcher StatsFetcher
	logger  *slog.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(opts ReportServiceOptions) (*ReportService, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("report service: fetcher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{fetcher: opts.Fetcher, logger: logger}, nil
}

// Overview fetches all report sections concurrently. One failing section
// fails the whole report; the dashboard retries as a unit.
func (s *ReportService) Overview(ctx context.Context, token string) (Report, error) {
	report := Report{Sections: make(map[string]json.RawMessage, len(reportSections))}

	g, gctx := errgroup.WithContext(ctx)
	results := make([]json.RawMessage, len(reportSections))
	names := make([]string, 0, len(reportSections))
	for name := range reportSections {
		names = append(names, name)
	}

	for i, name := range names {
		path := reportSections[name]
		g.Go(func() error {
			data, err := s.fetcher.Get(gctx, token, path)
			if err != nil {
				s.logger.WarnContext(gctx, "report section failed", "section", name, "error", err)
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	for i, name := range names {
		report.Sections[name] = results[i]
	}
	return report, nil
}
