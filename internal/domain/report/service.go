package report

import "context"

type ReportService interface {
	Dashboard(ctx context.Context) (Dashboard, error)
	Analytics(ctx context.Context, filter AnalyticsFilter) (Analytics, error)
	ExportCSV(ctx context.Context, req ExportRequest) (Export, error)
	ExportPDF(ctx context.Context, filter AnalyticsFilter) (Export, error)
}
