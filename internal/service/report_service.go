package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/export"
)

type reportGrievanceLister interface {
	List(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, int, error)
}

// ReportService renders departmental grievance listings as CSV or PDF for
// administrative review.
type ReportService struct {
	grievances reportGrievanceLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(grievances reportGrievanceLister, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		grievances: grievances,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

var reportHeaders = []string{"ID", "Category", "Status", "SLA Status", "Department", "Support", "Filed At", "Deadline"}

// Render builds the report in the requested format. Supported formats are
// "csv" and "pdf".
func (s *ReportService) Render(ctx context.Context, format string, filter models.GrievanceFilter) ([]byte, string, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 200
	}
	grievances, _, err := s.grievances.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report data")
	}

	dataset := export.Dataset{Headers: reportHeaders, Rows: make([]map[string]string, 0, len(grievances))}
	for _, g := range grievances {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":         g.ID,
			"Category":   string(g.Category),
			"Status":     string(g.Status),
			"SLA Status": string(g.SLAStatus),
			"Department": g.DepartmentID,
			"Support":    strconv.Itoa(g.SupportCount),
			"Filed At":   g.CreatedAt.Format(time.RFC3339),
			"Deadline":   g.SLADeadlineAt.Format(time.RFC3339),
		})
	}

	switch format {
	case "csv":
		out, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return out, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("Grievance Report %s", time.Now().UTC().Format("2006-01-02"))
		out, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return out, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}
