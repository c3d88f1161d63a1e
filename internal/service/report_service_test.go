package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

func TestReportServiceRenderCSV(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &mockGrievanceStore{listResult: []models.Grievance{
		{
			ID:            "JM-2025-000001",
			Category:      models.CategoryRoads,
			Status:        models.StatusInProgress,
			SLAStatus:     models.SLAAtRisk,
			DepartmentID:  "public-works",
			SupportCount:  7,
			CreatedAt:     now.Add(-150 * time.Hour),
			SLADeadlineAt: now.Add(18 * time.Hour),
		},
	}, listTotal: 1}
	svc := NewReportService(store, nil)

	out, contentType, err := svc.Render(context.Background(), "csv", models.GrievanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(out)
	assert.True(t, strings.HasPrefix(body, "ID,Category,Status"))
	assert.Contains(t, body, "JM-2025-000001")
	assert.Contains(t, body, "public-works")
	assert.Contains(t, body, "at_risk")
}

func TestReportServiceRenderPDF(t *testing.T) {
	store := &mockGrievanceStore{listResult: []models.Grievance{{ID: "JM-2025-000001"}}, listTotal: 1}
	svc := NewReportService(store, nil)

	out, contentType, err := svc.Render(context.Background(), "pdf", models.GrievanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestReportServiceRenderUnknownFormat(t *testing.T) {
	svc := NewReportService(&mockGrievanceStore{}, nil)
	_, _, err := svc.Render(context.Background(), "xlsx", models.GrievanceFilter{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
