package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/export"
)

type adminApplicationLister interface {
	ListForAdmin(ctx context.Context) ([]models.AdminApplication, error)
}

// ExportResult is a rendered file ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

var applicationExportHeaders = []string{"id", "status", "applicant", "email", "course", "price", "start_date", "payment_method", "created_at"}

// ExportService renders the admin application list as downloadable files.
type ExportService struct {
	apps   adminApplicationLister
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(apps adminApplicationLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{apps: apps, logger: logger, now: time.Now}
}

// ExportApplications renders every application in the admin ordering.
func (s *ExportService) ExportApplications(ctx context.Context, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.WithField(appErrors.ErrValidation, "format", "format must be csv or pdf")
	}

	items, err := s.apps.ListForAdmin(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load applications")
	}

	generated := s.now()
	payload, err := export.Render(format, applicationDataset(items, generated))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("applications exported", zap.String("format", string(format)), zap.Int("rows", len(items)))
	return &ExportResult{
		Filename:    fmt.Sprintf("applications-%s.%s", generated.Format("20060102-150405"), format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func applicationDataset(items []models.AdminApplication, generated time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]string{
			"id":             strconv.FormatInt(item.ID, 10),
			"status":         string(item.Status),
			"applicant":      item.UserName + " " + item.UserSurname,
			"email":          item.UserEmail,
			"course":         item.CourseName,
			"price":          strconv.FormatFloat(item.CoursePrice, 'f', 2, 64),
			"start_date":     item.DesiredStartDate.Format(startDateLayout),
			"payment_method": string(item.PaymentMethod),
			"created_at":     item.CreatedAt.Format(time.RFC3339),
		})
	}
	return export.Dataset{
		Title:   "Applications " + generated.Format("2006-01-02 15:04"),
		Headers: applicationExportHeaders,
		Rows:    rows,
	}
}
