package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-attendance-api/internal/models"
	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
	"github.com/noah-isme/class-attendance-api/pkg/export"
)

type classAttendanceSource interface {
	Attendance(ctx context.Context, id string) (*models.ClassInstance, []models.AttendanceRecord, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered class export. Payload is empty for the JSON format.
type ExportFile struct {
	Format      models.ExportFormat
	ContentType string
	Filename    string
	Payload     []byte
	Matrix      models.AttendanceMatrix
}

// AggregationService serves ledger summaries, statistics and exports.
type AggregationService struct {
	ledger  attendanceLister
	classes classAttendanceSource
	cache   *CacheService
	ttl     time.Duration
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewAggregationService constructs AggregationService. cache may be nil; renderers default to pkg/export.
func NewAggregationService(ledger attendanceLister, classes classAttendanceSource, cache *CacheService, ttl time.Duration, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *AggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &AggregationService{ledger: ledger, classes: classes, cache: cache, ttl: ttl, csv: csv, pdf: pdf, logger: logger}
}

// Summary returns SummarizeByStudent over the filtered ledger. The bool reports a cache hit.
func (s *AggregationService) Summary(ctx context.Context, filter models.AttendanceFilter) (models.AttendanceSummary, bool, error) {
	key := attendanceCacheKey("summary", filter)
	var cached models.AttendanceSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	records, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	summary := SummarizeByStudent(records)
	_ = s.cache.Set(ctx, key, summary, s.ttl)
	return summary, false, nil
}

// Stats returns ComputeStats over the filtered ledger. The bool reports a cache hit.
func (s *AggregationService) Stats(ctx context.Context, filter models.AttendanceFilter) (models.AttendanceStats, bool, error) {
	key := attendanceCacheKey("stats", filter)
	var cached models.AttendanceStats
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	records, err := s.ledger.List(ctx, filter)
	if err != nil {
		return models.AttendanceStats{}, false, err
	}
	stats := ComputeStats(records)
	_ = s.cache.Set(ctx, key, stats, s.ttl)
	return stats, false, nil
}

// Export renders the class's attendance matrix in the requested format.
func (s *AggregationService) Export(ctx context.Context, classID string, format models.ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = models.ExportFormatJSON
	}
	format = models.ExportFormat(strings.ToLower(string(format)))
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %s", format))
	}

	class, records, err := s.classes.Attendance(ctx, classID)
	if err != nil {
		return nil, err
	}
	matrix := ExportMatrix(records)
	file := &ExportFile{Format: format, Matrix: matrix, Filename: exportFilename(class, format)}

	dataset := export.Dataset{Headers: matrix.Header, Rows: matrix.Rows}
	switch format {
	case models.ExportFormatCSV:
		file.ContentType = "text/csv"
		file.Payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Payload, err = s.pdf.Render(dataset, fmt.Sprintf("Attendance %s (%s)", class.Name, class.Session))
	default:
		file.ContentType = "application/json"
	}
	if err != nil {
		s.logger.Error("render export failed", zap.String("class_id", class.ID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return file, nil
}

func exportFilename(class *models.ClassInstance, format models.ExportFormat) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	return fmt.Sprintf("attendance_%s_%s.%s", replacer.Replace(class.Name), replacer.Replace(class.Session), format)
}
