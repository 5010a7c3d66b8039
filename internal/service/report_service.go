package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weedx-backend/internal/model"
	"weedx-backend/pkg/apierror"
)

const (
	DefaultTrendDays = 30
	maxTrendDays     = 365
	// reportEfficiency is the fixed efficiency figure of the report widgets.
	reportEfficiency = 87.5
	exportFormatCSV  = "csv"
)

var ErrExportFormat = apierror.New("Invalid format. Only CSV is supported", http.StatusBadRequest)

var exportHeader = []string{"ID", "Weed Type", "Crop Type", "Confidence", "Latitude", "Longitude", "Treatment Action", "Detected At"}

type detectionReports interface {
	List(ctx context.Context, f model.DetectionFilter) ([]model.Detection, error)
	Stats(ctx context.Context, userID *int64) (model.DetectionStats, error)
	Trend(ctx context.Context, days int, userID *int64) ([]model.TrendPoint, error)
	Distribution(ctx context.Context, userID *int64) ([]model.DistributionEntry, error)
}

type sessionStore interface {
	Totals(ctx context.Context, f model.SessionFilter) (model.SessionTotals, error)
}

// ReportService aggregates detections and work sessions into the report
// screens. Methods taking a user id scope to that user; the others cover the
// whole fleet.
type ReportService struct {
	detections detectionReports
	sessions   sessionStore
	now        func() time.Time
}

func NewReportService(detections detectionReports, sessions sessionStore) *ReportService {
	return &ReportService{detections: detections, sessions: sessions, now: time.Now}
}

func (s *ReportService) Today(ctx context.Context, userID int64) (model.TodaySummary, error) {
	stats, err := s.detections.Stats(ctx, &userID)
	if err != nil {
		return model.TodaySummary{}, err
	}

	totals, err := s.sessions.Totals(ctx, model.SessionFilter{Today: true})
	if err != nil {
		return model.TodaySummary{}, err
	}

	return model.TodaySummary{
		WeedsDetected:  stats.Today,
		AreaCovered:    totals.AreaCovered,
		HerbicideUsed:  totals.HerbicideUsed,
		OperatingHours: math.Round(totals.OperatingHours*100) / 100,
	}, nil
}

func (s *ReportService) Overview(ctx context.Context, userID int64) (model.ReportOverview, error) {
	widgets, err := s.widgets(ctx, &userID)
	if err != nil {
		return model.ReportOverview{}, err
	}

	trend, err := s.detections.Trend(ctx, DefaultTrendDays, &userID)
	if err != nil {
		return model.ReportOverview{}, err
	}

	distribution, err := s.detections.Distribution(ctx, &userID)
	if err != nil {
		return model.ReportOverview{}, err
	}

	return model.ReportOverview{Widgets: widgets, WeedTrend: trend, WeedDistribution: distribution}, nil
}

func (s *ReportService) Widgets(ctx context.Context) (model.ReportWidgets, error) {
	return s.widgets(ctx, nil)
}

func (s *ReportService) widgets(ctx context.Context, userID *int64) (model.ReportWidgets, error) {
	stats, err := s.detections.Stats(ctx, userID)
	if err != nil {
		return model.ReportWidgets{}, err
	}

	totals, err := s.sessions.Totals(ctx, model.SessionFilter{UserID: userID})
	if err != nil {
		return model.ReportWidgets{}, err
	}

	return model.ReportWidgets{
		TotalWeeds:    stats.Total,
		AreaCovered:   totals.AreaCovered,
		HerbicideUsed: totals.HerbicideUsed,
		Efficiency:    reportEfficiency,
	}, nil
}

// WeedTrend counts detections per day over the last days days.
func (s *ReportService) WeedTrend(ctx context.Context, days int) ([]model.TrendPoint, error) {
	switch {
	case days <= 0:
		days = DefaultTrendDays
	case days > maxTrendDays:
		days = maxTrendDays
	}
	return s.detections.Trend(ctx, days, nil)
}

func (s *ReportService) WeedDistribution(ctx context.Context) ([]model.DistributionEntry, error) {
	return s.detections.Distribution(ctx, nil)
}

// Export renders every detection of userID as a CSV file delivered inline as
// a data URL.
func (s *ReportService) Export(ctx context.Context, userID int64, format string) (model.ReportExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = exportFormatCSV
	}
	if format != exportFormatCSV {
		return model.ReportExport{}, ErrExportFormat
	}

	detections, err := s.detections.List(ctx, model.DetectionFilter{UserID: &userID})
	if err != nil {
		return model.ReportExport{}, err
	}

	data, err := detectionsCSV(detections)
	if err != nil {
		return model.ReportExport{}, err
	}

	now := s.now()
	return model.ReportExport{
		Format:      exportFormatCSV,
		Filename:    "weedx_report_" + now.Format("2006-01-02_150405") + ".csv",
		DownloadURL: "data:text/csv;base64," + base64.StdEncoding.EncodeToString(data),
		GeneratedAt: now.Format(time.DateTime),
	}, nil
}

func detectionsCSV(detections []model.Detection) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, d := range detections {
		record := []string{
			strconv.FormatInt(d.ID, 10),
			orDefault(&d.WeedType, "Unknown"),
			orDefault(d.CropType, "Unknown"),
			fmt.Sprintf("%.2f%%", d.Confidence),
			fmt.Sprintf("%.6f", d.Location.Latitude),
			fmt.Sprintf("%.6f", d.Location.Longitude),
			orDefault(d.TreatmentAction, "None"),
			d.DetectedAt.Format(time.DateTime),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func orDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
