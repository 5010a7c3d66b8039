package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weedx-backend/internal/model"
)

// DetectionRepository reads the weed detections the robot reports. Each
// detection doubles as a gallery image through its image_path.
type DetectionRepository struct {
	pool *pgxpool.Pool
}

func NewDetectionRepository(pool *pgxpool.Pool) *DetectionRepository {
	return &DetectionRepository{pool: pool}
}

const detectionColumns = `id, user_id, weed_type, confidence, latitude, longitude, image_path,
	image_base64, image_mime_type, treatment_action, crop_type, detected_at`

func scanDetection(row pgx.Row) (model.Detection, error) {
	var d model.Detection
	err := row.Scan(&d.ID, &d.UserID, &d.WeedType, &d.Confidence,
		&d.Location.Latitude, &d.Location.Longitude, &d.ImagePath,
		&d.ImageData, &d.ImageMimeType, &d.TreatmentAction, &d.CropType, &d.DetectedAt)
	return d, err
}

func collectDetections(rows pgx.Rows) ([]model.Detection, error) {
	defer rows.Close()

	detections := make([]model.Detection, 0)
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		detections = append(detections, d)
	}
	return detections, rows.Err()
}

func (r *DetectionRepository) Summary(ctx context.Context) ([]model.WeedCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT weed_type, COUNT(*)
		 FROM weed_detections
		 GROUP BY weed_type
		 ORDER BY COUNT(*) DESC, weed_type`)
	if err != nil {
		return nil, fmt.Errorf("query weed summary: %w", err)
	}
	defer rows.Close()

	counts := make([]model.WeedCount, 0)
	for rows.Next() {
		var c model.WeedCount
		if err := rows.Scan(&c.WeedType, &c.Count); err != nil {
			return nil, fmt.Errorf("scan weed count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *DetectionRepository) Recent(ctx context.Context, limit int) ([]model.Detection, error) {
	return r.List(ctx, model.DetectionFilter{Limit: limit})
}

// List returns the detections matching f, newest first. From and To compare
// against the calendar day of detection.
func (r *DetectionRepository) List(ctx context.Context, f model.DetectionFilter) ([]model.Detection, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.UserID != nil {
		where = append(where, "user_id = "+arg(*f.UserID))
	}
	if f.WeedType != "" {
		where = append(where, "weed_type = "+arg(f.WeedType))
	}
	if f.From != nil {
		where = append(where, "detected_at::date >= "+arg(*f.From)+"::date")
	}
	if f.To != nil {
		where = append(where, "detected_at::date <= "+arg(*f.To)+"::date")
	}

	query := `SELECT ` + detectionColumns + ` FROM weed_detections`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY detected_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + arg(f.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	return collectDetections(rows)
}

// Stats counts detections overall and today. A nil userID covers every user.
func (r *DetectionRepository) Stats(ctx context.Context, userID *int64) (model.DetectionStats, error) {
	var s model.DetectionStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE detected_at::date = CURRENT_DATE),
		        COALESCE(ROUND((AVG(confidence) FILTER (WHERE detected_at::date = CURRENT_DATE))::numeric, 2), 0)::float8
		 FROM weed_detections
		 WHERE $1::bigint IS NULL OR user_id = $1`, userID).
		Scan(&s.Total, &s.Today, &s.TodayAvgConfidence)
	if err != nil {
		return model.DetectionStats{}, fmt.Errorf("query detection stats: %w", err)
	}
	return s, nil
}

// Trend counts detections per day over the last days days, oldest first.
func (r *DetectionRepository) Trend(ctx context.Context, days int, userID *int64) ([]model.TrendPoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT detected_at::date AS day, COUNT(*)
		 FROM weed_detections
		 WHERE detected_at >= CURRENT_DATE - make_interval(days => $1)
		   AND ($2::bigint IS NULL OR user_id = $2)
		 GROUP BY day
		 ORDER BY day`, days, userID)
	if err != nil {
		return nil, fmt.Errorf("query weed trend: %w", err)
	}
	defer rows.Close()

	points := make([]model.TrendPoint, 0)
	for rows.Next() {
		var day time.Time
		var p model.TrendPoint
		if err := rows.Scan(&day, &p.Count); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		p.Date = day.Format(time.DateOnly)
		points = append(points, p)
	}
	return points, rows.Err()
}

// Distribution counts detections per crop and weed. Detections without a
// crop are grouped under Unknown.
func (r *DetectionRepository) Distribution(ctx context.Context, userID *int64) ([]model.DistributionEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT COALESCE(crop_type, 'Unknown'), weed_type, COUNT(*)
		 FROM weed_detections
		 WHERE $1::bigint IS NULL OR user_id = $1
		 GROUP BY 1, 2
		 ORDER BY 1, 3 DESC, 2`, userID)
	if err != nil {
		return nil, fmt.Errorf("query weed distribution: %w", err)
	}
	defer rows.Close()

	entries := make([]model.DistributionEntry, 0)
	for rows.Next() {
		var e model.DistributionEntry
		if err := rows.Scan(&e.CropType, &e.WeedType, &e.Count); err != nil {
			return nil, fmt.Errorf("scan distribution entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *DetectionRepository) FindByID(ctx context.Context, id int64) (model.Detection, error) {
	d, err := scanDetection(r.pool.QueryRow(ctx,
		`SELECT `+detectionColumns+` FROM weed_detections WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Detection{}, model.ErrDetectionNotFound
	}
	if err != nil {
		return model.Detection{}, fmt.Errorf("find detection: %w", err)
	}
	return d, nil
}

func (r *DetectionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM weed_detections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete detection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDetectionNotFound
	}
	return nil
}
