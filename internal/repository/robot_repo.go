package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weedx-backend/internal/model"
)

type RobotRepository struct {
	pool *pgxpool.Pool
}

func NewRobotRepository(pool *pgxpool.Pool) *RobotRepository {
	return &RobotRepository{pool: pool}
}

// Latest returns the most recent status report, or false when the robot has
// never reported.
func (r *RobotRepository) Latest(ctx context.Context) (model.RobotStatus, bool, error) {
	var s model.RobotStatus
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT status, battery_level, latitude, longitude, speed, activity, updated_at
		 FROM robot_status
		 ORDER BY updated_at DESC
		 LIMIT 1`).
		Scan(&s.Status, &s.Battery, &s.Location.Latitude, &s.Location.Longitude, &s.Speed, &s.Activity, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RobotStatus{}, false, nil
	}
	if err != nil {
		return model.RobotStatus{}, false, fmt.Errorf("find latest robot status: %w", err)
	}

	s.LastUpdated = &updatedAt
	return s, true, nil
}

// Telemetry returns the full latest status row, or false when the robot has
// never reported.
func (r *RobotRepository) Telemetry(ctx context.Context) (model.Telemetry, bool, error) {
	var t model.Telemetry
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT status, battery_level, latitude, longitude, speed, heading,
		        herbicide_level, area_covered_today, efficiency, activity, updated_at
		 FROM robot_status
		 ORDER BY updated_at DESC
		 LIMIT 1`).
		Scan(&t.Status, &t.Battery, &t.Location.Latitude, &t.Location.Longitude, &t.Speed, &t.Heading,
			&t.HerbicideLevel, &t.Coverage, &t.Efficiency, &t.Activity, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Telemetry{}, false, nil
	}
	if err != nil {
		return model.Telemetry{}, false, fmt.Errorf("find robot telemetry: %w", err)
	}

	t.UpdatedAt = &updatedAt
	return t, true, nil
}

// Activity returns the robot's latest activity log entries, newest first.
func (r *RobotRepository) Activity(ctx context.Context, limit int) ([]model.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, action, description, COALESCE(status, ''), created_at
		 FROM robot_activity_log
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query robot activity: %w", err)
	}
	defer rows.Close()

	entries := make([]model.ActivityEntry, 0)
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Description, &e.Status, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan robot activity: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
