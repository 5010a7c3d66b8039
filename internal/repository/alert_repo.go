package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weedx-backend/internal/model"
)

type AlertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

func (r *AlertRepository) Recent(ctx context.Context, limit int) ([]model.Alert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type, severity, message, is_read, created_at
		 FROM alerts
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent alerts: %w", err)
	}
	return collectAlerts(rows)
}

func (r *AlertRepository) Page(ctx context.Context, page, limit int) ([]model.Alert, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, type, severity, message, is_read, created_at
		 FROM alerts
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query alerts page: %w", err)
	}

	alerts, err := collectAlerts(rows)
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func (r *AlertRepository) Create(ctx context.Context, a model.Alert) (model.Alert, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO alerts (type, severity, message, is_read, created_at)
		 VALUES ($1, $2, $3, FALSE, NOW())
		 RETURNING id, created_at`,
		a.Type, string(a.Severity), a.Message).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return model.Alert{}, fmt.Errorf("create alert: %w", err)
	}
	a.IsRead = false
	return a, nil
}

func collectAlerts(rows pgx.Rows) ([]model.Alert, error) {
	defer rows.Close()

	alerts := make([]model.Alert, 0)
	for rows.Next() {
		var a model.Alert
		var severity string
		if err := rows.Scan(&a.ID, &a.Type, &severity, &a.Message, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Severity = model.AlertSeverity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
