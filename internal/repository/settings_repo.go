package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weedx-backend/internal/model"
)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func (r *SettingsRepository) Get(ctx context.Context, userID int64) (model.Settings, error) {
	var s model.Settings
	err := r.pool.QueryRow(ctx,
		`SELECT notifications_enabled, email_alerts, language, theme
		 FROM user_settings WHERE user_id = $1`, userID).
		Scan(&s.NotificationsEnabled, &s.EmailAlerts, &s.Language, &s.Theme)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Settings{}, model.ErrSettingsNotFound
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// Update applies the non-nil fields of patch. It reports false when the user
// has no settings row yet.
func (r *SettingsRepository) Update(ctx context.Context, userID int64, patch model.SettingsPatch) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_settings SET
		     notifications_enabled = COALESCE($2, notifications_enabled),
		     email_alerts = COALESCE($3, email_alerts),
		     language = COALESCE($4, language),
		     theme = COALESCE($5, theme),
		     updated_at = NOW()
		 WHERE user_id = $1`,
		userID, patch.NotificationsEnabled, patch.EmailAlerts, patch.Language, patch.Theme)
	if err != nil {
		return false, fmt.Errorf("update settings: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SettingsRepository) Create(ctx context.Context, userID int64, s model.Settings) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_settings (user_id, notifications_enabled, email_alerts, language, theme, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
		userID, s.NotificationsEnabled, s.EmailAlerts, s.Language, s.Theme)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}
	return nil
}
