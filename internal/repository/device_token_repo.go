package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"weedx-backend/internal/model"
)

// DeviceTokenRepository stores the push tokens mobile devices register.
type DeviceTokenRepository struct {
	pool *pgxpool.Pool
}

func NewDeviceTokenRepository(pool *pgxpool.Pool) *DeviceTokenRepository {
	return &DeviceTokenRepository{pool: pool}
}

// Register inserts the token or, if another account registered it before,
// moves it to this user and reactivates it.
func (r *DeviceTokenRepository) Register(ctx context.Context, t model.DeviceToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO fcm_tokens (user_id, token, device_info, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		 ON CONFLICT (token) DO UPDATE SET
		     user_id = EXCLUDED.user_id,
		     device_info = EXCLUDED.device_info,
		     is_active = TRUE,
		     updated_at = NOW()`,
		t.UserID, t.Token, t.DeviceInfo)
	if err != nil {
		return fmt.Errorf("register device token: %w", err)
	}
	return nil
}

// Deactivate marks the token inactive. Unknown tokens are not an error.
func (r *DeviceTokenRepository) Deactivate(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE fcm_tokens SET is_active = FALSE, updated_at = NOW() WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("deactivate device token: %w", err)
	}
	return nil
}
