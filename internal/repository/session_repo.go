package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"weedx-backend/internal/model"
)

// SessionRepository sums the robot's work sessions.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Totals sums area, herbicide and finished operating time over the sessions
// f selects. Operating time counts whole minutes per session.
func (r *SessionRepository) Totals(ctx context.Context, f model.SessionFilter) (model.SessionTotals, error) {
	var t model.SessionTotals
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(area_covered), 0)::float8,
		        COALESCE(SUM(herbicide_used), 0)::float8,
		        (COALESCE(SUM(FLOOR(EXTRACT(EPOCH FROM end_time - start_time) / 60))
		                  FILTER (WHERE end_time IS NOT NULL), 0) / 60)::float8
		 FROM robot_sessions
		 WHERE ($1::bigint IS NULL OR user_id = $1)
		   AND (NOT $2::boolean OR start_time::date = CURRENT_DATE)`, f.UserID, f.Today).
		Scan(&t.AreaCovered, &t.HerbicideUsed, &t.OperatingHours)
	if err != nil {
		return model.SessionTotals{}, fmt.Errorf("sum robot sessions: %w", err)
	}
	return t, nil
}
