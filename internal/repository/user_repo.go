package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"weedx-backend/internal/model"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, password, phone, avatar, last_login, created_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Avatar, &u.LastLogin, &u.CreatedAt)
	return u, err
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// CreateRegistration inserts the user, the farm and the settings row in one
// transaction and returns the new user id.
func (r *UserRepository) CreateRegistration(ctx context.Context, reg model.Registration) (int64, error) {
	var userID int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO users (name, email, password, phone, created_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 RETURNING id`,
			reg.User.Name, reg.User.Email, reg.User.PasswordHash, reg.User.Phone).Scan(&userID); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		var cropTypes any
		if len(reg.Farm.CropTypes) > 0 {
			cropTypes = reg.Farm.CropTypes
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO farms (user_id, name, location, size, crop_types, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			userID, reg.Farm.Name, reg.Farm.Location, reg.Farm.Size, cropTypes); err != nil {
			return fmt.Errorf("insert farm: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO user_settings (user_id, notifications_enabled, email_alerts, language, theme, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
			userID, reg.Settings.NotificationsEnabled, reg.Settings.EmailAlerts,
			reg.Settings.Language, reg.Settings.Theme); err != nil {
			return fmt.Errorf("insert settings: %w", err)
		}

		return nil
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return 0, model.ErrUserAlreadyExists
	}
	if err != nil {
		return 0, fmt.Errorf("create registration: %w", err)
	}
	return userID, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// FarmByUser returns the user's first farm, or nil when none exists.
func (r *UserRepository) FarmByUser(ctx context.Context, userID int64) (*model.Farm, error) {
	var f model.Farm
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, location, size, crop_types, created_at
		 FROM farms WHERE user_id = $1
		 ORDER BY id
		 LIMIT 1`, userID).
		Scan(&f.ID, &f.UserID, &f.Name, &f.Location, &f.Size, &f.CropTypes, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find farm by user: %w", err)
	}
	return &f, nil
}

// setClause collects the assignments of a partial UPDATE.
type setClause struct {
	sets []string
	args []any
}

func (c *setClause) add(column string, value any) {
	c.args = append(c.args, value)
	c.sets = append(c.sets, column+" = $"+strconv.Itoa(len(c.args)))
}

// where appends value as the next argument and returns its placeholder.
func (c *setClause) where(value any) string {
	c.args = append(c.args, value)
	return "$" + strconv.Itoa(len(c.args))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, patch model.ProfilePatch) error {
	var c setClause
	if patch.Name != nil {
		c.add("name", *patch.Name)
	}
	if patch.Email != nil {
		c.add("email", strings.TrimSpace(*patch.Email))
	}
	if patch.Phone != nil {
		c.add("phone", *patch.Phone)
	}
	if len(c.sets) == 0 {
		return nil
	}

	query := `UPDATE users SET ` + strings.Join(c.sets, ", ") + ` WHERE id = ` + c.where(id)
	tag, err := r.pool.Exec(ctx, query, c.args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// UpdateFarm patches every farm of the user and reports whether one existed.
func (r *UserRepository) UpdateFarm(ctx context.Context, userID int64, patch model.FarmPatch) (bool, error) {
	var c setClause
	if patch.Name != nil {
		c.add("name", *patch.Name)
	}
	if patch.Location != nil {
		c.add("location", *patch.Location)
	}
	if patch.Size != nil {
		c.add("size", *patch.Size)
	}
	if len(patch.CropTypes) > 0 {
		c.add("crop_types", patch.CropTypes)
	}
	if len(c.sets) == 0 {
		return false, nil
	}

	query := `UPDATE farms SET ` + strings.Join(c.sets, ", ") + ` WHERE user_id = ` + c.where(userID)
	tag, err := r.pool.Exec(ctx, query, c.args...)
	if err != nil {
		return false, fmt.Errorf("update farm: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) CreateFarm(ctx context.Context, f model.Farm) (int64, error) {
	var cropTypes any
	if len(f.CropTypes) > 0 {
		cropTypes = f.CropTypes
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO farms (user_id, name, location, size, crop_types, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id`,
		f.UserID, f.Name, f.Location, f.Size, cropTypes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create farm: %w", err)
	}
	return id, nil
}
