package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"weedx-backend/internal/model"
	"weedx-backend/internal/token"
	"weedx-backend/pkg/apierror"
)

const (
	defaultHashCost   = 12
	minPasswordLength = 6
)

type userStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateRegistration(ctx context.Context, reg model.Registration) (int64, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

type tokenIssuer interface {
	Issue(subject int64, email string) (string, token.Claims, error)
}

type AuthService struct {
	users    userStore
	tokens   tokenIssuer
	hashCost int
}

func NewAuthService(users userStore, tokens tokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, hashCost: defaultHashCost}
}

// WithHashCost overrides the bcrypt cost used for new passwords.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	signed, _, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "user_id", user.ID, "error", err)
	}

	return model.LoginResult{
		Token:  signed,
		UserID: strconv.FormatInt(user.ID, 10),
		Email:  user.Email,
		User: model.AuthUser{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Avatar:    user.Avatar,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.RegisterResult, error) {
	email := strings.TrimSpace(req.Email)
	if !validEmail(email) {
		return model.RegisterResult{}, apierror.New("Invalid email format", http.StatusBadRequest)
	}

	if len(req.Password) < minPasswordLength {
		return model.RegisterResult{}, apierror.New("Password must be at least 6 characters", http.StatusBadRequest)
	}

	farmSize, ok := parseFarmSize(req.FarmSize)
	if !ok || farmSize <= 0 {
		return model.RegisterResult{}, apierror.New("Invalid farm size", http.StatusBadRequest)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.RegisterResult{}, fmt.Errorf("register: %w", err)
	}
	if exists {
		return model.RegisterResult{}, model.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return model.RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	settings := model.DefaultSettings()
	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.EmailAlerts != nil {
		settings.EmailAlerts = *req.EmailAlerts
	}
	if lang := strings.TrimSpace(req.Language); lang != "" {
		settings.Language = lang
	}
	if theme := strings.TrimSpace(req.Theme); theme != "" {
		settings.Theme = theme
	}

	userID, err := s.users.CreateRegistration(ctx, model.Registration{
		User: model.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Phone:        req.Phone,
		},
		Farm: model.Farm{
			Name:      strings.TrimSpace(req.FarmName),
			Location:  strings.TrimSpace(req.FarmLocation),
			Size:      farmSize,
			CropTypes: req.CropTypes,
		},
		Settings: settings,
	})
	if err != nil {
		return model.RegisterResult{}, err
	}

	signed, _, err := s.tokens.Issue(userID, email)
	if err != nil {
		return model.RegisterResult{}, fmt.Errorf("issue token: %w", err)
	}

	slog.Info("user registered", "user_id", userID, "email", email)
	return model.RegisterResult{
		Token:   signed,
		UserID:  strconv.FormatInt(userID, 10),
		Email:   email,
		Message: "Registration successful",
	}, nil
}

// Refresh issues a fresh token for an already authenticated caller.
func (s *AuthService) Refresh(subject int64, email string) (model.TokenResult, error) {
	signed, _, err := s.tokens.Issue(subject, email)
	if err != nil {
		return model.TokenResult{}, fmt.Errorf("issue token: %w", err)
	}
	return model.TokenResult{Token: signed}, nil
}

func validEmail(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return false
	}
	at := strings.LastIndex(raw, "@")
	return at > 0 && strings.Contains(raw[at+1:], ".")
}

// parseFarmSize accepts a JSON number or a numeric string.
func parseFarmSize(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
