package handler

import (
	"context"
	"net/http"

	"weedx-backend/internal/model"
	"weedx-backend/internal/response"
)

var registerFields = []string{"name", "email", "password", "farmName", "farmLocation", "farmSize"}

type authService interface {
	Login(ctx context.Context, email string, password string) (model.LoginResult, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.RegisterResult, error)
	Refresh(subject int64, email string) (model.TokenResult, error)
}

type loginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirebaseToken string `json:"firebaseToken"`
}

type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(r *http.Request) response.Envelope {
	raw, err := readBody(r)
	if err != nil {
		return response.FromError(errInvalidBody)
	}

	if err := response.ValidateRequired(decodeFields(raw), "email", "password", "firebaseToken"); err != nil {
		return response.FromError(err)
	}

	var payload loginRequest
	if err := decodeInto(raw, &payload); err != nil {
		return response.FromError(err)
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		return fault("Login failed", err)
	}

	return response.Success(result, "Login successful")
}

// Register is reachable with any method and rejects everything but POST.
func (h *AuthHandler) Register(r *http.Request) response.Envelope {
	if r.Method != http.MethodPost {
		return response.Error("Method not allowed", http.StatusMethodNotAllowed)
	}

	raw, err := readBody(r)
	if err != nil {
		return response.FromError(errInvalidBody)
	}

	fields := decodeFields(raw)
	for _, field := range registerFields {
		if response.ValidateRequired(fields, field) != nil {
			return response.Error("Missing required field: "+field, http.StatusBadRequest)
		}
	}

	var payload model.RegisterRequest
	if err := decodeInto(raw, &payload); err != nil {
		return response.FromError(err)
	}

	result, err := h.service.Register(r.Context(), payload)
	if err != nil {
		return fault("Registration failed", err)
	}

	return response.Success(result, "User registered successfully")
}

// Logout only acknowledges the call. Issued tokens stay valid until they
// expire.
func (h *AuthHandler) Logout(r *http.Request) response.Envelope {
	return response.Success(nil, "Logged out successfully")
}

func (h *AuthHandler) Refresh(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	result, err := h.service.Refresh(claims.Subject, claims.Email)
	if err != nil {
		return fault("Token refresh failed", err)
	}

	return response.Success(result, "Token refreshed successfully")
}
