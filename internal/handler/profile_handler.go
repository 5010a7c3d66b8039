package handler

import (
	"context"
	"net/http"

	"weedx-backend/internal/model"
	"weedx-backend/internal/response"
)

type profileService interface {
	Profile(ctx context.Context, userID int64) (model.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, patch model.ProfilePatch) error
	Farm(ctx context.Context, userID int64) (model.Farm, error)
	SaveFarm(ctx context.Context, userID int64, patch model.FarmPatch) (int64, error)
	Settings(ctx context.Context, userID int64) (model.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, patch model.SettingsPatch) (bool, error)
	RegisterDevice(ctx context.Context, userID int64, deviceToken string, deviceInfo *string) error
	DeactivateDevice(ctx context.Context, deviceToken string) error
}

type ProfileHandler struct {
	service profileService
}

func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Profile(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	profile, err := h.service.Profile(r.Context(), claims.Subject)
	if err != nil {
		return fault("Failed to fetch profile", err)
	}

	return response.Success(profile, "")
}

func (h *ProfileHandler) UpdateProfile(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	var payload model.ProfileRequest
	raw, err := readBody(r)
	if err == nil {
		err = decodeInto(raw, &payload)
	}
	if err != nil {
		return response.FromError(errInvalidBody)
	}

	patch := model.ProfilePatch{Name: payload.Name, Email: payload.Email, Phone: payload.Phone}
	if err := h.service.UpdateProfile(r.Context(), claims.Subject, patch); err != nil {
		return fault("Failed to update profile", err)
	}

	return response.Success(nil, "Profile updated successfully")
}

func (h *ProfileHandler) Farm(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	farm, err := h.service.Farm(r.Context(), claims.Subject)
	if err != nil {
		return fault("Failed to fetch farm info", err)
	}

	return response.Success(farm, "")
}

// UpdateFarm patches the user's farm, or creates it with 201 when the user
// has none yet.
func (h *ProfileHandler) UpdateFarm(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	var payload model.FarmRequest
	raw, err := readBody(r)
	if err == nil {
		err = decodeInto(raw, &payload)
	}
	if err != nil {
		return response.FromError(errInvalidBody)
	}

	patch := model.FarmPatch{
		Name:      payload.Name,
		Location:  payload.Location,
		Size:      payload.Size,
		CropTypes: payload.CropTypes,
	}

	id, err := h.service.SaveFarm(r.Context(), claims.Subject, patch)
	if err != nil {
		return fault("Failed to update farm", err)
	}

	if id != 0 {
		return response.Success(map[string]int64{"id": id}, "Farm created successfully").WithStatus(http.StatusCreated)
	}
	return response.Success(nil, "Farm info updated successfully")
}

func (h *ProfileHandler) Settings(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	settings, err := h.service.Settings(r.Context(), claims.Subject)
	if err != nil {
		return fault("Failed to fetch settings", err)
	}

	return response.Success(settings, "")
}

// UpdateSettings changes only the fields present in the body. Empty language
// or theme strings count as absent.
func (h *ProfileHandler) UpdateSettings(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	raw, err := readBody(r)
	if err != nil {
		return response.FromError(errInvalidBody)
	}

	var payload model.SettingsRequest
	if err := decodeInto(raw, &payload); err != nil {
		return response.FromError(err)
	}

	patch := model.SettingsPatch{
		NotificationsEnabled: payload.NotificationsEnabled.Bool(),
		EmailAlerts:          payload.EmailAlerts.Bool(),
		Language:             nonEmpty(payload.Language),
		Theme:                nonEmpty(payload.Theme),
	}

	created, err := h.service.UpdateSettings(r.Context(), claims.Subject, patch)
	if err != nil {
		return fault("Failed to update settings", err)
	}

	if created {
		return response.Success(nil, "Settings created successfully").WithStatus(http.StatusCreated)
	}
	return response.Success(nil, "Settings updated successfully")
}

func (h *ProfileHandler) RegisterDevice(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	payload, env, ok := deviceToken(r)
	if !ok {
		return env
	}

	if err := h.service.RegisterDevice(r.Context(), claims.Subject, payload.Token, payload.DeviceInfo); err != nil {
		return fault("Failed to register FCM token", err)
	}

	return response.Success(map[string]string{"message": "FCM token registered successfully"}, "")
}

func (h *ProfileHandler) DeactivateDevice(r *http.Request) response.Envelope {
	payload, env, ok := deviceToken(r)
	if !ok {
		return env
	}

	if err := h.service.DeactivateDevice(r.Context(), payload.Token); err != nil {
		return fault("Failed to deactivate FCM token", err)
	}

	return response.Success(map[string]string{"message": "FCM token deactivated successfully"}, "")
}

func deviceToken(r *http.Request) (model.DeviceTokenRequest, response.Envelope, bool) {
	var payload model.DeviceTokenRequest

	raw, err := readBody(r)
	if err == nil {
		err = decodeInto(raw, &payload)
	}
	if err != nil {
		return payload, response.FromError(errInvalidBody), false
	}

	return payload, response.Envelope{}, true
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
