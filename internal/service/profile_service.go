package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"weedx-backend/internal/model"
	"weedx-backend/pkg/apierror"
)

type profileUserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FarmByUser(ctx context.Context, userID int64) (*model.Farm, error)
	UpdateProfile(ctx context.Context, id int64, patch model.ProfilePatch) error
	UpdateFarm(ctx context.Context, userID int64, patch model.FarmPatch) (bool, error)
	CreateFarm(ctx context.Context, f model.Farm) (int64, error)
}

type settingsStore interface {
	Get(ctx context.Context, userID int64) (model.Settings, error)
	Update(ctx context.Context, userID int64, patch model.SettingsPatch) (bool, error)
	Create(ctx context.Context, userID int64, s model.Settings) error
}

type deviceTokenStore interface {
	Register(ctx context.Context, t model.DeviceToken) error
	Deactivate(ctx context.Context, token string) error
}

var (
	ErrNoFieldsToUpdate = apierror.New("No fields to update", http.StatusBadRequest)
	ErrFarmNotFound     = apierror.New("No farm information found", http.StatusNotFound)
)

// ProfileService serves the account screen: profile, preferences and the
// push tokens of the user's devices.
type ProfileService struct {
	users    profileUserStore
	settings settingsStore
	devices  deviceTokenStore
}

func NewProfileService(users profileUserStore, settings settingsStore, devices deviceTokenStore) *ProfileService {
	return &ProfileService{users: users, settings: settings, devices: devices}
}

func (s *ProfileService) Profile(ctx context.Context, userID int64) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	farm, err := s.users.FarmByUser(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	profile := model.Profile{
		User: model.ProfileUser{
			ID:     user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Avatar: user.Avatar,
			Phone:  user.Phone,
			Joined: user.CreatedAt,
		},
		Farm: farm,
	}

	settings, err := s.settings.Get(ctx, userID)
	switch {
	case errors.Is(err, model.ErrSettingsNotFound):
	case err != nil:
		return model.Profile{}, err
	default:
		profile.Settings = &settings
	}

	return profile, nil
}

// UpdateProfile changes the account fields present in patch. Blank values
// count as absent.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, patch model.ProfilePatch) error {
	patch = model.ProfilePatch{
		Name:  trimmed(patch.Name),
		Email: trimmed(patch.Email),
		Phone: trimmed(patch.Phone),
	}
	if patch.Empty() {
		return ErrNoFieldsToUpdate
	}

	return s.users.UpdateProfile(ctx, userID, patch)
}

func (s *ProfileService) Farm(ctx context.Context, userID int64) (model.Farm, error) {
	farm, err := s.users.FarmByUser(ctx, userID)
	if err != nil {
		return model.Farm{}, err
	}
	if farm == nil {
		return model.Farm{}, ErrFarmNotFound
	}
	return *farm, nil
}

// SaveFarm patches the user's farm, or creates one when the user has none.
// Creating requires name, location and size. It returns the new farm id, or
// zero when an existing farm was updated.
func (s *ProfileService) SaveFarm(ctx context.Context, userID int64, patch model.FarmPatch) (int64, error) {
	patch.Name = trimmed(patch.Name)
	patch.Location = trimmed(patch.Location)
	if patch.Size != nil && *patch.Size == 0 {
		patch.Size = nil
	}

	existing, err := s.users.FarmByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if patch.Empty() {
			return 0, ErrNoFieldsToUpdate
		}
		if _, err := s.users.UpdateFarm(ctx, userID, patch); err != nil {
			return 0, err
		}
		return 0, nil
	}

	missing := make([]string, 0, 3)
	if patch.Name == nil {
		missing = append(missing, "name")
	}
	if patch.Location == nil {
		missing = append(missing, "location")
	}
	if patch.Size == nil {
		missing = append(missing, "size")
	}
	if len(missing) > 0 {
		return 0, apierror.WithErrors(
			"Missing required fields: "+strings.Join(missing, ", "),
			http.StatusBadRequest,
			map[string]any{"missing_fields": missing},
		)
	}

	return s.users.CreateFarm(ctx, model.Farm{
		UserID:    userID,
		Name:      *patch.Name,
		Location:  *patch.Location,
		Size:      *patch.Size,
		CropTypes: patch.CropTypes,
	})
}

// Settings returns the stored preferences, or the defaults when the user
// never saved any.
func (s *ProfileService) Settings(ctx context.Context, userID int64) (model.Settings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if errors.Is(err, model.ErrSettingsNotFound) {
		return model.DefaultSettings(), nil
	}
	return settings, err
}

// UpdateSettings applies patch and reports whether a settings row had to be
// created for it.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID int64, patch model.SettingsPatch) (bool, error) {
	if !patch.Empty() {
		updated, err := s.settings.Update(ctx, userID, patch)
		if err != nil {
			return false, err
		}
		if updated {
			return false, nil
		}
	} else {
		_, err := s.settings.Get(ctx, userID)
		if err == nil {
			return false, ErrNoFieldsToUpdate
		}
		if !errors.Is(err, model.ErrSettingsNotFound) {
			return false, err
		}
	}

	settings := model.DefaultSettings()
	if patch.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if patch.EmailAlerts != nil {
		settings.EmailAlerts = *patch.EmailAlerts
	}
	if patch.Language != nil {
		settings.Language = *patch.Language
	}
	if patch.Theme != nil {
		settings.Theme = *patch.Theme
	}

	if err := s.settings.Create(ctx, userID, settings); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ProfileService) RegisterDevice(ctx context.Context, userID int64, deviceToken string, deviceInfo *string) error {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return apierror.New("FCM token is required", http.StatusBadRequest)
	}

	if err := s.devices.Register(ctx, model.DeviceToken{UserID: userID, Token: deviceToken, DeviceInfo: deviceInfo}); err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

func (s *ProfileService) DeactivateDevice(ctx context.Context, deviceToken string) error {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return apierror.New("FCM token is required", http.StatusBadRequest)
	}

	if err := s.devices.Deactivate(ctx, deviceToken); err != nil {
		return fmt.Errorf("deactivate device: %w", err)
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
