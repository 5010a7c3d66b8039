//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterLoginAndProfile(t *testing.T) {
	server := newServer(t, nil)
	bearer := server.registerAndLogin(t, "ravi@farm.in")

	resp, body := server.call(t, http.MethodGet, "/profile", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Farm struct {
			Name      string   `json:"name"`
			Size      float64  `json:"size"`
			CropTypes []string `json:"crop_types"`
		} `json:"farm"`
		Settings struct {
			Language string `json:"language"`
		} `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	require.Equal(t, "ravi@farm.in", profile.User.Email)
	require.Equal(t, "North Field", profile.Farm.Name)
	require.Equal(t, 2.5, profile.Farm.Size)
	require.Equal(t, []string{"grape"}, profile.Farm.CropTypes)
	require.Equal(t, "en", profile.Settings.Language)

	resp, body = server.call(t, http.MethodPost, "/auth/refresh", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Token refreshed successfully", body.Message)

	resp, body = server.call(t, http.MethodPost, "/auth/logout", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "null", string(body.Data))
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	server := newServer(t, nil)
	server.registerAndLogin(t, "asha@farm.in")

	resp, body := server.call(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name":         "Asha",
		"email":        "asha@farm.in",
		"password":     "secret2",
		"farmName":     "South",
		"farmLocation": "Pune",
		"farmSize":     "4",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "Email already registered", body.Message)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	server := newServer(t, nil)
	server.registerAndLogin(t, "meera@farm.in")

	resp, body := server.call(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":         "meera@farm.in",
		"password":      "wrong-password",
		"firebaseToken": "fcm-device",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid credentials", body.Message)
}

func TestSettingsAndDeviceTokens(t *testing.T) {
	server := newServer(t, nil)
	bearer := server.registerAndLogin(t, "kiran@farm.in")

	resp, body := server.call(t, http.MethodPut, "/profile/settings", bearer, map[string]any{"theme": "dark"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Settings updated successfully", body.Message)

	resp, body = server.call(t, http.MethodPut, "/profile/settings", bearer, map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "No fields to update", body.Message)

	resp, body = server.call(t, http.MethodGet, "/profile/settings", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body.Data), `"theme":"dark"`)

	resp, _ = server.call(t, http.MethodPost, "/profile/fcm-token", bearer, map[string]any{"token": "fcm-abc", "device_info": "Pixel 8"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = server.call(t, http.MethodDelete, "/profile/fcm-token", bearer, map[string]any{"token": "fcm-abc"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body.Data), "FCM token deactivated successfully")
}
