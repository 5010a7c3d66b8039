package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"weedx-backend/internal/model"
	"weedx-backend/pkg/apierror"
)

var testNow = time.Unix(1700000000, 0)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUsers) {
	t.Helper()

	users := newFakeUsers()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	users.add(model.User{ID: 7, Name: "Asha", Email: "a@b.com", PasswordHash: string(hash), CreatedAt: testNow})

	return NewAuthService(users, newTestCodec(testNow)).WithHashCost(bcrypt.MinCost), users
}

func validRegistration() model.RegisterRequest {
	return model.RegisterRequest{
		Name:         "Ravi",
		Email:        "ravi@farm.in",
		Password:     "weedx123",
		FarmName:     "North Field",
		FarmLocation: "Nashik",
		FarmSize:     float64(12.5),
		CropTypes:    []string{"grape", "onion"},
	}
}

func requireAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, status, apiErr.HTTPStatus)
	assert.Equal(t, message, apiErr.Message)
}

func TestAuthService_Login(t *testing.T) {
	svc, users := newAuthFixture(t)

	result, err := svc.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "7", result.UserID)
	assert.Equal(t, "a@b.com", result.Email)
	assert.Equal(t, "Asha", result.User.Name)
	assert.Equal(t, []int64{7}, users.touched)

	claims, err := newTestCodec(testNow).Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.Subject)
	assert.Equal(t, testNow.Unix()+2592000, claims.ExpiresAt)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	svc, users := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@b.com", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	assert.Empty(t, users.touched)
}

func TestAuthService_LoginIgnoresLastLoginFailure(t *testing.T) {
	svc, users := newAuthFixture(t)
	users.touchErr = errors.New("connection reset")

	_, err := svc.Login(context.Background(), "a@b.com", "secret1")
	assert.NoError(t, err)
}

func TestAuthService_Register(t *testing.T) {
	svc, users := newAuthFixture(t)
	on := false
	req := validRegistration()
	req.EmailAlerts = &on
	req.Theme = "dark"

	result, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, users.registered, 1)
	reg := users.registered[0]
	assert.Equal(t, "ravi@farm.in", reg.User.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reg.User.PasswordHash), []byte("weedx123")))
	assert.Equal(t, 12.5, reg.Farm.Size)
	assert.Equal(t, []string{"grape", "onion"}, reg.Farm.CropTypes)
	assert.Equal(t, model.Settings{NotificationsEnabled: true, EmailAlerts: false, Language: "en", Theme: "dark"}, reg.Settings)

	id, err := strconv.ParseInt(result.UserID, 10, 64)
	require.NoError(t, err)
	assert.Equal(t, "ravi@farm.in", result.Email)
	assert.Equal(t, "Registration successful", result.Message)

	claims, err := newTestCodec(testNow).Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Subject)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*model.RegisterRequest)
		message string
	}{
		{"bad email", func(r *model.RegisterRequest) { r.Email = "not-an-email" }, "Invalid email format"},
		{"display name email", func(r *model.RegisterRequest) { r.Email = "Ravi <ravi@farm.in>" }, "Invalid email format"},
		{"short password", func(r *model.RegisterRequest) { r.Password = "12345" }, "Password must be at least 6 characters"},
		{"zero farm", func(r *model.RegisterRequest) { r.FarmSize = float64(0) }, "Invalid farm size"},
		{"negative farm", func(r *model.RegisterRequest) { r.FarmSize = "-3" }, "Invalid farm size"},
		{"text farm", func(r *model.RegisterRequest) { r.FarmSize = "large" }, "Invalid farm size"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, users := newAuthFixture(t)
			req := validRegistration()
			tc.mutate(&req)

			_, err := svc.Register(context.Background(), req)
			requireAPIError(t, err, http.StatusBadRequest, tc.message)
			assert.Empty(t, users.registered)
		})
	}
}

func TestAuthService_RegisterNumericStringFarmSize(t *testing.T) {
	svc, users := newAuthFixture(t)
	req := validRegistration()
	req.FarmSize = " 4.25 "

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 4.25, users.registered[0].Farm.Size)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	req := validRegistration()
	req.Email = "a@b.com"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
}

func TestAuthService_RegisterStoreFailure(t *testing.T) {
	svc, users := newAuthFixture(t)
	users.createErr = errors.New("create registration: insert farm: deadlock detected")

	_, err := svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _ := newAuthFixture(t)

	result, err := svc.Refresh(7, "a@b.com")
	require.NoError(t, err)

	claims, err := newTestCodec(testNow).Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "weedx-backend", claims.Issuer)
}
