package model

import "time"

type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Phone        *string    `json:"phone"`
	Avatar       *string    `json:"avatar"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Farm struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Size      float64   `json:"size"`
	CropTypes []string  `json:"crop_types"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// FarmPatch carries only the farm fields a client sent.
type FarmPatch struct {
	Name      *string
	Location  *string
	Size      *float64
	CropTypes []string
}

func (p FarmPatch) Empty() bool {
	return p.Name == nil && p.Location == nil && p.Size == nil && len(p.CropTypes) == 0
}

// ProfilePatch carries only the account fields a client sent.
type ProfilePatch struct {
	Name  *string
	Email *string
	Phone *string
}

func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}

type Settings struct {
	NotificationsEnabled bool   `json:"notifications_enabled"`
	EmailAlerts          bool   `json:"email_alerts"`
	Language             string `json:"language"`
	Theme                string `json:"theme"`
}

// DefaultSettings is what a user without a settings row sees.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: true,
		EmailAlerts:          true,
		Language:             "en",
		Theme:                "light",
	}
}

// SettingsPatch carries only the fields a client asked to change.
type SettingsPatch struct {
	NotificationsEnabled *bool
	EmailAlerts          *bool
	Language             *string
	Theme                *string
}

func (p SettingsPatch) Empty() bool {
	return p.NotificationsEnabled == nil && p.EmailAlerts == nil && p.Language == nil && p.Theme == nil
}

type ProfileUser struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Avatar *string   `json:"avatar"`
	Phone  *string   `json:"phone"`
	Joined time.Time `json:"joined"`
}

type Profile struct {
	User     ProfileUser `json:"user"`
	Farm     *Farm       `json:"farm"`
	Settings *Settings   `json:"settings"`
}

// Registration is a validated sign-up: the account plus its farm and settings.
type Registration struct {
	User     User
	Farm     Farm
	Settings Settings
}

type AuthUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResult struct {
	Token  string   `json:"token"`
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	User   AuthUser `json:"user"`
}

type RegisterResult struct {
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type TokenResult struct {
	Token string `json:"token"`
}

type DeviceToken struct {
	UserID     int64
	Token      string
	DeviceInfo *string
}
