package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type RegisterRequest struct {
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	Password             string   `json:"password"`
	Phone                *string  `json:"phone"`
	FarmName             string   `json:"farmName"`
	FarmLocation         string   `json:"farmLocation"`
	FarmSize             any      `json:"farmSize"`
	CropTypes            []string `json:"cropTypes"`
	NotificationsEnabled *bool    `json:"notificationsEnabled"`
	EmailAlerts          *bool    `json:"emailAlerts"`
	Language             string   `json:"language"`
	Theme                string   `json:"theme"`
}

type SettingsRequest struct {
	NotificationsEnabled *FlexBool `json:"notifications_enabled"`
	EmailAlerts          *FlexBool `json:"email_alerts"`
	Language             *string   `json:"language"`
	Theme                *string   `json:"theme"`
}

// FlexBool accepts the boolean spellings mobile clients send: JSON booleans,
// 0 and 1, and the same values as strings.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid boolean %s", data)
	}
	*b = FlexBool(v)
	return nil
}

// Bool returns nil for an absent flag.
func (b *FlexBool) Bool() *bool {
	if b == nil {
		return nil
	}
	v := bool(*b)
	return &v
}

type ProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type FarmRequest struct {
	Name      *string  `json:"name"`
	Location  *string  `json:"location"`
	Size      *float64 `json:"size"`
	CropTypes []string `json:"crop_types"`
}

type DeviceTokenRequest struct {
	Token      string  `json:"token"`
	DeviceInfo *string `json:"device_info"`
}

type CreateAlertRequest struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type GalleryImage struct {
	ID         int64     `json:"id"`
	URL        *string   `json:"url"`
	WeedType   string    `json:"weed_type"`
	Confidence float64   `json:"confidence"`
	Location   Location  `json:"location"`
	CropType   *string   `json:"crop_type"`
	CapturedAt time.Time `json:"captured_at"`
}
