package domain

import "strings"

// Settings table keys.
const (
	SettingEmailAddress  = "email_address"
	SettingEmailPassword = "email_password"
	SettingEmailEnabled  = "notifications_enabled"
)

// EmailSettings is the reminder configuration. The address is both sender and recipient.
type EmailSettings struct {
	Address  string `json:"address"`
	Password string `json:"-"`
	Enabled  bool   `json:"enabled"`
}

// Ready reports whether a message may be dispatched with these settings.
func (s EmailSettings) Ready() error {
	if !s.Enabled {
		return ErrNotificationsDisabled
	}
	if strings.TrimSpace(s.Address) == "" || s.Password == "" {
		return ErrEmailNotConfigured
	}
	return nil
}
