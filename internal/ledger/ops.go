package ledger

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"
)

// SettingKey names a preference toggle.
type SettingKey string

const (
	SettingSound         SettingKey = "sound"
	SettingHaptic        SettingKey = "haptic"
	SettingNotifications SettingKey = "notifications"
)

// MaxUsernameLen is the longest accepted display name, in runes.
const MaxUsernameLen = 20

// ToggleSetting flips one preference.
func ToggleSetting(key SettingKey) Mutation {
	return func(p *Progress) error {
		switch key {
		case SettingSound:
			p.Settings.SoundEnabled = !p.Settings.SoundEnabled
		case SettingHaptic:
			p.Settings.HapticEnabled = !p.Settings.HapticEnabled
		case SettingNotifications:
			p.Settings.NotificationsEnabled = !p.Settings.NotificationsEnabled
		default:
			return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
		}
		return nil
	}
}

// SetUsername replaces the display name after trimming surrounding space.
func SetUsername(name string) Mutation {
	return func(p *Progress) error {
		name = strings.TrimSpace(name)
		n := utf8.RuneCountInString(name)
		if n == 0 || n > MaxUsernameLen {
			return fmt.Errorf("%w: must be 1-%d characters", ErrInvalidUsername, MaxUsernameLen)
		}
		p.Username = name
		return nil
	}
}

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferralCodeLen is the length of generated referral codes.
const ReferralCodeLen = 6

// NewReferralCode returns a random upper-case alphanumeric code.
func NewReferralCode(r *rand.Rand) string {
	var b strings.Builder
	b.Grow(ReferralCodeLen)
	for i := 0; i < ReferralCodeLen; i++ {
		b.WriteByte(referralAlphabet[r.Intn(len(referralAlphabet))])
	}
	return b.String()
}
