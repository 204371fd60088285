package match

import "strconv"

// Setting keys under which the matching policy can be tuned at runtime.
const (
	SettingAcceptThreshold = "match_accept_threshold"
	SettingHighThreshold   = "match_high_threshold"
	SettingYearBonus       = "match_year_bonus"
)

// ThresholdsFromSettings overlays stored settings onto the compiled-in
// policy. Absent or unparseable values keep their defaults.
func ThresholdsFromSettings(settings map[string]string) Thresholds {
	policy := DefaultThresholds()
	overlayFloat(settings, SettingAcceptThreshold, &policy.Accept)
	overlayFloat(settings, SettingHighThreshold, &policy.High)
	overlayFloat(settings, SettingYearBonus, &policy.YearBonus)
	return policy
}

func overlayFloat(settings map[string]string, key string, dst *float64) {
	raw, ok := settings[key]
	if !ok {
		return
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 || value > 1 {
		return
	}
	*dst = value
}
