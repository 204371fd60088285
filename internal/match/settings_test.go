package match

import "testing"

func TestThresholdsFromSettingsOverlays(t *testing.T) {
	policy := ThresholdsFromSettings(map[string]string{
		SettingAcceptThreshold: "0.6",
		SettingHighThreshold:   "0.9",
	})
	if policy.Accept != 0.6 {
		t.Fatalf("accept = %f", policy.Accept)
	}
	if policy.High != 0.9 {
		t.Fatalf("high = %f", policy.High)
	}
	if policy.YearBonus != DefaultThresholds().YearBonus {
		t.Fatalf("year bonus = %f, want default", policy.YearBonus)
	}
}

func TestThresholdsFromSettingsIgnoresInvalid(t *testing.T) {
	policy := ThresholdsFromSettings(map[string]string{
		SettingAcceptThreshold: "not-a-number",
		SettingHighThreshold:   "1.5",
		SettingYearBonus:       "-0.2",
	})
	if policy != DefaultThresholds() {
		t.Fatalf("policy = %+v, want defaults", policy)
	}
}

func TestThresholdsFromSettingsNilMap(t *testing.T) {
	if policy := ThresholdsFromSettings(nil); policy != DefaultThresholds() {
		t.Fatalf("policy = %+v, want defaults", policy)
	}
}
