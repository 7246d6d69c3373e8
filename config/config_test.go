package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aspen-motorsports/racestrategy/ai"
	"github.com/aspen-motorsports/racestrategy/track"
)

func TestDefaultEngineConfigIsValid(t *testing.T) {
	cfg := DefaultEngineConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadEngineConfigOverlaysDefaults(t *testing.T) {
	path := writeTempConfig(t, `
tick_dt_ms: 250
cooldown_laps: 15
rng_seed: 42
ai_presets:
  hot_head:
    personality: aggressive
`)

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.TickDtMs != 250 {
		t.Fatalf("expected tick_dt_ms 250, got %d", cfg.TickDtMs)
	}
	if cfg.CooldownLaps != 15 {
		t.Fatalf("expected cooldown_laps 15, got %d", cfg.CooldownLaps)
	}
	if cfg.RNGSeed != 42 {
		t.Fatalf("expected rng_seed 42, got %d", cfg.RNGSeed)
	}
	if got := cfg.Personality("hot_head"); got != ai.PersonalityAggressive {
		t.Fatalf("expected aggressive personality, got %v", got)
	}
	if got := cfg.Personality("unknown_preset"); got != ai.PersonalityAdaptive {
		t.Fatalf("expected adaptive default for unknown preset, got %v", got)
	}
}

func TestLoadEngineConfigRejectsUnknownPersonality(t *testing.T) {
	path := writeTempConfig(t, `
ai_presets:
  ghost:
    personality: reckless
`)
	if _, err := LoadEngineConfig(path); err == nil {
		t.Fatal("expected error for unknown personality name")
	}
}

func TestLoadEngineConfigRejectsMissingFile(t *testing.T) {
	if _, err := LoadEngineConfig("/nonexistent/path/engine.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProfileForAppliesOverride(t *testing.T) {
	path := writeTempConfig(t, `
track_profiles:
  short:
    v_ref_mph: 80
    v_top_mph: 140
    mu: 0.92
    base_wear: 2.5
    base_burn: 1.7
`)
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	profile := cfg.ProfileFor(track.ClassShort)
	if profile.VRefMPH != 80 {
		t.Fatalf("expected overridden v_ref_mph 80, got %v", profile.VRefMPH)
	}

	defaultProfile := cfg.ProfileFor(track.ClassIntermediate)
	if defaultProfile.VRefMPH == 80 {
		t.Fatal("intermediate profile should not pick up the short-class override")
	}
}
