// Package config loads engine tuning from YAML, mirroring the teacher's
// strategy.Config/LoadConfig default-then-overlay shape but re-themed from
// LLM request tuning to race setup: tick cadence, decision cooldown, RNG
// seeding, per-track-class wear/burn tables, and AI personality presets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aspen-motorsports/racestrategy/ai"
	"github.com/aspen-motorsports/racestrategy/physics"
	"github.com/aspen-motorsports/racestrategy/raceerr"
	"github.com/aspen-motorsports/racestrategy/track"
)

// ProfileOverride is a per-track-class wear/burn table entry, letting a
// config file retune physics.Profile without recompiling.
type ProfileOverride struct {
	VRefMPH  float64 `yaml:"v_ref_mph"`
	VTopMPH  float64 `yaml:"v_top_mph"`
	Mu       float64 `yaml:"mu"`
	BaseWear float64 `yaml:"base_wear"`
	BaseBurn float64 `yaml:"base_burn"`
}

// AIPreset names a reusable AI personality assignment, keyed by a label a
// roster file can reference instead of repeating ai.Personality values.
type AIPreset struct {
	Personality string `yaml:"personality"`
}

// EngineConfig is the YAML-loadable tuning surface for one race.Config.
type EngineConfig struct {
	TickDtMs     int    `yaml:"tick_dt_ms"`
	CooldownLaps int    `yaml:"cooldown_laps"`
	RNGSeed      uint64 `yaml:"rng_seed"`

	TrackProfiles map[string]ProfileOverride `yaml:"track_profiles"` // keyed by "short"/"intermediate"/"superspeedway"
	AIPresets     map[string]AIPreset        `yaml:"ai_presets"`
}

// DefaultEngineConfig returns sensible defaults: a 500ms tick, the Decision
// Engine's standard 10-lap cooldown, and a fixed demo RNG seed a caller is
// expected to override for a real race.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		TickDtMs:     500,
		CooldownLaps: 10,
		RNGSeed:      1,
	}
}

// LoadEngineConfig reads path, applies it over DefaultEngineConfig, and
// validates the result. A missing or malformed file, or an out-of-range
// value, is a ConfigurationError per §7.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, raceerr.New(raceerr.KindConfiguration, "CONFIG_READ_FAILED", fmt.Sprintf("reading %s: %v", path, err))
	}

	overlay := &EngineConfig{}
	if err := yaml.Unmarshal(data, overlay); err != nil {
		return nil, raceerr.New(raceerr.KindConfiguration, "CONFIG_PARSE_FAILED", fmt.Sprintf("parsing %s: %v", path, err))
	}

	if overlay.TickDtMs > 0 {
		cfg.TickDtMs = overlay.TickDtMs
	}
	if overlay.CooldownLaps > 0 {
		cfg.CooldownLaps = overlay.CooldownLaps
	}
	if overlay.RNGSeed != 0 {
		cfg.RNGSeed = overlay.RNGSeed
	}
	if overlay.TrackProfiles != nil {
		cfg.TrackProfiles = overlay.TrackProfiles
	}
	if overlay.AIPresets != nil {
		cfg.AIPresets = overlay.AIPresets
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks range invariants a loaded EngineConfig must hold.
func (c *EngineConfig) Validate() error {
	if c.TickDtMs <= 0 {
		return raceerr.New(raceerr.KindConfiguration, "INVALID_TICK_DT", "tick_dt_ms must be positive")
	}
	if c.CooldownLaps <= 0 {
		return raceerr.New(raceerr.KindConfiguration, "INVALID_COOLDOWN", "cooldown_laps must be positive")
	}
	for name, preset := range c.AIPresets {
		if _, ok := personalityByName(preset.Personality); !ok {
			return raceerr.New(raceerr.KindConfiguration, "INVALID_AI_PRESET", fmt.Sprintf("ai_presets[%q]: unknown personality %q", name, preset.Personality))
		}
	}
	for name, p := range c.TrackProfiles {
		if p.VRefMPH <= 0 || p.VTopMPH <= 0 || p.Mu <= 0 {
			return raceerr.New(raceerr.KindConfiguration, "INVALID_TRACK_PROFILE", fmt.Sprintf("track_profiles[%q]: v_ref_mph, v_top_mph, and mu must be positive", name))
		}
	}
	return nil
}

func personalityByName(name string) (ai.Personality, bool) {
	switch name {
	case "aggressive":
		return ai.PersonalityAggressive, true
	case "patient":
		return ai.PersonalityPatient, true
	case "adaptive":
		return ai.PersonalityAdaptive, true
	default:
		return 0, false
	}
}

// Personality resolves a named AI preset to its ai.Personality, defaulting
// to PersonalityAdaptive if name is not a configured preset.
func (c *EngineConfig) Personality(name string) ai.Personality {
	preset, ok := c.AIPresets[name]
	if !ok {
		return ai.PersonalityAdaptive
	}
	p, ok := personalityByName(preset.Personality)
	if !ok {
		return ai.PersonalityAdaptive
	}
	return p
}

func classKey(class track.Class) string {
	switch class {
	case track.ClassShort:
		return "short"
	case track.ClassIntermediate:
		return "intermediate"
	case track.ClassSuperspeedway:
		return "superspeedway"
	default:
		return "intermediate"
	}
}

// ProfileFor returns the physics.Profile for class, applying this config's
// track_profiles overlay over physics.DefaultProfile when present.
func (c *EngineConfig) ProfileFor(class track.Class) physics.Profile {
	base := physics.DefaultProfile(class)
	override, ok := c.TrackProfiles[classKey(class)]
	if !ok {
		return base
	}
	return physics.Profile{
		VRefMPH:  override.VRefMPH,
		VTopMPH:  override.VTopMPH,
		Mu:       override.Mu,
		BaseWear: override.BaseWear,
		BaseBurn: override.BaseBurn,
	}
}
