package race

import (
	"github.com/aspen-motorsports/racestrategy/ai"
	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/physics"
	"github.com/aspen-motorsports/racestrategy/track"
)

// Config is the Initialize() input of §6's Engine API:
// { Track, Laps, PlayerDriver, AIDrivers[], StartingPositions[], RNGSeed }
// plus the config.EngineConfig overlay fields (Profile/CooldownLaps).
type Config struct {
	Track        *track.Track
	Laps         int
	PlayerDriver *driver.Driver
	AIDrivers    []*driver.Driver

	// AIPersonalities maps a driver ID to its AI personality. Missing
	// entries default to ai.PersonalityAdaptive.
	AIPersonalities map[string]ai.Personality

	// StartingPositions lists driver IDs in starting grid order. A nil or
	// empty slice starts the player on pole followed by AIDrivers in the
	// order given.
	StartingPositions []string

	RNGSeed uint64

	// Profile overrides the track-class default physics.Profile. Nil uses
	// physics.DefaultProfile(Track.Class).
	Profile *physics.Profile

	// CooldownLaps overrides the player Decision Engine's default 10-lap
	// cooldown. 0 keeps the default.
	CooldownLaps int
}
