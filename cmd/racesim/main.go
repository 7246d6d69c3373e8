// racesim is a thin CLI embedding example for the race engine: load a
// config, build a small grid on a catalog track, run it to completion
// unattended (every decision resolves to its default option), and print a
// final leaderboard. It exists to exercise the engine's public API the way
// a host application would, not as a game itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aspen-motorsports/racestrategy/ai"
	"github.com/aspen-motorsports/racestrategy/bridge"
	"github.com/aspen-motorsports/racestrategy/config"
	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/physics"
	"github.com/aspen-motorsports/racestrategy/race"
	"github.com/aspen-motorsports/racestrategy/raceerr"
	"github.com/aspen-motorsports/racestrategy/track"
)

const (
	exitOK            = 0
	exitConfiguration = 1
	exitInvariant     = 2
	exitUserAbort     = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to an EngineConfig YAML file (optional, defaults used if empty)")
	trackID := flag.String("track", "bristol", "track catalog id to race on")
	laps := flag.Int("laps", 100, "number of laps")
	verbose := flag.Bool("verbose", false, "log every snapshot at debug level")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.DefaultEngineConfig()
	if *configPath != "" {
		loaded, err := config.LoadEngineConfig(*configPath)
		if err != nil {
			log.Error().Err(err).Str("path", *configPath).Msg("failed to load engine config")
			return exitConfiguration
		}
		cfg = loaded
	}

	ctor, ok := track.Catalog[*trackID]
	if !ok {
		log.Error().Str("track", *trackID).Msg("unknown track id")
		return exitConfiguration
	}
	tr, err := ctor()
	if err != nil {
		log.Error().Err(err).Msg("failed to build track")
		return exitConfiguration
	}

	player := driver.New("player-1", "Player", 1, true, 70)
	field := []*driver.Driver{
		driver.New("ai-1", "Alex Reyes", 2, false, 68),
		driver.New("ai-2", "Sam Okafor", 3, false, 72),
		driver.New("ai-3", "Jordan Vance", 4, false, 64),
	}
	personalities := map[string]ai.Personality{
		"ai-1": ai.PersonalityAggressive,
		"ai-2": ai.PersonalityPatient,
		"ai-3": ai.PersonalityAdaptive,
	}

	engine := race.New()
	initErr := engine.Initialize(race.Config{
		Track:           tr,
		Laps:            *laps,
		PlayerDriver:    player,
		AIDrivers:       field,
		AIPersonalities: personalities,
		RNGSeed:         cfg.RNGSeed,
		Profile:         profilePtr(cfg, tr),
		CooldownLaps:    cfg.CooldownLaps,
	})
	if initErr != nil {
		return handleError(initErr)
	}

	relay := bridge.NewRelay(os.Stdout)
	_ = relay.Connect(context.Background())
	unsubscribe := engine.Subscribe(relay)
	defer unsubscribe()

	if err := engine.Start(); err != nil {
		return handleError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("track", *trackID).Int("laps", *laps).Msg("race started")

	for !engine.IsComplete() {
		select {
		case <-ctx.Done():
			_ = engine.Abort()
			log.Warn().Msg("race aborted by user")
			return exitUserAbort
		default:
		}

		if err := engine.SimulateTick(cfg.TickDtMs); err != nil {
			return handleError(err)
		}

		state := engine.CurrentState()
		if state.Status == race.StatusAwaitingDecision && state.ActiveDecision != nil {
			log.Debug().Str("decision", state.ActiveDecision.ID).Str("kind", state.ActiveDecision.Kind.String()).Msg("auto-resolving decision with default option")
			if err := engine.SubmitDecision(state.ActiveDecision.DefaultOptionID); err != nil {
				return handleError(err)
			}
		}
	}

	final := engine.CurrentState()
	if final.Status == race.StatusAborted {
		log.Error().Msg("race ended in an aborted state")
		return exitInvariant
	}

	fmt.Println("Final leaderboard:")
	for _, entry := range final.Leaderboard {
		fmt.Printf("  %2d. %-10s gap %.2fs\n", entry.Position, entry.DriverID, entry.GapToLeaderSec)
	}
	return exitOK
}

func profilePtr(cfg *config.EngineConfig, tr *track.Track) *physics.Profile {
	p := cfg.ProfileFor(tr.Class)
	return &p
}

func handleError(err error) int {
	rerr, ok := err.(*raceerr.RaceError)
	if !ok {
		log.Error().Err(err).Msg("unclassified error")
		return exitInvariant
	}
	switch rerr.Kind {
	case raceerr.KindConfiguration:
		log.Error().Err(rerr).Msg("configuration error")
		return exitConfiguration
	case raceerr.KindInvariantViolation:
		log.Error().Err(rerr).Msg("invariant violation, race aborted")
		return exitInvariant
	default:
		log.Warn().Err(rerr).Msg("non-fatal engine error")
		return exitOK
	}
}
