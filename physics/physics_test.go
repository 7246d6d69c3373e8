package physics

import (
	"math"
	"testing"

	"github.com/aspen-motorsports/racestrategy/car"
	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/raceerr"
	"github.com/aspen-motorsports/racestrategy/rng"
	"github.com/aspen-motorsports/racestrategy/track"
)

func skillsAt(racecraft, consistency, aggression, tireManagement, fuelManagement, draftSense float64) driver.Skills {
	var s driver.Skills
	s[driver.Racecraft] = driver.Skill{Value: racecraft}
	s[driver.Consistency] = driver.Skill{Value: consistency}
	s[driver.Aggression] = driver.Skill{Value: aggression}
	s[driver.Focus] = driver.Skill{Value: 50}
	s[driver.Stamina] = driver.Skill{Value: 50}
	s[driver.Composure] = driver.Skill{Value: 50}
	s[driver.DraftSense] = driver.Skill{Value: draftSense}
	s[driver.TireManagement] = driver.Skill{Value: tireManagement}
	s[driver.FuelManagement] = driver.Skill{Value: fuelManagement}
	s[driver.PitStrategy] = driver.Skill{Value: 50}
	return s
}

func mustTrack(t *testing.T, build func() (*track.Track, error)) *track.Track {
	t.Helper()
	tr, err := build()
	if err != nil {
		t.Fatalf("track build failed: %v", err)
	}
	return tr
}

func TestLapTimeBristolCleanLap(t *testing.T) {
	tr := mustTrack(t, track.Bristol)
	profile := DefaultProfile(track.ClassShort)
	in := LapInputs{
		Skills: skillsAt(70, 50, 50, 50, 50, 50),
		Mental: driver.NewMentalState(75, 15, 70, 10),
		Car:    car.State{TirePct: 100, FuelPct: 100},
	}

	got, err := LapTime(tr, profile, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got < 15.0 || got > 16.0 {
		t.Fatalf("expected lap time in [15,16]s, got %v", got)
	}
}

func TestLapTimeBristolWornTiresSlower(t *testing.T) {
	tr := mustTrack(t, track.Bristol)
	profile := DefaultProfile(track.ClassShort)
	skills := skillsAt(70, 50, 50, 50, 50, 50)
	mental := driver.NewMentalState(75, 15, 70, 10)

	fresh, err := LapTime(tr, profile, LapInputs{Skills: skills, Mental: mental, Car: car.State{TirePct: 100, FuelPct: 100}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	worn, err := LapTime(tr, profile, LapInputs{Skills: skills, Mental: mental, Car: car.State{TirePct: 50, FuelPct: 100}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delta := worn - fresh
	if delta < 0.4 || delta > 0.9 {
		t.Fatalf("expected worn-tire delta in [0.4,0.9]s, got %v", delta)
	}
}

func TestLapTimeDaytonaDraftSpeedsUp(t *testing.T) {
	tr := mustTrack(t, track.Daytona)
	profile := DefaultProfile(track.ClassSuperspeedway)
	skills := skillsAt(70, 50, 50, 50, 50, 50)
	mental := driver.NewMentalState(75, 15, 70, 10)
	carState := car.State{TirePct: 100, FuelPct: 100}

	noDraft, err := LapTime(tr, profile, LapInputs{Skills: skills, Mental: mental, Car: carState})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	draft, err := LapTime(tr, profile, LapInputs{Skills: skills, Mental: mental, Car: carState, DraftActive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delta := draft - noDraft
	if delta < -0.6 || delta > -0.2 {
		t.Fatalf("expected draft delta in [-0.6,-0.2]s, got %v", delta)
	}
}

func TestLapTimeCharlottePoorMentalStateSlower(t *testing.T) {
	tr := mustTrack(t, track.Charlotte)
	profile := DefaultProfile(track.ClassIntermediate)
	skills := skillsAt(70, 50, 50, 50, 50, 50)
	carState := car.State{TirePct: 30, FuelPct: 60}

	poor := driver.NewMentalState(25, 75, 50, 10)
	good := driver.NewMentalState(80, 20, 80, 10)

	poorTime, err := LapTime(tr, profile, LapInputs{Skills: skills, Mental: poor, Car: carState})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	goodTime, err := LapTime(tr, profile, LapInputs{Skills: skills, Mental: good, Car: carState})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if poorTime < 1.08*goodTime {
		t.Fatalf("expected poor-mental-state lap >= 1.08x good, got poor=%v good=%v ratio=%v", poorTime, goodTime, poorTime/goodTime)
	}
}

func TestLapTimeMonotonicity(t *testing.T) {
	tr := mustTrack(t, track.Charlotte)
	profile := DefaultProfile(track.ClassIntermediate)
	baseCar := car.State{TirePct: 80, FuelPct: 70}
	baseMental := driver.NewMentalState(60, 20, 70, 10)
	baseSkills := skillsAt(50, 50, 50, 50, 50, 50)

	lap := func(skills driver.Skills, mental driver.MentalState, c car.State) float64 {
		got, err := LapTime(tr, profile, LapInputs{Skills: skills, Mental: mental, Car: c})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return got
	}

	base := lap(baseSkills, baseMental, baseCar)

	wornCar := baseCar
	wornCar.TirePct = 40
	if worn := lap(baseSkills, baseMental, wornCar); worn < base {
		t.Fatalf("decreasing tire_pct must never decrease lap time: base=%v worn=%v", base, worn)
	}

	higherRacecraft := baseSkills
	higherRacecraft[driver.Racecraft] = driver.Skill{Value: 90}
	if faster := lap(higherRacecraft, baseMental, baseCar); faster > base {
		t.Fatalf("increasing racecraft must never increase lap time: base=%v faster=%v", base, faster)
	}

	higherConfidence := driver.NewMentalState(95, 20, 70, 10)
	if faster := lap(baseSkills, higherConfidence, baseCar); faster > base {
		t.Fatalf("increasing confidence must never increase lap time: base=%v faster=%v", base, faster)
	}

	higherFrustration := driver.NewMentalState(60, 90, 70, 10)
	if slower := lap(baseSkills, higherFrustration, baseCar); slower < base {
		t.Fatalf("increasing frustration above 30 must never decrease lap time: base=%v slower=%v", base, slower)
	}
}

func TestLapTimeRejectsOutOfRangeSkill(t *testing.T) {
	tr := mustTrack(t, track.Bristol)
	profile := DefaultProfile(track.ClassShort)
	skills := skillsAt(70, 50, 50, 50, 50, 50)
	skills[driver.Racecraft] = driver.Skill{Value: 150}
	mental := driver.NewMentalState(60, 20, 70, 10)

	_, err := LapTime(tr, profile, LapInputs{Skills: skills, Mental: mental, Car: car.State{TirePct: 100, FuelPct: 100}})
	if err == nil {
		t.Fatal("expected error for out-of-range skill")
	}
	re, ok := err.(*raceerr.RaceError)
	if !ok || re.Kind != raceerr.KindInvalidInput {
		t.Fatalf("expected KindInvalidInput RaceError, got %v", err)
	}
}

func TestLapVarianceShrinksWithConsistency(t *testing.T) {
	src := rng.New(42)
	lowConsistency := 0
	highConsistency := 0
	trials := 500
	for i := 0; i < trials; i++ {
		if math.Abs(LapVariance(10, src)) > 0.3 {
			lowConsistency++
		}
		if math.Abs(LapVariance(95, src)) > 0.3 {
			highConsistency++
		}
	}
	if highConsistency >= lowConsistency {
		t.Fatalf("expected higher consistency to produce fewer large jitters: low=%d high=%d of %d", lowConsistency, highConsistency, trials)
	}
}

func TestTireWearAggressionBonus(t *testing.T) {
	profile := DefaultProfile(track.ClassShort)
	base := TireWearPerLap(profile, 50, 50)
	aggressive := TireWearPerLap(profile, 90, 50)
	if aggressive <= base {
		t.Fatalf("expected aggression above 80 to increase wear: base=%v aggressive=%v", base, aggressive)
	}

	managed := TireWearPerLap(profile, 50, 90)
	if managed >= base {
		t.Fatalf("expected tire management to reduce wear: base=%v managed=%v", base, managed)
	}
}

func TestFuelBurnDraftReducesBurn(t *testing.T) {
	profile := DefaultProfile(track.ClassSuperspeedway)
	normal := FuelBurnPerLap(profile, 50, false)
	drafting := FuelBurnPerLap(profile, 50, true)
	if drafting >= normal {
		t.Fatalf("expected drafting to reduce fuel burn: normal=%v drafting=%v", normal, drafting)
	}
}

func TestMistakeProbabilityBounds(t *testing.T) {
	for focus := 0.0; focus <= 100; focus += 10 {
		for _, frustration := range []float64{0, 50, 90} {
			for _, distraction := range []float64{0, 50, 90} {
				p := MistakeProbability(focus, frustration, distraction)
				if p < 0 || p > 1 {
					t.Fatalf("probability out of [0,1]: focus=%v frustration=%v distraction=%v p=%v", focus, frustration, distraction, p)
				}
			}
		}
	}
}

func TestRollMistakeDeterministic(t *testing.T) {
	src1 := rng.New(7)
	src2 := rng.New(7)
	o1 := RollMistake(20, 70, 70, src1)
	o2 := RollMistake(20, 70, 70, src2)
	if o1 != o2 {
		t.Fatalf("expected identical seeds to produce identical mistake outcomes, got %+v vs %+v", o1, o2)
	}
}

func TestComputeLapTimeStatsEmpty(t *testing.T) {
	got := ComputeLapTimeStats(nil)
	if got != (LapTimeStats{}) {
		t.Fatalf("expected zero value for empty input, got %+v", got)
	}
}

func TestComputeLapTimeStats(t *testing.T) {
	laps := []float64{15.0, 15.5, 16.0, 15.2}
	got := ComputeLapTimeStats(laps)
	if got.Count != 4 {
		t.Fatalf("expected count 4, got %v", got.Count)
	}
	if got.Min != 15.0 || got.Max != 16.0 {
		t.Fatalf("expected min/max 15.0/16.0, got %v/%v", got.Min, got.Max)
	}
	if got.Mean <= got.Min || got.Mean >= got.Max {
		t.Fatalf("expected mean strictly between min and max, got %v", got.Mean)
	}
	if got.StdDev <= 0 {
		t.Fatalf("expected positive stddev for varying laps, got %v", got.StdDev)
	}
}
