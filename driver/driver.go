package driver

// CareerStats accumulates a driver's results across races. AvgFinish is
// maintained as a classical incremental running mean, computed after Races
// is incremented — the resolution of the Open Question in SPEC_FULL.md
// §4.3.1. This is deliberately not the source formulation's
// (avg*(n-1)+new)/n applied after incrementing n, which double-weights the
// newest race.
type CareerStats struct {
	Races    int
	Wins     int
	Top5     int
	Top10    int
	Poles    int
	LapsLed  int
	AvgFinish float64
}

// RecordFinish folds one race result into CareerStats. position is 1-based
// finishing position; lapsLed and pole are that race's contribution.
func (c *CareerStats) RecordFinish(position, lapsLed int, pole bool) {
	c.Races++
	c.AvgFinish += (float64(position) - c.AvgFinish) / float64(c.Races)

	if position == 1 {
		c.Wins++
	}
	if position <= 5 {
		c.Top5++
	}
	if position <= 10 {
		c.Top10++
	}
	if pole {
		c.Poles++
	}
	c.LapsLed += lapsLed
}

// Driver is a competitor's persistent, cross-race identity: skills, mental
// state baseline, and accumulated career stats. Car state and in-race
// progress are never stored here — see the ownership note in
// SPEC_FULL.md §3: the race engine owns those for the race's duration.
type Driver struct {
	ID       string
	Name     string
	Number   int
	IsPlayer bool

	Skills Skills

	// MentalBaseline is the at-rest mental state this driver recovers
	// toward between races and, within a race, over time per §4.3.
	MentalBaseline MentalState

	CareerStats CareerStats
}

// New constructs a Driver with all skills seeded at skillBaseline and a
// neutral mental baseline.
func New(id, name string, number int, isPlayer bool, skillBaseline float64) *Driver {
	return &Driver{
		ID:             id,
		Name:           name,
		Number:         number,
		IsPlayer:       isPlayer,
		Skills:         NewSkills(skillBaseline),
		MentalBaseline: NewMentalState(60, 20, 70, 10),
	}
}
