package track

// Catalog holds a small set of named tracks used as canonical fixtures by
// the engine's test suite and as starting points for career schedules. Real
// NASCAR geometry is approximated as a symmetric oval/tri-oval/quad-oval —
// enough fidelity to exercise §8's scenario lap-time windows without
// attempting a geometric replica.
var Catalog = map[string]func() (*Track, error){
	"bristol":  Bristol,
	"daytona":  Daytona,
	"charlotte": Charlotte,
}

// Bristol approximates Bristol Motor Speedway: a 0.533 mile high-banked
// short track (§8 scenario 1/2).
func Bristol() (*Track, error) {
	const radiusFt = 300.0
	const straightFt = 464.64
	b := NewBuilder("Bristol Motor Speedway", ClassShort).LaneWidth(40)
	b.AddTurn(radiusFt, 180, 24, 28, BankingEaseInOut)
	b.AddStraight(straightFt, 4, 6, BankingLinear)
	b.AddTurn(radiusFt, 180, 24, 28, BankingEaseInOut)
	b.AddStraight(straightFt, 4, 6, BankingLinear)
	return b.Build(0.533)
}

// Daytona approximates Daytona International Speedway: a 2.5 mile
// superspeedway tri-oval (§8 scenario 3).
func Daytona() (*Track, error) {
	const radiusFt = 1000.0
	const straightFt = 3458.4
	b := NewBuilder("Daytona International Speedway", ClassSuperspeedway).LaneWidth(55)
	b.AddTurn(radiusFt, 90, 31, 31, BankingLinear)
	b.AddStraight(straightFt, 3, 3, BankingLinear)
	b.AddTurn(radiusFt, 90, 31, 31, BankingLinear)
	b.AddTurn(radiusFt, 90, 31, 31, BankingLinear)
	b.AddStraight(straightFt, 3, 3, BankingLinear)
	b.AddTurn(radiusFt, 90, 31, 31, BankingLinear)
	return b.Build(2.5)
}

// Charlotte approximates Charlotte Motor Speedway: a 1.5 mile intermediate
// quad-oval (§8 scenario 4).
func Charlotte() (*Track, error) {
	const radiusFt = 600.0
	const straightFt = 2075.05
	b := NewBuilder("Charlotte Motor Speedway", ClassIntermediate).LaneWidth(50)
	b.AddTurn(radiusFt, 90, 24, 24, BankingEaseInOut)
	b.AddStraight(straightFt, 5, 5, BankingLinear)
	b.AddTurn(radiusFt, 90, 24, 24, BankingEaseInOut)
	b.AddTurn(radiusFt, 90, 24, 24, BankingEaseInOut)
	b.AddStraight(straightFt, 5, 5, BankingLinear)
	b.AddTurn(radiusFt, 90, 24, 24, BankingEaseInOut)
	return b.Build(1.5)
}
