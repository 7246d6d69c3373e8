// Package progression implements the §4.3 XP curve: how accumulated XP on a
// skill axis maps to that axis's 0-100 value, and the inverse used to seed
// a driver at a known baseline. It has no dependency on the driver package —
// these are pure functions over floats, consumed by driver.Skills.
package progression

// XPRequiredForLevel returns the XP cost to advance from level to level+1,
// per §4.3's piecewise curve.
func XPRequiredForLevel(level int) float64 {
	switch {
	case level < 40:
		return 100
	case level < 70:
		return 200 + float64(level-40)*10
	default:
		return 500 + float64(level-70)*16
	}
}

// CumulativeXPForLevel returns the total XP required to reach level from 0.
func CumulativeXPForLevel(level int) float64 {
	if level <= 0 {
		return 0
	}
	if level > 100 {
		level = 100
	}
	var total float64
	for l := 0; l < level; l++ {
		total += XPRequiredForLevel(l)
	}
	return total
}

// ValueFromXP derives a skill's 0-100 value from its accumulated XP. XP
// beyond the 100 threshold is retained by the caller but has no further
// effect on the returned value (§8 XP gating).
func ValueFromXP(xp float64) float64 {
	if xp <= 0 {
		return 0
	}
	level := 0
	remaining := xp
	for level < 100 {
		need := XPRequiredForLevel(level)
		if remaining < need {
			return float64(level) + remaining/need
		}
		remaining -= need
		level++
	}
	return 100
}

// XPRequiredForValue returns the cumulative XP needed to seed a skill at
// exactly the given fractional value, for baseline driver construction.
func XPRequiredForValue(value float64) float64 {
	if value <= 0 {
		return 0
	}
	if value >= 100 {
		return CumulativeXPForLevel(100)
	}
	level := int(value)
	frac := value - float64(level)
	return CumulativeXPForLevel(level) + frac*XPRequiredForLevel(level)
}
