package game

import "math/rand"

// Roller is the source of randomness for the engine
type Roller interface {
	// IntRange returns a uniform integer in [min, max]
	IntRange(min, max int) int
	// Chance returns true with probability p
	Chance(p float64) bool
}

// mathRoller draws from the math/rand global source, which is safe for
// concurrent use and seeded at startup.
type mathRoller struct{}

// NewRoller returns the default Roller
func NewRoller() Roller {
	return mathRoller{}
}

func (mathRoller) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}

func (mathRoller) Chance(p float64) bool {
	return rand.Float64() < p
}
