package game

import (
	"fmt"

	"github.com/icedfool/rpi-ds-game/pkg/models"
)

// Stat bounds
const (
	MaxStat     = 100
	MaxHomework = 5.0

	homeworkStep = 0.25

	// AI detection penalty
	caughtStressPenalty = 30
	caughtRiskPenalty   = 20
)

// DefaultCreditHours is used when a start request omits credit hours
const DefaultCreditHours = 12

var baseStress = map[int]int{
	12: 10,
	13: 15,
	14: 20,
	15: 25,
	16: 30,
	17: 35,
	18: 40,
}

const overloadStress = 45

// InitialStress returns the starting stress for a credit load
func InitialStress(creditHours int) int {
	if stress, ok := baseStress[creditHours]; ok {
		return stress
	}
	return overloadStress
}

// NewPlayer builds a fresh player record with its grade already derived
func NewPlayer(name string, creditHours int) *models.PlayerState {
	p := &models.PlayerState{
		Name:        name,
		CreditHours: creditHours,
		StressLevel: InitialStress(creditHours),
		CurrentWeek: 1,
	}
	p.CurrentGrade = CalculateGrade(p)
	return p
}

// Engine applies actions to player records
type Engine struct {
	rng Roller
}

// NewEngine creates an engine; a nil roller falls back to math/rand
func NewEngine(rng Roller) *Engine {
	if rng == nil {
		rng = NewRoller()
	}
	return &Engine{rng: rng}
}

// Apply runs one action, re-clamps stress and recomputes the grade.
// The caller must hold exclusive access to p.
func (e *Engine) Apply(p *models.PlayerState, action Action) error {
	switch action {
	case ActionLecture:
		e.AttendLecture(p)
	case ActionHomework:
		e.WorkOnHomework(p)
	case ActionOfficeHours:
		e.VisitOfficeHours(p)
	case ActionUseAI:
		e.UseAI(p)
	case ActionBreak:
		e.TakeBreak(p)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}

	p.StressLevel = capAt(p.StressLevel, MaxStat)
	p.CurrentGrade = CalculateGrade(p)
	return nil
}

// AttendLecture: understanding +5..15, stress +0..2
func (e *Engine) AttendLecture(p *models.PlayerState) {
	p.Understanding = capAt(p.Understanding+e.rng.IntRange(5, 15), MaxStat)
	p.StressLevel = capAt(p.StressLevel+e.rng.IntRange(0, 2), MaxStat)
}

// WorkOnHomework does nothing once all homework is done
func (e *Engine) WorkOnHomework(p *models.PlayerState) {
	if p.HomeworkCompleted >= MaxHomework {
		return
	}

	p.Understanding = capAt(p.Understanding+e.rng.IntRange(10, 20), MaxStat)
	p.StressLevel = capAt(p.StressLevel+e.rng.IntRange(5, 8), MaxStat)

	p.HomeworkCompleted += homeworkStep
	if p.HomeworkCompleted > MaxHomework {
		p.HomeworkCompleted = MaxHomework
	}
}

// VisitOfficeHours: understanding +10..25, stress -5..15, 30% chance of lab points +5..10
func (e *Engine) VisitOfficeHours(p *models.PlayerState) {
	p.Understanding = capAt(p.Understanding+e.rng.IntRange(10, 25), MaxStat)
	p.StressLevel = floorAtZero(p.StressLevel - e.rng.IntRange(5, 15))

	if e.rng.Chance(0.3) {
		p.LabPoints = capAt(p.LabPoints+e.rng.IntRange(5, 10), MaxStat)
	}
}

// UseAI trades risk for understanding and relief. The detection roll reads
// risk after this call's increase, so the first use already carries a chance
// of being caught.
func (e *Engine) UseAI(p *models.PlayerState) {
	p.Understanding = capAt(p.Understanding+e.rng.IntRange(3, 8), MaxStat)
	p.StressLevel = floorAtZero(p.StressLevel - e.rng.IntRange(10, 20))
	p.RiskLevel = capAt(p.RiskLevel+e.rng.IntRange(5, 15), MaxStat)

	if e.rng.Chance(float64(p.RiskLevel) / 200) {
		p.StressLevel = capAt(p.StressLevel+caughtStressPenalty, MaxStat)
		p.RiskLevel = capAt(p.RiskLevel+caughtRiskPenalty, MaxStat)
	}
}

// TakeBreak: stress -20..40, 20% chance of losing 1..5 understanding
func (e *Engine) TakeBreak(p *models.PlayerState) {
	p.StressLevel = floorAtZero(p.StressLevel - e.rng.IntRange(20, 40))

	if e.rng.Chance(0.2) {
		p.Understanding = floorAtZero(p.Understanding - e.rng.IntRange(1, 5))
	}
}

func capAt(v, max int) int {
	if v > max {
		return max
	}
	return v
}

func floorAtZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
