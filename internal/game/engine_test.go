package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icedfool/rpi-ds-game/pkg/models"
)

// scriptedRoller returns queued values; when the queue is empty IntRange
// returns max and Chance returns chance.
type scriptedRoller struct {
	ints   []int
	chance bool
	probs  []float64
}

func (r *scriptedRoller) IntRange(min, max int) int {
	if len(r.ints) == 0 {
		return max
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

func (r *scriptedRoller) Chance(p float64) bool {
	r.probs = append(r.probs, p)
	return r.chance
}

func TestInitialStress(t *testing.T) {
	tests := map[int]int{
		12: 10, 13: 15, 14: 20, 15: 25, 16: 30, 17: 35, 18: 40,
		11: 45, 19: 45, 0: 45, -3: 45,
	}
	for credits, want := range tests {
		assert.Equal(t, want, InitialStress(credits), "credits=%d", credits)
	}
}

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("Alice", 14)

	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, 14, p.CreditHours)
	assert.Equal(t, 20, p.StressLevel)
	assert.Equal(t, 0.0, p.HomeworkCompleted)
	assert.Equal(t, 1, p.CurrentWeek)
	assert.Equal(t, "F", p.CurrentGrade)
}

func TestAttendLecture(t *testing.T) {
	e := NewEngine(&scriptedRoller{ints: []int{15, 2}})
	p := NewPlayer("a", 12)

	require.NoError(t, e.Apply(p, ActionLecture))

	assert.Equal(t, 15, p.Understanding)
	assert.Equal(t, 12, p.StressLevel)
	// 15 * 0.4 = 6
	assert.Equal(t, "F", p.CurrentGrade)
}

func TestAttendLecture_CapsAt100(t *testing.T) {
	e := NewEngine(&scriptedRoller{ints: []int{15, 2}})
	p := &models.PlayerState{Understanding: 95, StressLevel: 99}

	e.AttendLecture(p)

	assert.Equal(t, 100, p.Understanding)
	assert.Equal(t, 100, p.StressLevel)
}

func TestWorkOnHomework(t *testing.T) {
	e := NewEngine(&scriptedRoller{ints: []int{10, 5}})
	p := NewPlayer("a", 12)

	e.WorkOnHomework(p)

	assert.Equal(t, 10, p.Understanding)
	assert.Equal(t, 15, p.StressLevel)
	assert.Equal(t, 0.25, p.HomeworkCompleted)
}

func TestWorkOnHomework_NoOpWhenComplete(t *testing.T) {
	e := NewEngine(&scriptedRoller{})
	p := &models.PlayerState{HomeworkCompleted: 5, Understanding: 40, StressLevel: 30}
	before := *p

	e.WorkOnHomework(p)

	assert.Equal(t, before, *p)
}

func TestWorkOnHomework_ClampsAtFive(t *testing.T) {
	e := NewEngine(nil)
	p := NewPlayer("a", 12)

	for i := 0; i < 20; i++ {
		require.NoError(t, e.Apply(p, ActionHomework))
	}
	assert.Equal(t, MaxHomework, p.HomeworkCompleted)

	for i := 0; i < 5; i++ {
		require.NoError(t, e.Apply(p, ActionHomework))
		assert.Equal(t, MaxHomework, p.HomeworkCompleted)
	}
}

func TestVisitOfficeHours(t *testing.T) {
	tests := []struct {
		name      string
		chance    bool
		wantLab   int
		wantProbs []float64
	}{
		{name: "no lab points", chance: false, wantLab: 0, wantProbs: []float64{0.3}},
		{name: "lab points", chance: true, wantLab: 10, wantProbs: []float64{0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &scriptedRoller{ints: []int{20, 15}, chance: tt.chance}
			e := NewEngine(rng)
			p := &models.PlayerState{StressLevel: 10}

			e.VisitOfficeHours(p)

			assert.Equal(t, 20, p.Understanding)
			assert.Equal(t, 0, p.StressLevel)
			assert.Equal(t, tt.wantLab, p.LabPoints)
			assert.Equal(t, tt.wantProbs, rng.probs)
		})
	}
}

func TestUseAI_DetectionUsesPostIncrementRisk(t *testing.T) {
	rng := &scriptedRoller{ints: []int{3, 10, 15}, chance: false}
	e := NewEngine(rng)
	p := &models.PlayerState{StressLevel: 50, RiskLevel: 40}

	e.UseAI(p)

	assert.Equal(t, 3, p.Understanding)
	assert.Equal(t, 40, p.StressLevel)
	assert.Equal(t, 55, p.RiskLevel)
	require.Len(t, rng.probs, 1)
	assert.InDelta(t, 55.0/200, rng.probs[0], 1e-9)
}

func TestUseAI_Caught(t *testing.T) {
	rng := &scriptedRoller{ints: []int{8, 20, 15}, chance: true}
	e := NewEngine(rng)
	p := &models.PlayerState{StressLevel: 90, RiskLevel: 80}

	e.UseAI(p)

	// 90-20+30 = 100, 80+15 -> 95, +20 -> capped at 100
	assert.Equal(t, 100, p.StressLevel)
	assert.Equal(t, 100, p.RiskLevel)
}

func TestTakeBreak(t *testing.T) {
	rng := &scriptedRoller{ints: []int{20, 5}, chance: true}
	e := NewEngine(rng)
	p := &models.PlayerState{StressLevel: 25, Understanding: 3}

	e.TakeBreak(p)

	assert.Equal(t, 5, p.StressLevel)
	assert.Equal(t, 0, p.Understanding)
	assert.Equal(t, []float64{0.2}, rng.probs)
}

func TestApply_RejectsUnknownAction(t *testing.T) {
	e := NewEngine(nil)
	p := NewPlayer("a", 12)

	err := e.Apply(p, Action(42))

	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestApply_StatsStayInBounds(t *testing.T) {
	e := NewEngine(nil)

	for _, credits := range []int{12, 18, 21} {
		p := NewPlayer("bounds", credits)
		for i := 0; i < 2000; i++ {
			action := Actions()[i%len(Actions())]
			if i%7 == 0 {
				action = ActionUseAI
			}
			require.NoError(t, e.Apply(p, action))

			assert.GreaterOrEqual(t, p.StressLevel, 0)
			assert.LessOrEqual(t, p.StressLevel, MaxStat)
			assert.GreaterOrEqual(t, p.Understanding, 0)
			assert.LessOrEqual(t, p.Understanding, MaxStat)
			assert.GreaterOrEqual(t, p.LabPoints, 0)
			assert.LessOrEqual(t, p.LabPoints, MaxStat)
			assert.GreaterOrEqual(t, p.RiskLevel, 0)
			assert.LessOrEqual(t, p.RiskLevel, MaxStat)
			assert.GreaterOrEqual(t, p.HomeworkCompleted, 0.0)
			assert.LessOrEqual(t, p.HomeworkCompleted, MaxHomework)
			assert.Equal(t, CalculateGrade(p), p.CurrentGrade)
			assert.Equal(t, 1, p.CurrentWeek)
		}
	}
}

func TestMathRoller_Ranges(t *testing.T) {
	r := NewRoller()
	seen := map[int]bool{}

	for i := 0; i < 5000; i++ {
		v := r.IntRange(5, 15)
		require.GreaterOrEqual(t, v, 5)
		require.LessOrEqual(t, v, 15)
		seen[v] = true
	}
	assert.Len(t, seen, 11)

	assert.False(t, r.Chance(0))
	assert.True(t, r.Chance(1))
	assert.Equal(t, 7, r.IntRange(7, 7))
}
