package game

import "github.com/icedfool/rpi-ds-game/pkg/models"

const (
	understandingWeight = 0.4
	homeworkWeight      = 0.4
	labWeight           = 0.2

	// risk above this threshold scales the score down one percent per point
	riskPenaltyThreshold = 50
)

type gradeBoundary struct {
	Letter   string
	MinScore float64
}

// gradeBoundaries must stay sorted highest first; F is the floor.
var gradeBoundaries = []gradeBoundary{
	{"A", 93},
	{"A-", 90},
	{"B+", 87},
	{"B", 83},
	{"B-", 80},
	{"C+", 77},
	{"C", 73},
	{"C-", 70},
	{"D+", 67},
	{"D", 60},
	{"F", 0},
}

// Score computes the weighted course score for a player
func Score(p *models.PlayerState) float64 {
	score := float64(p.Understanding)*understandingWeight +
		(p.HomeworkCompleted/MaxHomework*100)*homeworkWeight +
		float64(p.LabPoints)*labWeight

	if p.RiskLevel > riskPenaltyThreshold {
		score *= 1 - float64(p.RiskLevel-riskPenaltyThreshold)/100
	}

	return score
}

// GradeFor returns the highest letter whose minimum score is <= score
func GradeFor(score float64) string {
	for _, b := range gradeBoundaries {
		if score >= b.MinScore {
			return b.Letter
		}
	}
	return gradeBoundaries[len(gradeBoundaries)-1].Letter
}

// CalculateGrade derives the letter grade from understanding, homework,
// lab points and risk. It depends on nothing else.
func CalculateGrade(p *models.PlayerState) string {
	return GradeFor(Score(p))
}
