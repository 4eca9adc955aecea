package nutrition

import (
	"fmt"
	"math"
	"time"

	"nutricionista-backend/internal/models"
)

const (
	ChallengeTitle = "Sem Açúcar por 7 dias"
	challengeDays  = 7
)

// WeeklyChallenge places now in the 7-day cycle that starts on the day of start,
// counting calendar days in now's location.
func WeeklyChallenge(start, now time.Time) models.WeeklyChallenge {
	loc := now.Location()
	s := start.In(loc)
	first := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	elapsed := int(math.Round(today.Sub(first).Hours() / 24))
	if elapsed < 0 {
		elapsed = 0
	}
	day := elapsed%challengeDays + 1

	return models.WeeklyChallenge{
		Title:   ChallengeTitle,
		Day:     day,
		Days:    challengeDays,
		Message: fmt.Sprintf("Você está no dia %d de %d. Continue firme!", day, challengeDays),
	}
}
