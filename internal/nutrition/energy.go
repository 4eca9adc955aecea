package nutrition

import (
	"math"

	"nutricionista-backend/internal/models"
)

var activityFactors = map[models.ActivityLevel]float64{
	models.ActivitySedentary:  1.2,
	models.ActivityLight:      1.375,
	models.ActivityModerate:   1.55,
	models.ActivityVeryActive: 1.725,
}

const minDailyCalories = 1200

// BasalMetabolicRate uses the Mifflin-St Jeor equation.
func BasalMetabolicRate(p models.UserProfile) float64 {
	bmr := 10*p.Weight + 6.25*p.Height - 5*float64(p.Age)
	if p.Sex == models.SexMale {
		return bmr + 5
	}
	return bmr - 161
}

// DailyCalories estimates the daily energy target for the profile's goal,
// rounded to the nearest 10 kcal.
func DailyCalories(p models.UserProfile) int {
	factor, ok := activityFactors[p.ActivityLevel]
	if !ok {
		factor = activityFactors[models.ActivitySedentary]
	}
	tdee := BasalMetabolicRate(p) * factor

	switch p.Goal {
	case models.GoalLoseWeight:
		tdee -= 500
	case models.GoalGainMuscle:
		tdee += 300
	}

	if tdee < minDailyCalories {
		tdee = minDailyCalories
	}
	return int(math.Round(tdee/10) * 10)
}
