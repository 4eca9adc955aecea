package nutrition

import (
	"testing"
	"time"

	"nutricionista-backend/internal/models"
)

func TestCalculateBMI(t *testing.T) {
	bmi, err := CalculateBMI(165, 68)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bmi != 25 {
		t.Fatalf("expected 25.0, got %v", bmi)
	}

	for _, tc := range []struct{ h, w float64 }{{40, 60}, {300, 60}, {170, 5}, {170, 500}} {
		if _, err := CalculateBMI(tc.h, tc.w); err != ErrImplausibleMeasurement {
			t.Errorf("CalculateBMI(%v, %v) expected implausible error, got %v", tc.h, tc.w, err)
		}
	}
}

func TestBMICategory(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{17.9, "Abaixo do peso"},
		{18.5, "Peso normal"},
		{24.9, "Peso normal"},
		{25, "Sobrepeso"},
		{30, "Obesidade grau I"},
		{35, "Obesidade grau II"},
		{41, "Obesidade grau III"},
	}
	for _, tc := range tests {
		if got := BMICategory(tc.bmi); got != tc.want {
			t.Errorf("BMICategory(%v) = %q, want %q", tc.bmi, got, tc.want)
		}
	}
}

func TestDailyCalories(t *testing.T) {
	ana := models.UserProfile{Age: 30, Weight: 70, Height: 165, Sex: models.SexFemale, ActivityLevel: models.ActivityLight, Goal: models.GoalMaintain}
	// BMR = 700 + 1031.25 - 150 - 161 = 1420.25; * 1.375 = 1952.8
	if got := DailyCalories(ana); got != 1950 {
		t.Fatalf("expected 1950 kcal, got %d", got)
	}

	ana.Goal = models.GoalLoseWeight
	if got := DailyCalories(ana); got != 1450 {
		t.Fatalf("expected 1450 kcal for weight loss, got %d", got)
	}

	tiny := models.UserProfile{Age: 80, Weight: 40, Height: 145, Sex: models.SexFemale, ActivityLevel: models.ActivitySedentary, Goal: models.GoalLoseWeight}
	if got := DailyCalories(tiny); got != minDailyCalories {
		t.Fatalf("expected floor of %d kcal, got %d", minDailyCalories, got)
	}

	joao := models.UserProfile{Age: 25, Weight: 80, Height: 180, Sex: models.SexMale, ActivityLevel: models.ActivityVeryActive, Goal: models.GoalGainMuscle}
	// BMR = 800 + 1125 - 125 + 5 = 1805; * 1.725 = 3113.6 + 300
	if got := DailyCalories(joao); got != 3410 {
		t.Fatalf("expected 3410 kcal, got %d", got)
	}
}

func TestGreeting(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2024, 5, 1, h, 0, 0, 0, time.UTC) }

	tests := []struct {
		at   time.Time
		name string
		want string
	}{
		{day(7), "Ana", "Bom dia, Ana!"},
		{day(12), "Ana", "Boa tarde, Ana!"},
		{day(17), "", "Boa tarde!"},
		{day(18), "João", "Boa noite, João!"},
	}
	for _, tc := range tests {
		if got := Greeting(tc.at, tc.name); got != tc.want {
			t.Errorf("Greeting(%v, %q) = %q, want %q", tc.at.Hour(), tc.name, got, tc.want)
		}
	}
}

func TestWeeklyChallenge(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	start := time.Date(2025, 3, 10, 22, 0, 0, 0, saoPaulo)

	tests := []struct {
		name  string
		start time.Time
		now   time.Time
		day   int
	}{
		{"onboarding day", start, start.Add(time.Hour), 1},
		{"third day", start, time.Date(2025, 3, 12, 8, 0, 0, 0, saoPaulo), 3},
		{"last day", start, time.Date(2025, 3, 16, 23, 0, 0, 0, saoPaulo), 7},
		{"cycle restarts", start, time.Date(2025, 3, 17, 7, 0, 0, 0, saoPaulo), 1},
		{"clock behind start", start, start.Add(-48 * time.Hour), 1},
		{"start stored in UTC", start.UTC(), time.Date(2025, 3, 11, 6, 0, 0, 0, saoPaulo), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WeeklyChallenge(tc.start, tc.now)
			if got.Day != tc.day || got.Days != 7 {
				t.Fatalf("expected day %d of 7, got %d of %d", tc.day, got.Day, got.Days)
			}
		})
	}

	got := WeeklyChallenge(start, time.Date(2025, 3, 12, 8, 0, 0, 0, saoPaulo))
	if got.Title != ChallengeTitle || got.Message != "Você está no dia 3 de 7. Continue firme!" {
		t.Fatalf("unexpected card: %+v", got)
	}
}
