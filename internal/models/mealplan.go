package models

import (
	"time"

	"github.com/google/uuid"
)

type Meal struct {
	Name          string   `json:"name"`
	Calories      float64  `json:"calories"`
	Description   string   `json:"description"`
	Substitutions []string `json:"substitutions"`
}

// MealPlan always carries all five slots.
type MealPlan struct {
	Breakfast      Meal `json:"breakfast"`
	MorningSnack   Meal `json:"morning_snack"`
	Lunch          Meal `json:"lunch"`
	AfternoonSnack Meal `json:"afternoon_snack"`
	Dinner         Meal `json:"dinner"`
}

// Meal slot keys, in the order they are served during the day.
const (
	SlotBreakfast      = "breakfast"
	SlotMorningSnack   = "morning_snack"
	SlotLunch          = "lunch"
	SlotAfternoonSnack = "afternoon_snack"
	SlotDinner         = "dinner"
)

var MealSlotKeys = []string{SlotBreakfast, SlotMorningSnack, SlotLunch, SlotAfternoonSnack, SlotDinner}

var mealSlotTitles = map[string]string{
	SlotBreakfast:      "Café da Manhã",
	SlotMorningSnack:   "Lanche",
	SlotLunch:          "Almoço",
	SlotAfternoonSnack: "Lanche da Tarde",
	SlotDinner:         "Jantar",
}

type MealCard struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Meal  Meal   `json:"meal"`
}

// Cards lists the meals in serving order with their display titles.
func (p *MealPlan) Cards() []MealCard {
	meals := []Meal{p.Breakfast, p.MorningSnack, p.Lunch, p.AfternoonSnack, p.Dinner}
	cards := make([]MealCard, len(meals))
	for i, m := range meals {
		key := MealSlotKeys[i]
		cards[i] = MealCard{Key: key, Title: mealSlotTitles[key], Meal: m}
	}
	return cards
}

func (p *MealPlan) TotalCalories() float64 {
	var total float64
	for _, c := range p.Cards() {
		total += c.Meal.Calories
	}
	return total
}

// StoredMealPlan is the last plan generated for a session.
type StoredMealPlan struct {
	SessionID   uuid.UUID `json:"session_id"`
	Plan        MealPlan  `json:"plan"`
	GeneratedAt time.Time `json:"generated_at"`
}

type MealPlanResponse struct {
	Plan          *MealPlan  `json:"plan"`
	Cards         []MealCard `json:"cards"`
	TotalCalories float64    `json:"total_calories"`
	GeneratedAt   *time.Time `json:"generated_at,omitempty"`
}
