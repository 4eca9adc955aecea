package models

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestSessionRecord_ProfileRoundTrip(t *testing.T) {
	profiles := []UserProfile{
		{
			Name: "Ana", Age: 32, Weight: 68.5, Height: 165, Sex: SexFemale,
			ActivityLevel: ActivityLight, Goal: GoalLoseWeight,
			Restrictions: []string{}, Preferences: "",
		},
		{
			Name: "João da Silva", Age: 45, Weight: 92.3, Height: 181.5, Sex: SexMale,
			ActivityLevel: ActivityVeryActive, Goal: GoalGainMuscle,
			Restrictions: []string{"Sem Lactose", "Vegetariano"}, Preferences: "Gosto de peixe, não como coentro",
		},
	}

	for _, p := range profiles {
		t.Run(p.Name, func(t *testing.T) {
			rec := SessionRecord{ID: uuid.New(), Profile: p, Premium: true}

			data, err := json.Marshal(rec)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			var back SessionRecord
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}

			if !reflect.DeepEqual(back.Profile, p) {
				t.Fatalf("profile changed in round trip:\nwant %+v\ngot  %+v", p, back.Profile)
			}
			if !back.Premium || back.ID != rec.ID {
				t.Fatalf("record fields changed: %+v", back)
			}
		})
	}
}

func TestUserProfile_Validate(t *testing.T) {
	valid := UserProfile{Name: "Ana", Age: 30, Weight: 60, Height: 160, Sex: SexFemale, ActivityLevel: ActivityModerate, Goal: GoalMaintain}
	if fields := valid.Validate(); len(fields) != 0 {
		t.Fatalf("expected valid profile, got %v", fields)
	}

	tests := []struct {
		name    string
		mutate  func(p *UserProfile)
		field   string
		message string
	}{
		{"blank name", func(p *UserProfile) { p.Name = "  " }, "name", "Informe seu nome"},
		{"zero age", func(p *UserProfile) { p.Age = 0 }, "age", "A idade deve estar entre 1 e 130 anos"},
		{"negative weight", func(p *UserProfile) { p.Weight = -1 }, "weight", "O peso deve ser maior que zero"},
		{"missing height", func(p *UserProfile) { p.Height = 0 }, "height", "A altura deve ser maior que zero"},
		{"unknown sex", func(p *UserProfile) { p.Sex = "other" }, "sex", "Selecione masculino ou feminino"},
		{"unknown activity", func(p *UserProfile) { p.ActivityLevel = "athlete" }, "activity_level", "Nível de atividade desconhecido"},
		{"unknown goal", func(p *UserProfile) { p.Goal = "" }, "goal", "Objetivo desconhecido"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			fields := p.Validate()
			if got, ok := fields[tc.field]; !ok || got != tc.message {
				t.Fatalf("expected %q on %q, got %v", tc.message, tc.field, fields)
			}
		})
	}
}

func TestUserProfile_ApplyDefaults(t *testing.T) {
	p := UserProfile{Name: "Ana", Sex: SexMale}
	p.ApplyDefaults()

	if p.Sex != SexMale {
		t.Errorf("explicit sex was overwritten: %q", p.Sex)
	}
	if p.ActivityLevel != ActivityLight || p.Goal != GoalLoseWeight {
		t.Errorf("unexpected defaults: %q %q", p.ActivityLevel, p.Goal)
	}
	if p.Restrictions == nil {
		t.Error("restrictions should be an empty list, not nil")
	}
}

func TestNormalizeRestrictions(t *testing.T) {
	got := NormalizeRestrictions([]string{" Vegano", "vegano", "", "Sem Glúten", "Vegano "})
	want := []string{"Vegano", "Sem Glúten"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		text string
		want Verdict
	}{
		{"**Veredito:** Recomendado ✅", VerdictRecommended},
		{"Veredito: EVITAR. Alto teor de sódio.", VerdictAvoid},
		{"Consumir com Moderação — evitar excessos", VerdictModerate},
		{"Não consegui identificar o produto.", ""},
	}

	for _, tc := range tests {
		if got := ParseVerdict(tc.text); got != tc.want {
			t.Errorf("ParseVerdict(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestMealPlan_CardsOrderAndTotal(t *testing.T) {
	plan := MealPlan{
		Breakfast:      Meal{Name: "Aveia", Calories: 300},
		MorningSnack:   Meal{Name: "Fruta", Calories: 100},
		Lunch:          Meal{Name: "Frango", Calories: 550},
		AfternoonSnack: Meal{Name: "Iogurte", Calories: 150},
		Dinner:         Meal{Name: "Sopa", Calories: 400},
	}

	cards := plan.Cards()
	if len(cards) != 5 {
		t.Fatalf("expected 5 cards, got %d", len(cards))
	}
	if cards[0].Title != "Café da Manhã" || cards[4].Title != "Jantar" {
		t.Fatalf("unexpected titles: %q ... %q", cards[0].Title, cards[4].Title)
	}
	if cards[2].Meal.Name != "Frango" {
		t.Fatalf("lunch out of order: %+v", cards[2])
	}
	if total := plan.TotalCalories(); total != 1500 {
		t.Fatalf("expected 1500 kcal, got %v", total)
	}
}
