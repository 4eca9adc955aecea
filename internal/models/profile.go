package models

import (
	"strings"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

func (s Sex) Label() string {
	switch s {
	case SexMale:
		return "Masculino"
	case SexFemale:
		return "Feminino"
	}
	return string(s)
}

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityVeryActive ActivityLevel = "very_active"
)

func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityVeryActive:
		return true
	}
	return false
}

func (a ActivityLevel) Label() string {
	switch a {
	case ActivitySedentary:
		return "Sedentário"
	case ActivityLight:
		return "Levemente ativo"
	case ActivityModerate:
		return "Moderadamente ativo"
	case ActivityVeryActive:
		return "Muito ativo"
	}
	return string(a)
}

type Goal string

const (
	GoalLoseWeight    Goal = "lose_weight"
	GoalGainMuscle    Goal = "gain_muscle"
	GoalMaintain      Goal = "maintain"
	GoalImproveHealth Goal = "improve_health"
)

func (g Goal) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalGainMuscle, GoalMaintain, GoalImproveHealth:
		return true
	}
	return false
}

func (g Goal) Label() string {
	switch g {
	case GoalLoseWeight:
		return "Emagrecer"
	case GoalGainMuscle:
		return "Ganhar massa muscular"
	case GoalMaintain:
		return "Manter o peso"
	case GoalImproveHealth:
		return "Melhorar saúde geral"
	}
	return string(g)
}

// Restriction presets offered by the onboarding form. Free-form tags are accepted too.
var RestrictionOptions = []string{"Sem Glúten", "Sem Lactose", "Vegetariano", "Vegano"}

// UserProfile drives every generation request. Weight is in kg, height in cm.
type UserProfile struct {
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	Weight        float64       `json:"weight"`
	Height        float64       `json:"height"`
	Sex           Sex           `json:"sex"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          Goal          `json:"goal"`
	Restrictions  []string      `json:"restrictions"`
	Preferences   string        `json:"preferences"`
}

// DefaultProfile returns the values the onboarding form starts from.
func DefaultProfile() UserProfile {
	return UserProfile{
		Sex:           SexFemale,
		ActivityLevel: ActivityLight,
		Goal:          GoalLoseWeight,
		Restrictions:  []string{},
	}
}

// ApplyDefaults fills enum fields left blank with the onboarding defaults.
func (p *UserProfile) ApplyDefaults() {
	d := DefaultProfile()
	if p.Sex == "" {
		p.Sex = d.Sex
	}
	if p.ActivityLevel == "" {
		p.ActivityLevel = d.ActivityLevel
	}
	if p.Goal == "" {
		p.Goal = d.Goal
	}
	if p.Restrictions == nil {
		p.Restrictions = []string{}
	}
}

// Validate returns a field -> problem map; an empty map means the profile is usable.
func (p UserProfile) Validate() map[string]string {
	fields := make(map[string]string)

	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = "Informe seu nome"
	}
	if p.Age <= 0 || p.Age > 130 {
		fields["age"] = "A idade deve estar entre 1 e 130 anos"
	}
	if p.Weight <= 0 {
		fields["weight"] = "O peso deve ser maior que zero"
	}
	if p.Height <= 0 {
		fields["height"] = "A altura deve ser maior que zero"
	}
	if !p.Sex.Valid() {
		fields["sex"] = "Selecione masculino ou feminino"
	}
	if !p.ActivityLevel.Valid() {
		fields["activity_level"] = "Nível de atividade desconhecido"
	}
	if !p.Goal.Valid() {
		fields["goal"] = "Objetivo desconhecido"
	}

	return fields
}

// FirstName is used in greetings.
func (p UserProfile) FirstName() string {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// NormalizeRestrictions trims and de-duplicates restriction tags, keeping first-seen order.
func NormalizeRestrictions(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
