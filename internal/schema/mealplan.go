package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"nutricionista-backend/internal/models"
)

const nonBlank = `\S`

func mealSchema(description string) *Schema {
	return &Schema{
		Type:        TypeObject,
		Description: description,
		Properties: map[string]*Schema{
			"name":        {Type: TypeString, Description: "Nome da refeição", Pattern: nonBlank},
			"calories":    {Type: TypeNumber, Description: "Estimativa de calorias (kcal)"},
			"description": {Type: TypeString, Description: "Descrição e modo de preparo", Pattern: nonBlank},
			"substitutions": {
				Type:        TypeArray,
				Description: "Sugestões de substituição",
				Items:       &Schema{Type: TypeString, Pattern: nonBlank},
				MinItems:    1,
			},
		},
		Required: []string{"name", "calories", "description", "substitutions"},
	}
}

// MealPlan is the contract every meal-plan document must satisfy.
var MealPlan = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		models.SlotBreakfast:      mealSchema("Café da manhã"),
		models.SlotMorningSnack:   mealSchema("Lanche da manhã"),
		models.SlotLunch:          mealSchema("Almoço"),
		models.SlotAfternoonSnack: mealSchema("Lanche da tarde"),
		models.SlotDinner:         mealSchema("Jantar"),
	},
	Required: models.MealSlotKeys,
}

var mealPlanValidator = MealPlan.MustCompile()

// DecodeMealPlan parses raw backend output and validates it against MealPlan.
// Any departure rejects the whole document.
func DecodeMealPlan(raw string) (*models.MealPlan, error) {
	doc := CleanJSON(raw)
	if doc == "" {
		return nil, fmt.Errorf("empty meal plan document")
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(doc), &generic); err != nil {
		return nil, fmt.Errorf("meal plan is not valid JSON: %w", err)
	}
	if err := mealPlanValidator.Validate(generic); err != nil {
		return nil, err
	}

	var plan models.MealPlan
	if err := json.Unmarshal([]byte(doc), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan: %w", err)
	}
	return &plan, nil
}

// CleanJSON strips markdown fences and any prose around the outermost JSON object.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
