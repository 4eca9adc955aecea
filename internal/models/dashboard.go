package models

// WeeklyChallenge is the "Desafios Semanais" card.
type WeeklyChallenge struct {
	Title   string `json:"title"`
	Day     int    `json:"day"`
	Days    int    `json:"days"`
	Message string `json:"message"`
}

type DashboardResponse struct {
	Greeting      string          `json:"greeting"`
	Tip           string          `json:"tip"`
	Challenge     WeeklyChallenge `json:"challenge"`
	Premium       bool            `json:"premium"`
	Goal          EnumOption      `json:"goal"`
	BMI           float64         `json:"bmi,omitempty"`
	BMICategory   string          `json:"bmi_category,omitempty"`
	DailyCalories int             `json:"daily_calories"`
	State         SessionState    `json:"state"`
}
