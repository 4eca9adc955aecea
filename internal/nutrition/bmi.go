package nutrition

import (
	"errors"
	"math"
)

var ErrImplausibleMeasurement = errors.New("height or weight outside plausible range")

// CalculateBMI returns the body mass index rounded to one decimal place.
// Height is in centimetres, weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, ErrImplausibleMeasurement
	}
	m := heightCm / 100
	bmi := weightKg / (m * m)
	return math.Round(bmi*10) / 10, nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Abaixo do peso"
	case bmi < 25:
		return "Peso normal"
	case bmi < 30:
		return "Sobrepeso"
	case bmi < 35:
		return "Obesidade grau I"
	case bmi < 40:
		return "Obesidade grau II"
	default:
		return "Obesidade grau III"
	}
}
