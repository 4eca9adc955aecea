package nutrition

import (
	"fmt"
	"time"
)

const DailyTip = "Beber pelo menos 2 litros de água por dia ajuda a controlar a fome, melhora a digestão e mantém a energia em alta. 💧"

// Greeting picks the salutation for the local hour and appends the first name when known.
func Greeting(now time.Time, firstName string) string {
	var salutation string
	switch h := now.Hour(); {
	case h < 12:
		salutation = "Bom dia"
	case h < 18:
		salutation = "Boa tarde"
	default:
		salutation = "Boa noite"
	}
	if firstName == "" {
		return salutation + "!"
	}
	return fmt.Sprintf("%s, %s!", salutation, firstName)
}
