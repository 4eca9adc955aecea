package session

import (
	"fmt"
	"strings"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/nutrition"
)

const labelInstruction = `Você é uma nutricionista especialista em rotulagem de alimentos. Analise a foto do rótulo nutricional e da lista de ingredientes.

1. Resuma as informações nutricionais principais: calorias, gorduras (totais e saturadas), açúcares e sódio por porção.
2. Aponte ingredientes prejudiciais ou típicos de ultraprocessados (aditivos, conservantes, corantes, xarope de milho, gordura hidrogenada).
3. Termine com um veredito em uma linha própria, usando exatamente uma destas categorias: "Recomendado", "Consumir com Moderação" ou "Evitar".

Responda em português, de forma clara e objetiva, usando markdown simples.`

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "Nenhuma"
	}
	return strings.Join(items, ", ")
}

func textOrNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Nenhuma"
	}
	return s
}

func buildMealPlanPrompt(p models.UserProfile) string {
	var b strings.Builder

	// Layer 1 — Role
	b.WriteString("Você é uma nutricionista experiente. Crie um plano alimentar diário e personalizado para a pessoa abaixo.\n\n")

	// Layer 2 — Profile
	b.WriteString("Perfil:\n")
	fmt.Fprintf(&b, "- Nome: %s\n", p.Name)
	fmt.Fprintf(&b, "- Idade: %d anos\n", p.Age)
	fmt.Fprintf(&b, "- Peso: %.1f kg\n", p.Weight)
	fmt.Fprintf(&b, "- Altura: %.0f cm\n", p.Height)
	fmt.Fprintf(&b, "- Sexo: %s\n", p.Sex.Label())
	fmt.Fprintf(&b, "- Nível de atividade: %s\n", p.ActivityLevel.Label())
	fmt.Fprintf(&b, "- Objetivo: %s\n", p.Goal.Label())
	fmt.Fprintf(&b, "- Restrições alimentares: %s\n", listOrNone(p.Restrictions))
	fmt.Fprintf(&b, "- Preferências: %s\n", textOrNone(p.Preferences))
	fmt.Fprintf(&b, "- Meta calórica diária estimada: %d kcal\n\n", nutrition.DailyCalories(p))

	// Layer 3 — Structure
	b.WriteString("O plano deve ter exatamente cinco refeições: café da manhã (breakfast), lanche da manhã (morning_snack), ")
	b.WriteString("almoço (lunch), lanche da tarde (afternoon_snack) e jantar (dinner).\n")
	b.WriteString("Para cada refeição informe o nome, a estimativa de calorias em kcal (número), uma descrição curta ")
	b.WriteString("e pelo menos 2 sugestões de substituição.\n\n")

	// Layer 4 — Constraints
	b.WriteString("Respeite rigorosamente as restrições alimentares. Use alimentos comuns no Brasil. ")
	b.WriteString("Responda somente com o JSON solicitado, em português.")

	return b.String()
}

func buildChatInstruction(p models.UserProfile) string {
	var b strings.Builder

	b.WriteString("Você é a Nutricionista IA, uma assistente de nutrição empática, motivadora e acolhedora.\n")
	fmt.Fprintf(&b, "Chame a pessoa pelo nome: %s.\n", p.FirstName())
	fmt.Fprintf(&b, "O objetivo dela é: %s.\n", p.Goal.Label())
	fmt.Fprintf(&b, "Restrições alimentares: %s.\n", listOrNone(p.Restrictions))
	if strings.TrimSpace(p.Preferences) != "" {
		fmt.Fprintf(&b, "Preferências: %s.\n", p.Preferences)
	}
	b.WriteString("Dê respostas curtas e práticas, em tom encorajador, usando emojis com moderação. ")
	b.WriteString("Não faça diagnósticos médicos; recomende um profissional quando houver sinais de problema de saúde.")

	return b.String()
}
