package session

import "nutricionista-backend/internal/models"

// User-facing texts. Backend diagnostics never reach these.
const (
	msgMealPlanFailed    = "Não foi possível gerar o plano alimentar. Tente novamente."
	msgChatFailed        = "Desculpe, não consegui processar sua mensagem. Poderia tentar novamente?"
	msgLabelFailed       = "Não foi possível analisar o rótulo. A imagem está nítida?"
	msgImageUnreadable   = "Não foi possível ler o arquivo de imagem."
	msgAnalyzing         = "Analisando imagem... 🧐"
	msgEmptyMessage      = "Digite uma mensagem antes de enviar."
	msgIncompleteProfile = "Complete seu perfil antes de continuar."
	msgPremiumMealPlan   = "Assine o plano Premium para gerar seu cardápio personalizado."
	msgPremiumChat       = "Assine o plano Premium para conversar com a Nutricionista IA."
	msgPremiumLabel      = "Assine o plano Premium para analisar rótulos de alimentos."
)

var busyMessages = map[models.SlotName]string{
	models.SlotMealPlan: "Seu cardápio já está sendo gerado. Aguarde um instante.",
	models.SlotChat:     "Aguarde a resposta anterior antes de enviar outra mensagem.",
	models.SlotLabel:    "Já estamos analisando um rótulo. Aguarde o resultado.",
}

var premiumMessages = map[models.SlotName]string{
	models.SlotMealPlan: msgPremiumMealPlan,
	models.SlotChat:     msgPremiumChat,
	models.SlotLabel:    msgPremiumLabel,
}
