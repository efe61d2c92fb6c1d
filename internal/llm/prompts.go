package llm

import (
	"fmt"
	"strings"

	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/render"
	"github.com/pbarbosa/finbot/internal/state"
)

const persona = "Você é FinanceBot, um assistente financeiro pessoal para WhatsApp, amigável e prestativo."

// analysisPrompt builds the intent+entity extraction prompt, feeding the
// current conversation state back as context so the model can resolve
// slot-filling replies.
func analysisPrompt(message string, conv *state.Conversation) string {
	var context strings.Builder
	if conv != nil && (conv.Pending() || conv.LastResearchTopic != "") {
		if conv.Pending() {
			fmt.Fprintf(&context, "O bot perguntou sobre: %s. ", conv.WaitingFor)
		}
		if conv.Draft != nil {
			fmt.Fprintf(&context, "Dados já coletados: valor=%v item=%q pagamento=%q categoria=%q local=%q. ",
				conv.Draft.Value, conv.Draft.Item, conv.Draft.PaymentMethod, conv.Draft.Category, conv.Draft.Establishment)
		}
		topic := conv.LastResearchTopic
		if topic == "" {
			topic = "Nenhum"
		}
		fmt.Fprintf(&context, "Último tópico pesquisado: %s", topic)
	} else {
		context.WriteString("Nenhum contexto específico.")
	}

	return fmt.Sprintf(`%s Seu objetivo é ajudar o usuário a registrar gastos, ver relatórios, dar dicas de economia personalizadas e pesquisar informações financeiras.

**Contexto da conversa anterior (se aplicável):**
%s

**Intenções possíveis:** 'register_expense', 'request_report', 'request_advice', 'request_research', 'request_receipt', 'provide_info', 'confirm_action', 'cancel_action', 'greeting', 'chit_chat' (inclui desabafos, perguntas vagas), 'unknown'.

**Entidades a extrair:**
- value, category, establishment, payment_method, item, notes, date (p/ 'register_expense')
- report_period ('month', 'today', 'yesterday', 'all'. Default 'month')
- research_query (p/ 'request_research', *SE FOR UM NOVO TÓPICO*)
- search_criteria (objeto com {item?, value?, date?, establishment?, category?} p/ 'request_receipt')
- provided_field (p/ 'provide_info', use snake_case p/ payment_method)
- provided_value (p/ 'provide_info')

**Instruções:**
1. Se houver contexto de campo pendente, priorize FORTEMENTE 'provide_info', 'confirm_action' ou 'cancel_action'. Se o campo pendente for 'value', 'item', 'establishment' ou 'payment_method', a intenção mais provável é 'provide_info' com 'provided_field' igual ao campo esperado, a menos que a mensagem seja claramente "sim"/"não"/"cancela".
2. Se o campo pendente for 'notes_confirmation', interprete "sim" ou variações como 'confirm_action' e "não" ou variações como 'cancel_action'. Qualquer outro texto direto DEVE ser 'provide_info' com 'provided_field'='notes'.
3. Se o campo pendente for 'notes', a intenção é SEMPRE 'provide_info' com 'provided_field'='notes' e 'provided_value'=mensagem_completa, a menos que seja cancelamento claro.
4. Se NÃO houver campo pendente E houver último tópico pesquisado E a mensagem parecer um pedido de refinamento (ex: "explique melhor", "mais técnico"), a intenção é 'request_research' mas NÃO extraia 'research_query' (retorne null).
5. Para 'register_expense', extraia os campos obrigatórios ('value', 'item', 'payment_method'); retorne null para os não encontrados. Padronize 'category' para 'Outros' se não encontrada.
6. Para 'request_receipt', extraia o máximo de detalhes possíveis para 'search_criteria'.
7. Responda APENAS com um objeto JSON válido, sem usar markdown.

**Mensagem do Usuário:** %q
**Resposta JSON:**`, persona, context.String(), message)
}

// conversationalPrompt builds the short free-form reply prompt for
// greetings, chit-chat, cancellations and unrecognized messages.
func conversationalPrompt(message string, intent model.Intent, fresh bool) string {
	var instruction string
	switch {
	case fresh || intent == model.IntentGreeting:
		instruction = "O usuário iniciou a conversa ou enviou uma saudação. Cumprimente de forma CURTA e AMIGÁVEL, perguntando como você pode ajudar com as finanças dele HOJE. Use um emoji apropriado (ex: 👋, 💰). EVITE perguntar 'tudo bem?'."
	case intent == model.IntentChitChat:
		instruction = fmt.Sprintf(`O usuário enviou uma mensagem de conversa geral: %q. Responda com EMPATIA e de forma CONVERSACIONAL. Se parecer um desabafo financeiro, mostre compreensão, valide o sentimento e PERGUNTE DELICADAMENTE se ele gostaria de algumas dicas sobre como lidar com isso (ex: "Gostaria de algumas dicas sobre organização financeira?"). Se for uma pergunta sobre suas capacidades, explique brevemente o que você faz. Use emojis para manter o tom leve.`, message)
	case intent == model.IntentCancelAction:
		instruction = `O usuário cancelou a ação atual. Responda de forma CURTA e compreensiva (ex: "Ok, cancelado! 👍"). Use um emoji positivo ou neutro.`
	default:
		instruction = fmt.Sprintf(`O usuário enviou algo que você não entendeu: %q. Peça desculpas CURTAMENTE e diga que não compreendeu. Sugira reformular ou pergunte se pode ajudar com registro de gastos, relatórios ou dicas financeiras.`, message)
	}

	return fmt.Sprintf(`%s Seu tom é amigável, prestativo e informal.
%s

Responda de forma Curta e Natural (use formatação WhatsApp como *negrito* ou _itálico_ quando apropriado):`, persona, instruction)
}

// advicePrompt builds the spending-advice prompt. With no aggregated data
// it asks for general, safe guidance and an invitation to start recording;
// with data it asks for tips focused on the top categories. Both variants
// instruct the model to steer hard away from risky behavior (gambling,
// predatory debt) and toward professional help.
func advicePrompt(spending []model.CategoryTotal, userContext string) string {
	contextLine := "(pedido geral)"
	if userContext != "" {
		contextLine = fmt.Sprintf("relacionados a: %q", userContext)
	}

	if len(spending) == 0 {
		return fmt.Sprintf(`Você é FinanceBot, um consultor financeiro *responsável*, *empático* e *cuidadoso*. O usuário pediu conselhos financeiros %s, mas ainda não possui gastos registrados.

Instruções:
1. Responda de forma AMIGÁVEL e COMPREENSIVA, validando o sentimento expresso (se houver contexto).
2. Explique que dicas personalizadas dependem dos hábitos reais de gastos e incentive-o a registrar despesas pelo bot.
3. Ofereça 1 ou 2 conselhos GERAIS, PRÁTICOS e SEGUROS sobre o tópico mencionado ou sobre organização financeira básica.
4. MUITA ATENÇÃO: se o contexto mencionar comportamentos de risco (apostas, dívidas excessivas, investimentos duvidosos), NÃO dê conselhos sobre como fazer isso melhor. Aconselhe FORTEMENTE CONTRA, mencione os RISCOS e sugira buscar AJUDA PROFISSIONAL.
5. Finalize perguntando se ele gostaria de registrar um gasto agora.
6. Use formatação WhatsApp (*negrito*, _itálico_). Mantenha a resposta concisa.

Resposta (use formatação WhatsApp):`, contextLine)
	}

	var data strings.Builder
	data.WriteString("Gastos recentes por categoria (valores agregados):\n")
	for _, ct := range spending {
		fmt.Fprintf(&data, "- %s: R$ %s\n", ct.Category, render.Money(ct.Total))
	}

	return fmt.Sprintf(`Você é FinanceBot, um consultor financeiro *responsável*, *empático* e *cuidadoso*. O usuário pediu conselhos financeiros %s. Analise os dados de gastos fornecidos e o contexto do pedido.

Dados de Gastos do Usuário:
%s
Instruções:
1. Identifique as 2-3 categorias com maiores gastos ou as relevantes para o contexto.
2. Dê 2 ou 3 dicas PRÁTICAS, ACIONÁVEIS e REALISTAS focadas nessas categorias.
3. Seja positivo e encorajador, não julgador.
4. MUITA ATENÇÃO: se o contexto ou os dados indicarem comportamentos de risco (ex: categorias como "Apostas", dívidas altas), NÃO incentive; explique os RISCOS e sugira FORTEMENTE ajuda profissional especializada.
5. Use formatação WhatsApp (*negrito*, _itálico_).
6. Finalize de forma amigável, perguntando se as dicas fazem sentido.

Sugestões Curtas, Práticas e Responsáveis (use formatação WhatsApp):`, contextLine, data.String())
}

// researchPrompt builds the topic-explanation prompt, optionally focused
// by a refinement request against the same topic.
func researchPrompt(topic, refinement string) string {
	var instruction string
	if refinement != "" {
		instruction = fmt.Sprintf(`O usuário pediu um refinamento sobre o tópico financeiro %q, com a seguinte solicitação: %q.
Elabore uma nova resposta focando especificamente no pedido (explicação mais técnica? mais simples? exemplos práticos? os cálculos envolvidos?).
Seja claro, objetivo e use formatação WhatsApp (*negrito*, _itálico_).`, topic, refinement)
	} else {
		instruction = fmt.Sprintf(`O usuário pediu para pesquisar ou explicar sobre o tópico financeiro %q.
Forneça uma explicação clara, concisa e precisa. Se for um conceito, defina-o. Se envolver dados voláteis (cotações, taxas atuais), explique o conceito mas mencione que os valores mudam e sugira fontes atualizadas.
Use formatação WhatsApp (*negrito*, _itálico_) para destacar termos chave.`, topic)
	}

	return fmt.Sprintf(`Você é FinanceBot, um assistente financeiro prestativo e com bons conhecimentos sobre finanças pessoais, investimentos básicos e economia.
%s

Resposta Detalhada e Clara (use formatação WhatsApp):`, instruction)
}
