package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbarbosa/finbot/internal/common"
	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/render"
	"github.com/pbarbosa/finbot/internal/state"
)

const (
	msgGenerationDown    = "😕 Não consegui preparar uma resposta agora. Pode tentar novamente em instantes?"
	msgResearchAskTopic  = "Sobre qual assunto financeiro você quer saber? 🤓"
	msgReceiptAskDetails = "Para buscar um comprovante, me dê mais detalhes: item, valor, data ou local da compra. 🔎"
	msgReceiptNoMatch    = "Não encontrei nenhum gasto com esses detalhes. 😕 Tente descrever de outra forma."
)

// researchFollowupMarkers flag a chit-chat message as a refinement of the
// last researched topic.
var researchFollowupMarkers = []string{
	"explique", "mais", "detalhe", "como assim", "técnico", "simples",
	"exemplo", "cálculo",
}

// adviceOfferMarkers detect, in a generated chit-chat reply, an offer of
// financial guidance that the next message may accept.
var adviceOfferMarkers = []string{
	"dica", "ajuda", "organizar", "conversar sobre",
}

// handleIdle routes a message arriving with no pending slot or
// confirmation. Any residual flow payload is dropped first; the research
// topic survives this reset.
func (d *Dispatcher) handleIdle(ctx context.Context, msg Inbound, analysis model.Analysis, conv *state.Conversation, fresh bool) (model.Reply, error) {
	d.states.ResetFlow(msg.ConversationID)

	switch analysis.Intent {
	case model.IntentRegisterExpense:
		return d.startRegistration(msg, analysis)
	case model.IntentRequestReport:
		return d.report(ctx, msg.ConversationID, analysis)
	case model.IntentRequestAdvice:
		d.states.ClearResearchTopic(msg.ConversationID)
		return d.advise(ctx, msg.ConversationID, msg.Text)
	case model.IntentRequestResearch:
		return d.research(ctx, msg, analysis, conv)
	case model.IntentRequestReceipt:
		return d.receiptSearch(ctx, msg.ConversationID, analysis)
	case model.IntentGreeting:
		d.states.ClearResearchTopic(msg.ConversationID)
		return d.conversational(ctx, msg, model.IntentGreeting, fresh, nil)
	case model.IntentChitChat:
		return d.chitChat(ctx, msg, conv)
	case model.IntentUnknown:
		// An unclassifiable message right after a research answer is most
		// likely still about it.
		if conv.LastResearchTopic != "" {
			return d.research(ctx, msg, model.Analysis{Intent: model.IntentRequestResearch}, conv)
		}
		return d.conversational(ctx, msg, model.IntentUnknown, fresh, nil)
	default:
		// provide_info, confirm_action and cancel_action with nothing
		// pending: there is no flow to act on, so treat them as an
		// unrecognized message.
		d.states.ClearResearchTopic(msg.ConversationID)
		return d.conversational(ctx, msg, model.IntentUnknown, fresh, nil)
	}
}

// startRegistration seeds a draft from the extracted entities and asks
// for the first missing slot.
func (d *Dispatcher) startRegistration(msg Inbound, analysis model.Analysis) (model.Reply, error) {
	draft := &model.ExpenseDraft{
		Item:          model.StripQuotes(analysis.Item),
		PaymentMethod: model.StripQuotes(analysis.PaymentMethod),
		Category:      model.StripQuotes(analysis.Category),
		Establishment: normalizeEstablishment(analysis.Establishment),
		Notes:         analysis.Notes,
		Date:          analysis.Date,
		Attachments:   msg.Attachments,
	}
	if analysis.Value != "" {
		if v, err := model.ParseMoney(analysis.Value); err == nil {
			draft.Value = v
		}
	}

	step, err := d.flows.Advance(draft)
	if err != nil {
		return model.Reply{}, err
	}

	d.states.ClearResearchTopic(msg.ConversationID)
	d.states.Merge(msg.ConversationID, func(c *state.Conversation) {
		c.Draft = draft
		c.WaitingFor = step.Waiting
		c.Candidates = nil
		c.AdviceContext = ""
	})
	return model.TextReply(step.Prompt), nil
}

func (d *Dispatcher) report(ctx context.Context, conversationID string, analysis model.Analysis) (model.Reply, error) {
	period, recognized := model.ParsePeriod(analysis.ReportPeriod)
	if !recognized {
		d.logger.Warn("unrecognized report period, defaulting",
			"raw", analysis.ReportPeriod,
			"conversation_id", conversationID)
	}

	expenses, err := d.storage.ListExpenses(ctx, conversationID, period)
	if err != nil {
		return model.Reply{}, fmt.Errorf("%w: listing expenses: %v", common.ErrPersistence, err)
	}

	d.states.ClearResearchTopic(conversationID)
	return model.TextReply(render.Report(expenses, period)), nil
}

// advise aggregates last month's spending (falling back to the full
// history when last month is empty) and asks the generator for tips.
func (d *Dispatcher) advise(ctx context.Context, conversationID, userContext string) (model.Reply, error) {
	spending, err := d.storage.SpendingByCategory(ctx, conversationID, model.PeriodLastMonth)
	if err != nil {
		return model.Reply{}, fmt.Errorf("%w: aggregating spending: %v", common.ErrPersistence, err)
	}
	if len(spending) == 0 {
		spending, err = d.storage.SpendingByCategory(ctx, conversationID, model.PeriodAll)
		if err != nil {
			return model.Reply{}, fmt.Errorf("%w: aggregating spending: %v", common.ErrPersistence, err)
		}
	}

	text, err := d.generator.SpendingAdvice(ctx, spending, userContext)
	if err != nil {
		d.logger.Error("advice generation failed", "error", err, "conversation_id", conversationID)
		return model.TextReply(msgGenerationDown), nil
	}
	return model.TextReply(text), nil
}

// research answers a new topic, or refines the previous one when the
// classifier extracted no fresh query.
func (d *Dispatcher) research(ctx context.Context, msg Inbound, analysis model.Analysis, conv *state.Conversation) (model.Reply, error) {
	topic := strings.TrimSpace(analysis.ResearchQuery)
	refinement := ""
	if topic == "" {
		if conv.LastResearchTopic == "" {
			return model.TextReply(msgResearchAskTopic), nil
		}
		topic = conv.LastResearchTopic
		refinement = msg.Text
	}

	text, err := d.generator.Research(ctx, topic, refinement)
	if err != nil {
		d.logger.Error("research generation failed", "error", err, "conversation_id", msg.ConversationID)
		return model.TextReply(msgGenerationDown), nil
	}

	d.states.Merge(msg.ConversationID, func(c *state.Conversation) {
		c.LastResearchTopic = topic
	})
	return model.TextReply(text), nil
}

// chitChat handles small talk. Two special cases hide in here: a
// follow-up on the last researched topic becomes a refinement, and a
// generated reply that offers financial guidance arms the advice
// confirmation so a bare "sim" next turn is understood.
func (d *Dispatcher) chitChat(ctx context.Context, msg Inbound, conv *state.Conversation) (model.Reply, error) {
	if conv.LastResearchTopic != "" && looksLikeResearchFollowup(msg.Text) {
		return d.research(ctx, msg, model.Analysis{Intent: model.IntentRequestResearch}, conv)
	}

	return d.conversational(ctx, msg, model.IntentChitChat, false, func(text string) {
		if offersAdvice(text) {
			d.states.Merge(msg.ConversationID, func(c *state.Conversation) {
				c.WaitingFor = state.WaitingAdviceConfirmation
				c.AdviceContext = msg.Text
			})
			return
		}
		d.states.ClearResearchTopic(msg.ConversationID)
	})
}

// conversational generates a free-form reply; inspect, when set, sees the
// generated text before it is returned.
func (d *Dispatcher) conversational(ctx context.Context, msg Inbound, intent model.Intent, fresh bool, inspect func(string)) (model.Reply, error) {
	text, err := d.generator.Conversational(ctx, msg.Text, intent, fresh)
	if err != nil {
		d.logger.Error("conversational generation failed", "error", err, "conversation_id", msg.ConversationID)
		return model.TextReply(msgGenerationDown), nil
	}
	if inspect != nil {
		inspect(text)
	}
	return model.TextReply(text), nil
}

// receiptSearch resolves a receipt request: no criteria asks for more,
// one match sends the receipt, several matches arm disambiguation.
func (d *Dispatcher) receiptSearch(ctx context.Context, conversationID string, analysis model.Analysis) (model.Reply, error) {
	if analysis.SearchCriteria.Empty() {
		return model.TextReply(msgReceiptAskDetails), nil
	}

	matches, err := d.storage.FindExpenses(ctx, conversationID, analysis.SearchCriteria)
	if err != nil {
		return model.Reply{}, fmt.Errorf("%w: searching expenses: %v", common.ErrPersistence, err)
	}

	d.states.ClearResearchTopic(conversationID)
	switch len(matches) {
	case 0:
		return model.TextReply(msgReceiptNoMatch), nil
	case 1:
		return d.sendReceipt(ctx, matches[0])
	default:
		d.states.Merge(conversationID, func(c *state.Conversation) {
			c.WaitingFor = state.WaitingReceiptDisambiguation
			c.Candidates = matches
		})
		return model.TextReply(render.CandidateList(matches)), nil
	}
}

func (d *Dispatcher) sendReceipt(ctx context.Context, expense model.Expense) (model.Reply, error) {
	refs, err := d.storage.GetAttachments(ctx, expense.ID)
	if err != nil {
		return model.Reply{}, fmt.Errorf("%w: loading attachments: %v", common.ErrPersistence, err)
	}
	if len(refs) == 0 {
		return model.TextReply(fmt.Sprintf(
			"Encontrei o gasto *ID %d* (%s), mas ele não possui comprovante anexado. 😕",
			expense.ID, expense.Item)), nil
	}

	reply := model.TextReply(fmt.Sprintf(
		"📄 Aqui está o comprovante do gasto *ID %d* (%s):",
		expense.ID, expense.Item))
	for _, ref := range refs {
		reply.AddImage(ref)
	}
	return reply, nil
}

func looksLikeResearchFollowup(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range researchFollowupMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func offersAdvice(text string) bool {
	lowered := strings.ToLower(text)
	if !strings.Contains(lowered, "quer") {
		return false
	}
	for _, marker := range adviceOfferMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// normalizeEstablishment maps the "not applicable" marker onto the stored
// sentinel and trims quoting noise.
func normalizeEstablishment(raw string) string {
	cleaned := model.StripQuotes(raw)
	if strings.EqualFold(strings.TrimSpace(cleaned), model.EstablishmentNA) {
		return model.EstablishmentNone
	}
	return cleaned
}
