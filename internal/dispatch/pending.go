package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pbarbosa/finbot/internal/common"
	"github.com/pbarbosa/finbot/internal/flow"
	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/render"
	"github.com/pbarbosa/finbot/internal/state"
)

const (
	msgInvalidValue      = "⚠️ Valor inválido. Por favor, informe apenas o número (ex: 25,50)."
	msgInvalidItem       = "⚠️ Não consegui identificar o item. Pode repetir?"
	msgInvalidPayment    = "⚠️ Não entendi a forma de pagamento. Tente algo como: " + flow.PaymentMethodExamples + "."
	msgInvalidPlace      = "⚠️ Não entendi o estabelecimento. Pode repetir? (Se não se aplica, diga 'N/A')"
	msgAskNotes          = "Ok! Pode enviar a *observação*: ✍️"
	msgAdviceDeclined    = "Sem problemas! 😊 Se mudar de ideia, é só pedir. Estou por aqui!"
	msgReceiptBadChoice  = "Não entendi qual comprovante você quer. 🤔 Responda com o *ID* (ex: 'ID 12'), 'o mais antigo', 'o mais recente', ou 'cancelar'."
	msgReceiptCancelled  = "Ok, busca de comprovante cancelada! 👍"
	msgNotUnderstoodSlot = "Hum... 🤔 Acho que não entendi sua resposta para *%s*.\n%s"
)

// receiptIDPattern matches an explicit id selection ("id 12").
var receiptIDPattern = regexp.MustCompile(`(?i)^id\s+(\d+)$`)

// affirmativeReplies are free-text confirmations accepted at the notes
// question even when the classifier labeled the message differently.
var affirmativeReplies = []string{"sim", "s", "yes", "y", "ok", "pode", "quero"}

// slotLabels name each waiting slot in the re-prompt shown when a reply
// does not answer the open question.
var slotLabels = map[state.Waiting]string{
	state.WaitingValue:         "o valor da despesa",
	state.WaitingItem:          "o item comprado",
	state.WaitingPaymentMethod: "a forma de pagamento",
	state.WaitingEstablishment: "o estabelecimento",
}

// handlePending resolves a message while the conversation is blocked on a
// slot or confirmation.
func (d *Dispatcher) handlePending(ctx context.Context, msg Inbound, analysis model.Analysis, conv *state.Conversation) (model.Reply, error) {
	switch conv.WaitingFor {
	case state.WaitingValue, state.WaitingItem, state.WaitingPaymentMethod, state.WaitingEstablishment:
		return d.fillSlot(ctx, msg, analysis, conv)
	case state.WaitingNotesConfirmation:
		return d.notesConfirmation(ctx, msg, analysis, conv)
	case state.WaitingNotes:
		return d.collectNotes(ctx, msg, analysis, conv)
	case state.WaitingAdviceConfirmation:
		return d.adviceConfirmation(ctx, msg, analysis, conv)
	case state.WaitingReceiptDisambiguation:
		return d.receiptDisambiguation(ctx, msg, analysis, conv)
	default:
		return model.Reply{}, fmt.Errorf("%w: unexpected waiting tag %q", common.ErrStateFault, conv.WaitingFor)
	}
}

// fillSlot applies the reply to the open draft slot. Cancellation aborts
// the registration; a reply that does not answer the question re-asks it
// without losing anything collected so far.
func (d *Dispatcher) fillSlot(ctx context.Context, msg Inbound, analysis model.Analysis, conv *state.Conversation) (model.Reply, error) {
	if analysis.Intent == model.IntentCancelAction {
		d.states.ResetFlow(msg.ConversationID)
		return d.cancelAck(ctx, msg.Text), nil
	}
	if conv.Draft == nil {
		return model.Reply{}, fmt.Errorf("%w: slot %q pending without a draft", common.ErrStateFault, conv.WaitingFor)
	}
	if analysis.Intent != model.IntentProvideInfo {
		return d.reaskSlot(conv)
	}
	if analysis.ProvidedField != "" && analysis.ProvidedField != string(conv.WaitingFor) {
		return d.reaskSlot(conv)
	}

	raw := analysis.ProvidedValue
	if raw == "" {
		raw = msg.Text
	}

	switch conv.WaitingFor {
	case state.WaitingValue:
		value, err := model.ParseMoney(raw)
		if err != nil {
			return model.Reply{}, common.NewUserError(msgInvalidValue, common.ErrValidation)
		}
		conv.Draft.Value = value
	case state.WaitingItem:
		item := strings.TrimSpace(model.StripQuotes(raw))
		if item == "" {
			return model.Reply{}, common.NewUserError(msgInvalidItem, common.ErrValidation)
		}
		conv.Draft.Item = item
	case state.WaitingPaymentMethod:
		method := strings.TrimSpace(model.StripQuotes(raw))
		if method == "" {
			return model.Reply{}, common.NewUserError(msgInvalidPayment, common.ErrValidation)
		}
		conv.Draft.PaymentMethod = method
	case state.WaitingEstablishment:
		place := strings.TrimSpace(normalizeEstablishment(raw))
		if place == "" {
			return model.Reply{}, common.NewUserError(msgInvalidPlace, common.ErrValidation)
		}
		conv.Draft.Establishment = place
	}

	if len(msg.Attachments) > 0 {
		conv.Draft.Attachments = append(conv.Draft.Attachments, msg.Attachments...)
	}

	step, err := d.flows.Advance(conv.Draft)
	if err != nil {
		return model.Reply{}, err
	}
	d.states.Merge(msg.ConversationID, func(c *state.Conversation) {
		c.Draft = conv.Draft
		c.WaitingFor = step.Waiting
	})
	return model.TextReply(step.Prompt), nil
}

// reaskSlot repeats the open question, prefixed with a gentle notice.
func (d *Dispatcher) reaskSlot(conv *state.Conversation) (model.Reply, error) {
	step, err := d.flows.Advance(conv.Draft)
	if err != nil {
		return model.Reply{}, err
	}
	label, ok := slotLabels[conv.WaitingFor]
	if !ok {
		label = "a pergunta anterior"
	}
	return model.TextReply(fmt.Sprintf(msgNotUnderstoodSlot, label, step.Prompt)), nil
}

// notesConfirmation handles the final "add a note?" question. A
// cancellation here means "no notes", not "abort": the record is already
// confirmed. An affirmative asks for the note text; direct text becomes
// the note only when the classifier bound it to the notes field.
func (d *Dispatcher) notesConfirmation(ctx context.Context, msg Inbound, analysis model.Analysis, conv *state.Conversation) (model.Reply, error) {
	switch {
	case analysis.Intent == model.IntentCancelAction:
		return d.finalizeRegistration(ctx, msg.ConversationID, conv, "")
	case analysis.Intent == model.IntentConfirmAction || isAffirmative(msg.Text):
		d.states.Merge(msg.ConversationID, func(c *state.Conversation) {
			c.WaitingFor = state.WaitingNotes
		})
		return model.TextReply(msgAskNotes), nil
	case analysis.Intent == model.IntentProvideInfo &&
		(analysis.ProvidedField == "" || analysis.ProvidedField == string(state.WaitingNotes)):
		notes := analysis.ProvidedValue
		if notes == "" {
			notes = msg.Text
		}
		return d.finalizeRegistration(ctx, msg.ConversationID, conv, notes)
	default:
		// Unrelated intents and mismatched fields decline the note.
		return d.finalizeRegistration(ctx, msg.ConversationID, conv, "")
	}
}

// collectNotes stores the reply verbatim as the record's note. A
// cancellation while the note text is being collected aborts the whole
// registration, like any other pending slot.
func (d *Dispatcher) collectNotes(ctx context.Context, msg Inbound, analysis model.Analysis, conv *state.Conversation) (model.Reply, error) {
	if analysis.Intent == model.IntentCancelAction {
		d.states.ResetFlow(msg.ConversationID)
		return d.cancelAck(ctx, msg.Text), nil
	}
	return d.finalizeRegistration(ctx, msg.ConversationID, conv, msg.Text)
}

func isAffirmative(text string) bool {
	normalized := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), "!."))
	for _, word := range affirmativeReplies {
		if normalized == word {
			return true
		}
	}
	return false
}

// finalizeRegistration persists the draft and acknowledges with the full
// summary. The flow state is cleared on success and on persistence
// failure alike; retrying re-enters registration from scratch.
func (d *Dispatcher) finalizeRegistration(ctx context.Context, conversationID string, conv *state.Conversation, notes string) (model.Reply, error) {
	if conv.Draft == nil {
		return model.Reply{}, fmt.Errorf("%w: finalizing without a draft", common.ErrStateFault)
	}
	if notes != "" {
		conv.Draft.Notes = notes
	}

	if _, err := d.flows.Finalize(ctx, conversationID, conv.Draft); err != nil {
		return model.Reply{}, err
	}

	summary := render.DraftSummary(*conv.Draft, conv.Draft.Notes != "")
	d.states.ResetFlow(conversationID)
	return model.TextReply(fmt.Sprintf("✅ *Despesa registrada!*\n%s", summary)), nil
}

// adviceConfirmation resolves a standing offer of financial guidance. A
// classified cancellation gets the cancellation acknowledgment, a
// confirmation runs the advice flow with the originating message as
// context, and anything else is a decline.
func (d *Dispatcher) adviceConfirmation(ctx context.Context, msg Inbound, analysis model.Analysis, conv *state.Conversation) (model.Reply, error) {
	adviceContext := conv.AdviceContext
	d.states.ResetFlow(msg.ConversationID)

	switch {
	case analysis.Intent == model.IntentCancelAction:
		return d.cancelAck(ctx, msg.Text), nil
	case analysis.Intent == model.IntentConfirmAction || isAffirmative(msg.Text):
		return d.advise(ctx, msg.ConversationID, adviceContext)
	default:
		return model.TextReply(msgAdviceDeclined), nil
	}
}

// receiptDisambiguation picks one candidate from the pending list. The
// accepted grammar is "o mais antigo"/"o primeiro", "o mais recente"/
// "o último", or an explicit "id N"; anything else keeps the candidates
// armed and re-prompts.
func (d *Dispatcher) receiptDisambiguation(ctx context.Context, msg Inbound, analysis model.Analysis, conv *state.Conversation) (model.Reply, error) {
	if analysis.Intent == model.IntentCancelAction {
		d.states.ResetFlow(msg.ConversationID)
		return model.TextReply(msgReceiptCancelled), nil
	}
	if len(conv.Candidates) == 0 {
		return model.Reply{}, fmt.Errorf("%w: disambiguation pending without candidates", common.ErrStateFault)
	}

	selected, ok := pickCandidate(msg.Text, conv.Candidates)
	if !ok {
		return model.Reply{}, common.NewUserError(msgReceiptBadChoice, common.ErrDisambiguation)
	}

	d.states.ResetFlow(msg.ConversationID)
	return d.sendReceipt(ctx, selected)
}

// pickCandidate resolves the selection phrase against the candidate list,
// which is ordered oldest first.
func pickCandidate(text string, candidates []model.Expense) (model.Expense, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	switch normalized {
	case "o mais antigo", "o primeiro", "mais antigo", "primeiro":
		return candidates[0], true
	case "o mais recente", "o último", "mais recente", "último":
		return candidates[len(candidates)-1], true
	}

	if m := receiptIDPattern.FindStringSubmatch(normalized); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return model.Expense{}, false
		}
		for _, candidate := range candidates {
			if candidate.ID == id {
				return candidate, true
			}
		}
	}
	return model.Expense{}, false
}
