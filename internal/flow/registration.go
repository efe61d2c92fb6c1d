// Package flow implements the expense registration slot-filling flow:
// given a partially filled draft, it decides which slot to ask for next
// and finalizes complete drafts into storage.
package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pbarbosa/finbot/internal/common"
	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/render"
	"github.com/pbarbosa/finbot/internal/service"
	"github.com/pbarbosa/finbot/internal/state"
)

// Slot prompts, in the order slots are requested. Each one echoes the
// fields confirmed so far.
const (
	promptValue         = "Qual foi o *valor* da despesa?"
	promptItem          = "Ok, R$ %s. Qual foi o *item principal* ou serviço comprado?"
	promptPaymentMethod = "Certo: R$ %s para %q. Qual foi a *forma de pagamento*? (Ex: %s)"
	promptEstablishment = "Entendido: R$ %s (%s, pago com %s). Em qual *estabelecimento* ou local foi a compra? (Se não se aplica, diga 'N/A')"
)

// PaymentMethodExamples lists the suggestions shown when asking for the
// payment method slot.
const PaymentMethodExamples = "Pix, Dinheiro, Débito, Crédito (Visa), Crédito (Master), Boleto, Transferência"

// Step is the controller's answer to "what next": which slot the
// conversation should wait on and the question to send.
type Step struct {
	Waiting state.Waiting
	Prompt  string
}

// Controller drives expense registration. Advance is pure; Finalize
// writes the completed draft to storage.
type Controller struct {
	storage service.Storage
	logger  *slog.Logger
}

func NewController(storage service.Storage, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{storage: storage, logger: logger}
}

// Advance inspects the draft and returns the next slot to collect.
// Missing slots are requested one at a time: value, item, payment
// method, establishment. Category defaults silently. Once all concrete
// slots are filled the step is the notes confirmation summary.
func (c *Controller) Advance(draft *model.ExpenseDraft) (Step, error) {
	if draft == nil {
		return Step{}, fmt.Errorf("%w: advancing nil draft", common.ErrStateFault)
	}

	if !draft.HasValue() {
		return Step{Waiting: state.WaitingValue, Prompt: promptValue}, nil
	}
	if draft.Item == "" {
		return Step{
			Waiting: state.WaitingItem,
			Prompt:  fmt.Sprintf(promptItem, render.Money(draft.Value)),
		}, nil
	}
	if draft.PaymentMethod == "" {
		return Step{
			Waiting: state.WaitingPaymentMethod,
			Prompt:  fmt.Sprintf(promptPaymentMethod, render.Money(draft.Value), draft.Item, PaymentMethodExamples),
		}, nil
	}
	if draft.Establishment == "" {
		return Step{
			Waiting: state.WaitingEstablishment,
			Prompt:  fmt.Sprintf(promptEstablishment, render.Money(draft.Value), draft.Item, draft.PaymentMethod),
		}, nil
	}

	if draft.Category == "" {
		draft.Category = model.DefaultCategory
	}

	prompt := fmt.Sprintf(
		"👍 Quase lá! Confira os dados:\n%s\n\nDeseja adicionar alguma *observação*? (Responda 'sim', 'não', ou envie a observação diretamente)",
		render.DraftSummary(*draft, false),
	)
	return Step{Waiting: state.WaitingNotesConfirmation, Prompt: prompt}, nil
}

// Finalize persists a completed draft. The draft is re-validated first:
// a draft that reaches finalization with missing required fields means
// the conversation state is corrupt, not that the user typed something
// wrong.
func (c *Controller) Finalize(ctx context.Context, conversationID string, draft *model.ExpenseDraft) (int64, error) {
	if draft == nil {
		return 0, fmt.Errorf("%w: finalizing nil draft", common.ErrStateFault)
	}
	if draft.Category == "" {
		draft.Category = model.DefaultCategory
	}
	if err := draft.Validate(); err != nil {
		return 0, fmt.Errorf("%w: finalizing incomplete draft: %v", common.ErrStateFault, err)
	}

	id, err := c.storage.CreateExpense(ctx, conversationID, *draft)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	c.logger.Info("expense registered",
		"conversation_id", conversationID,
		"expense_id", id,
		"value", draft.Value,
		"category", draft.Category)
	return id, nil
}
