// Package dispatch routes classified chat messages through the
// conversation state machine: idle messages start flows, pending
// conversations resolve the slot or confirmation they are blocked on.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pbarbosa/finbot/internal/common"
	"github.com/pbarbosa/finbot/internal/flow"
	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/service"
	"github.com/pbarbosa/finbot/internal/state"
)

// idleWindow is how long a conversation may sit untouched before the
// next message starts from a clean slate.
const idleWindow = 15 * time.Minute

// Canned replies for failure paths.
const (
	msgClassifierDown = "😕 Desculpe, estou com dificuldade para entender as mensagens agora. Pode tentar novamente em instantes?"
	msgPersistFailure = "😥 Não consegui salvar seus dados agora. Por favor, tente novamente em alguns instantes."
	msgInternalFault  = "🤯 Oops! Ocorreu um erro inesperado ao processar sua mensagem. Por favor, tente novamente."
	msgCancelled      = "Ok, cancelado! 👍"
)

// Inbound is one received chat message. Attachments carry refs of
// documents received alongside the text (receipt photos).
type Inbound struct {
	ConversationID string
	Text           string
	Attachments    []string
}

// Dispatcher is the conversational engine: it classifies each inbound
// message against the conversation's state and produces the reply,
// mutating state and storage along the way.
type Dispatcher struct {
	states     *state.Store
	storage    service.Storage
	classifier service.Classifier
	generator  service.Generator
	flows      *flow.Controller
	logger     *slog.Logger
	now        func() time.Time
	locks      *conversationLocks
}

func NewDispatcher(
	states *state.Store,
	storage service.Storage,
	classifier service.Classifier,
	generator service.Generator,
	flows *flow.Controller,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		states:     states,
		storage:    storage,
		classifier: classifier,
		generator:  generator,
		flows:      flows,
		logger:     logger,
		now:        time.Now,
		locks:      newConversationLocks(),
	}
}

// HandleMessage processes one inbound message to completion and returns
// the reply to send. Messages for the same conversation are handled
// strictly one at a time. It never returns an error: every failure mode
// maps to a user-facing reply.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg Inbound) model.Reply {
	release := d.locks.acquire(msg.ConversationID)
	defer release()

	now := d.now()
	last := d.states.LastActivity(msg.ConversationID)
	fresh := last.IsZero()
	if !fresh && now.Sub(last) > idleWindow {
		d.logger.Info("conversation expired, resetting",
			"conversation_id", msg.ConversationID,
			"idle", now.Sub(last))
		d.states.Clear(msg.ConversationID)
		fresh = true
	}
	d.states.Touch(msg.ConversationID, now)

	conv, _ := d.states.Get(msg.ConversationID)

	analysis, err := d.classifier.Analyze(ctx, msg.Text, &conv)
	if err != nil {
		d.logger.Error("classifier fault", "error", err, "conversation_id", msg.ConversationID)
		return model.TextReply(msgClassifierDown)
	}
	if analysis.Err != "" {
		// Classification failed upstream; state stays untouched so the
		// user can simply resend.
		d.logger.Warn("classification failed",
			"reason", analysis.Err,
			"conversation_id", msg.ConversationID)
		return model.TextReply(msgClassifierDown)
	}

	d.logger.Debug("message classified",
		"conversation_id", msg.ConversationID,
		"intent", analysis.Intent,
		"pending", conv.Pending())

	var reply model.Reply
	if conv.Pending() {
		reply, err = d.handlePending(ctx, msg, analysis, &conv)
	} else {
		reply, err = d.handleIdle(ctx, msg, analysis, &conv, fresh)
	}
	if err != nil {
		return d.failureReply(msg.ConversationID, err)
	}
	return reply
}

// failureReply maps a handler error onto the reply contract: validation
// problems and unresolved disambiguations re-prompt without losing
// state, persistence problems drop the flow with a retry notice,
// anything else force-clears the conversation.
func (d *Dispatcher) failureReply(conversationID string, err error) model.Reply {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrDisambiguation):
		return model.TextReply(common.UserMessage(err, msgInternalFault))
	case errors.Is(err, common.ErrPersistence):
		d.logger.Error("persistence failure", "error", err, "conversation_id", conversationID)
		d.states.ResetFlow(conversationID)
		return model.TextReply(msgPersistFailure)
	default:
		d.logger.Error("internal fault, clearing conversation",
			"error", err,
			"conversation_id", conversationID)
		d.states.Clear(conversationID)
		return model.TextReply(msgInternalFault)
	}
}

// cancelAck asks the generator for a friendly cancellation reply, falling
// back to a fixed one when the model is unavailable.
func (d *Dispatcher) cancelAck(ctx context.Context, text string) model.Reply {
	reply, err := d.generator.Conversational(ctx, text, model.IntentCancelAction, false)
	if err != nil || reply == "" {
		return model.TextReply(msgCancelled)
	}
	return model.TextReply(reply)
}
