package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbarbosa/finbot/internal/flow"
	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/state"
)

const testConv = "5511999990000"

type fixture struct {
	dispatcher *Dispatcher
	states     *state.Store
	storage    *mockStorage
	classifier *mockClassifier
	generator  *mockGenerator
	clock      time.Time
}

func newFixture(t *testing.T, script ...model.Analysis) *fixture {
	t.Helper()

	storage := &mockStorage{createID: 1}
	classifier := &mockClassifier{script: script}
	generator := &mockGenerator{
		conversationalText: "Olá! Como posso ajudar? 👋",
		adviceText:         "Dica: registre tudo. 💡",
		researchText:       "CDB é um título de renda fixa.",
	}
	states := state.NewStore()
	f := &fixture{
		states:     states,
		storage:    storage,
		classifier: classifier,
		generator:  generator,
		clock:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.dispatcher = NewDispatcher(states, storage, classifier, generator, flow.NewController(storage, nil), nil)
	f.dispatcher.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) send(text string, attachments ...string) model.Reply {
	return f.dispatcher.HandleMessage(context.Background(), Inbound{
		ConversationID: testConv,
		Text:           text,
		Attachments:    attachments,
	})
}

func (f *fixture) waiting(t *testing.T) state.Waiting {
	t.Helper()
	conv, _ := f.states.Get(testConv)
	return conv.WaitingFor
}

func TestGreetingRepliesConversational(t *testing.T) {
	f := newFixture(t, model.Analysis{Intent: model.IntentGreeting})

	reply := f.send("oi")
	assert.Equal(t, "Olá! Como posso ajudar? 👋", reply.Text())
	assert.True(t, f.generator.lastFresh)
	assert.Equal(t, state.WaitingNone, f.waiting(t))
}

func TestRegistrationFullSlotFilling(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRegisterExpense},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "value", ProvidedValue: "25,50"},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "item", ProvidedValue: "pizza"},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "payment_method", ProvidedValue: "Pix"},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "establishment", ProvidedValue: "Bella Napoli"},
		model.Analysis{Intent: model.IntentCancelAction},
	)

	reply := f.send("quero registrar um gasto")
	assert.Contains(t, reply.Text(), "valor")
	assert.Equal(t, state.WaitingValue, f.waiting(t))

	reply = f.send("25,50")
	assert.Contains(t, reply.Text(), "item principal")
	assert.Equal(t, state.WaitingItem, f.waiting(t))

	reply = f.send("pizza")
	assert.Contains(t, reply.Text(), "forma de pagamento")

	reply = f.send("Pix")
	assert.Contains(t, reply.Text(), "estabelecimento")

	reply = f.send("Bella Napoli")
	assert.Contains(t, reply.Text(), "Confira os dados")
	assert.Equal(t, state.WaitingNotesConfirmation, f.waiting(t))

	// "não" at the notes question saves without notes instead of aborting.
	reply = f.send("não")
	assert.Contains(t, reply.Text(), "Despesa registrada")
	require.Len(t, f.storage.created, 1)
	saved := f.storage.created[0]
	assert.Equal(t, 25.5, saved.Value)
	assert.Equal(t, "pizza", saved.Item)
	assert.Equal(t, "Pix", saved.PaymentMethod)
	assert.Equal(t, "Bella Napoli", saved.Establishment)
	assert.Equal(t, model.DefaultCategory, saved.Category)
	assert.Empty(t, saved.Notes)
	assert.Equal(t, state.WaitingNone, f.waiting(t))
}

func TestRegistrationDirectNotesAtConfirmation(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "42",
			Item:          "mercado",
			PaymentMethod: "Débito",
			Establishment: "Pão de Açúcar",
		},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "notes", ProvidedValue: "compra da semana"},
	)

	reply := f.send("gastei 42 no mercado, débito, Pão de Açúcar")
	assert.Equal(t, state.WaitingNotesConfirmation, f.waiting(t))
	assert.Contains(t, reply.Text(), "observação")

	reply = f.send("compra da semana")
	assert.Contains(t, reply.Text(), "Despesa registrada")
	require.Len(t, f.storage.created, 1)
	assert.Equal(t, "compra da semana", f.storage.created[0].Notes)
}

func TestRegistrationNotesViaConfirmThenText(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "10",
			Item:          "café",
			PaymentMethod: "Dinheiro",
			Establishment: "N/A",
		},
		model.Analysis{Intent: model.IntentConfirmAction},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "notes"},
	)

	f.send("10 reais de café em dinheiro, sem local")
	reply := f.send("sim")
	assert.Contains(t, reply.Text(), "observação")
	assert.Equal(t, state.WaitingNotes, f.waiting(t))

	f.send("café com o chefe")
	require.Len(t, f.storage.created, 1)
	assert.Equal(t, "café com o chefe", f.storage.created[0].Notes)
	assert.Equal(t, model.EstablishmentNone, f.storage.created[0].Establishment)
}

func TestNotesConfirmationUnrelatedIntentDeclinesNotes(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "15",
			Item:          "estacionamento",
			PaymentMethod: "Dinheiro",
			Establishment: "Shopping",
		},
		model.Analysis{Intent: model.IntentRequestReport},
	)

	f.send("15 de estacionamento no shopping, dinheiro")
	assert.Equal(t, state.WaitingNotesConfirmation, f.waiting(t))

	// A topic change at the notes question declines the note but still
	// saves the record.
	reply := f.send("me mostra o relatório")
	assert.Contains(t, reply.Text(), "Despesa registrada")
	require.Len(t, f.storage.created, 1)
	assert.Empty(t, f.storage.created[0].Notes)
}

func TestNotesConfirmationMismatchedFieldDeclinesNote(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "15",
			Item:          "estacionamento",
			PaymentMethod: "Dinheiro",
			Establishment: "Shopping",
		},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "value", ProvidedValue: "50"},
	)

	f.send("15 de estacionamento no shopping, dinheiro")
	assert.Equal(t, state.WaitingNotesConfirmation, f.waiting(t))

	// A stray number bound to the wrong field must not become the note.
	reply := f.send("50")
	assert.Contains(t, reply.Text(), "Despesa registrada")
	require.Len(t, f.storage.created, 1)
	assert.Empty(t, f.storage.created[0].Notes)
	assert.Equal(t, 15.0, f.storage.created[0].Value)
}

func TestNotesConfirmationCancelBeatsAffirmativeText(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "15",
			Item:          "estacionamento",
			PaymentMethod: "Dinheiro",
			Establishment: "Shopping",
		},
		model.Analysis{Intent: model.IntentCancelAction},
	)

	f.send("15 de estacionamento no shopping, dinheiro")

	// "ok" reads as affirmative, but the classifier said cancel: the
	// record is saved without a note instead of entering note collection.
	f.send("ok")
	assert.Equal(t, state.WaitingNone, f.waiting(t))
	require.Len(t, f.storage.created, 1)
	assert.Empty(t, f.storage.created[0].Notes)
}

func TestNotesConfirmationAffirmativeTextAsksForNote(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "15",
			Item:          "estacionamento",
			PaymentMethod: "Dinheiro",
			Establishment: "Shopping",
		},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "notes", ProvidedValue: "pode"},
	)

	f.send("15 de estacionamento no shopping, dinheiro")
	reply := f.send("pode")
	assert.Contains(t, reply.Text(), "observação")
	assert.Equal(t, state.WaitingNotes, f.waiting(t))
	assert.Empty(t, f.storage.created)
}

func TestCancelWhileCollectingNoteAborts(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "15",
			Item:          "estacionamento",
			PaymentMethod: "Pix",
			Establishment: "Shopping",
		},
		model.Analysis{Intent: model.IntentConfirmAction},
		model.Analysis{Intent: model.IntentCancelAction},
	)

	f.send("15 de estacionamento")
	f.send("sim")
	assert.Equal(t, state.WaitingNotes, f.waiting(t))

	f.send("cancela")
	assert.Equal(t, state.WaitingNone, f.waiting(t))
	assert.Empty(t, f.storage.created)
}

func TestCancelDuringSlotAbortsRegistration(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRegisterExpense},
		model.Analysis{Intent: model.IntentCancelAction},
	)

	f.send("registrar gasto")
	assert.Equal(t, state.WaitingValue, f.waiting(t))

	f.send("deixa pra lá")
	assert.Equal(t, state.WaitingNone, f.waiting(t))
	assert.Empty(t, f.storage.created)
}

func TestInvalidValueReprompts(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRegisterExpense},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "value", ProvidedValue: "muito caro"},
	)

	f.send("registrar gasto")
	reply := f.send("muito caro")
	assert.Contains(t, reply.Text(), "Valor inválido")
	assert.Equal(t, state.WaitingValue, f.waiting(t))
}

func TestUnrelatedIntentDuringSlotReasksQuestion(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRegisterExpense},
		model.Analysis{Intent: model.IntentRequestReport},
	)

	f.send("registrar gasto")
	reply := f.send("me mostra o relatório")
	assert.Contains(t, reply.Text(), "não entendi")
	assert.Contains(t, reply.Text(), "valor")
	assert.Equal(t, state.WaitingValue, f.waiting(t))
}

func TestMismatchedProvidedFieldReasksQuestion(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRegisterExpense},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "notes", ProvidedValue: "foi caro demais"},
	)

	f.send("registrar gasto")
	reply := f.send("foi caro demais")
	assert.Contains(t, reply.Text(), "não entendi")
	assert.Equal(t, state.WaitingValue, f.waiting(t))
}

func TestUnknownIntentWithResearchTopicRefines(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRequestResearch, ResearchQuery: "inflação"},
		model.Analysis{Intent: model.IntentUnknown},
	)

	f.send("o que é inflação?")
	f.send("e no longo prazo?")
	assert.Equal(t, "inflação", f.generator.lastTopic)
	assert.Equal(t, "e no longo prazo?", f.generator.lastRefinement)
}

func TestChitChatWithoutOfferClearsResearchTopic(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRequestResearch, ResearchQuery: "CDB"},
		model.Analysis{Intent: model.IntentChitChat},
	)
	f.generator.conversationalText = "Que bom falar com você! 😄"

	f.send("o que é CDB?")
	f.send("você é um robô?")

	conv, _ := f.states.Get(testConv)
	assert.Empty(t, conv.LastResearchTopic)
}

func TestIdleWindowResetsConversation(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRegisterExpense},
		model.Analysis{Intent: model.IntentGreeting},
	)

	f.send("registrar gasto")
	assert.Equal(t, state.WaitingValue, f.waiting(t))

	f.clock = f.clock.Add(16 * time.Minute)
	f.send("oi de novo")
	assert.Equal(t, state.WaitingNone, f.waiting(t))
	assert.True(t, f.generator.lastFresh)
}

func TestIdleWindowKeepsRecentConversation(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRegisterExpense},
		model.Analysis{Intent: model.IntentProvideInfo, ProvidedField: "value", ProvidedValue: "30"},
	)

	f.send("registrar gasto")
	f.clock = f.clock.Add(14 * time.Minute)
	f.send("30")
	assert.Equal(t, state.WaitingItem, f.waiting(t))
}

func TestClassifierFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRegisterExpense},
		model.Analysis{Intent: model.IntentUnknown, Err: "upstream timeout"},
	)

	f.send("registrar gasto")
	reply := f.send("25,50")
	assert.Contains(t, reply.Text(), "dificuldade para entender")
	assert.Equal(t, state.WaitingValue, f.waiting(t))
}

func TestPersistenceFailureClearsFlow(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "10",
			Item:          "café",
			PaymentMethod: "Pix",
			Establishment: "Padaria",
		},
		model.Analysis{Intent: model.IntentCancelAction},
	)
	f.storage.createErr = errors.New("database is locked")

	f.send("10 de café no pix na padaria")
	reply := f.send("não")
	assert.Contains(t, reply.Text(), "Não consegui salvar")
	assert.Equal(t, state.WaitingNone, f.waiting(t))
}

func TestReportUsesRequestedPeriod(t *testing.T) {
	f := newFixture(t, model.Analysis{Intent: model.IntentRequestReport, ReportPeriod: "today"})
	f.storage.listResult = []model.Expense{{
		ID: 1, Item: "almoço", Value: 30, Category: "Alimentação",
		PaymentMethod: "Pix", Date: "2025-03-10",
	}}

	reply := f.send("gastos de hoje")
	assert.Equal(t, model.PeriodToday, f.storage.lastPeriod)
	assert.Contains(t, reply.Text(), "almoço")
}

func TestUnrecognizedReportPeriodWarnsAndDefaults(t *testing.T) {
	f := newFixture(t, model.Analysis{Intent: model.IntentRequestReport, ReportPeriod: "semana retrasada"})
	recorder := &recordingHandler{}
	f.dispatcher.logger = slog.New(recorder)

	f.send("gastos da semana retrasada")
	assert.Equal(t, model.PeriodMonth, f.storage.lastPeriod)
	assert.Contains(t, recorder.levels(), slog.LevelWarn)
}

func TestAdviceFallsBackToAllTimeSpending(t *testing.T) {
	f := newFixture(t, model.Analysis{Intent: model.IntentRequestAdvice})
	f.storage.spending = map[model.Period][]model.CategoryTotal{
		model.PeriodAll: {{Category: "Lazer", Total: 120}},
	}

	reply := f.send("me dá umas dicas")
	assert.Equal(t, "Dica: registre tudo. 💡", reply.Text())
	assert.Equal(t, []model.CategoryTotal{{Category: "Lazer", Total: 120}}, f.generator.lastSpending)
}

func TestChitChatOfferArmsAdviceConfirmation(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentChitChat},
		model.Analysis{Intent: model.IntentConfirmAction},
	)
	f.generator.conversationalText = "Sinto muito! 😔 Quer algumas dicas de organização financeira?"

	f.send("tô gastando demais, não sei o que fazer")
	assert.Equal(t, state.WaitingAdviceConfirmation, f.waiting(t))

	reply := f.send("sim")
	assert.Equal(t, "Dica: registre tudo. 💡", reply.Text())
	assert.Equal(t, "tô gastando demais, não sei o que fazer", f.generator.lastContext)
	assert.Equal(t, state.WaitingNone, f.waiting(t))
}

func TestAdviceOfferCancelGetsAcknowledgment(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentChitChat},
		model.Analysis{Intent: model.IntentCancelAction},
	)
	f.generator.conversationalText = "Quer uma ajuda para organizar as contas?"

	f.send("que mês difícil")
	assert.Equal(t, state.WaitingAdviceConfirmation, f.waiting(t))

	f.send("cancela")
	assert.Equal(t, model.IntentCancelAction, f.generator.lastIntent)
	assert.Equal(t, state.WaitingNone, f.waiting(t))
}

func TestAdviceOfferDeclinedByOtherIntent(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentChitChat},
		model.Analysis{Intent: model.IntentChitChat},
	)
	f.generator.conversationalText = "Quer uma ajuda para organizar as contas?"

	f.send("que mês difícil")
	reply := f.send("não, valeu")
	assert.Contains(t, reply.Text(), "Sem problemas")
	assert.Equal(t, state.WaitingNone, f.waiting(t))
}

func TestAdviceOfferRequiresQuerMarker(t *testing.T) {
	f := newFixture(t, model.Analysis{Intent: model.IntentChitChat})
	f.generator.conversationalText = "Gostaria de algumas dicas de organização financeira?"

	f.send("tô no vermelho")
	assert.Equal(t, state.WaitingNone, f.waiting(t))
}

func TestResearchThenRefinement(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRequestResearch, ResearchQuery: "CDB"},
		model.Analysis{Intent: model.IntentRequestResearch},
	)

	f.send("o que é CDB?")
	assert.Equal(t, "CDB", f.generator.lastTopic)
	assert.Empty(t, f.generator.lastRefinement)

	f.send("explique de forma mais técnica")
	assert.Equal(t, "CDB", f.generator.lastTopic)
	assert.Equal(t, "explique de forma mais técnica", f.generator.lastRefinement)
}

func TestChitChatFollowupRefinesResearchTopic(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRequestResearch, ResearchQuery: "Tesouro Direto"},
		model.Analysis{Intent: model.IntentChitChat},
	)

	f.send("o que é tesouro direto?")
	f.send("me dá um exemplo")
	assert.Equal(t, "Tesouro Direto", f.generator.lastTopic)
	assert.Equal(t, "me dá um exemplo", f.generator.lastRefinement)
}

func TestTopicChangingIntentClearsResearchTopic(t *testing.T) {
	f := newFixture(t,
		model.Analysis{Intent: model.IntentRequestResearch, ResearchQuery: "CDB"},
		model.Analysis{Intent: model.IntentRequestReport},
		model.Analysis{Intent: model.IntentChitChat},
	)

	f.send("o que é CDB?")
	f.send("relatório do mês")

	f.generator.lastTopic = ""
	f.send("me dá um exemplo")
	assert.Empty(t, f.generator.lastTopic)
	assert.Equal(t, model.IntentChitChat, f.generator.lastIntent)
}

func TestReceiptSearchWithoutCriteriaAsksForDetails(t *testing.T) {
	f := newFixture(t, model.Analysis{Intent: model.IntentRequestReceipt})

	reply := f.send("me manda aquele comprovante")
	assert.Contains(t, reply.Text(), "mais detalhes")
}

func TestReceiptSingleMatchSendsAttachment(t *testing.T) {
	f := newFixture(t, model.Analysis{
		Intent:         model.IntentRequestReceipt,
		SearchCriteria: model.SearchCriteria{Item: "pizza"},
	})
	f.storage.findResult = []model.Expense{{ID: 7, Item: "pizza"}}
	f.storage.attachments = map[int64][]string{7: {"ref-abc"}}

	reply := f.send("comprovante da pizza")
	require.Len(t, reply.Segments, 2)
	assert.Equal(t, model.SegmentText, reply.Segments[0].Kind)
	assert.Equal(t, model.SegmentImage, reply.Segments[1].Kind)
	assert.Equal(t, "ref-abc", reply.Segments[1].Ref)
}

func TestReceiptSingleMatchWithoutAttachment(t *testing.T) {
	f := newFixture(t, model.Analysis{
		Intent:         model.IntentRequestReceipt,
		SearchCriteria: model.SearchCriteria{Item: "pizza"},
	})
	f.storage.findResult = []model.Expense{{ID: 7, Item: "pizza"}}

	reply := f.send("comprovante da pizza")
	assert.Contains(t, reply.Text(), "não possui comprovante")
}

func TestReceiptDisambiguation(t *testing.T) {
	candidates := []model.Expense{
		{ID: 3, Item: "pizza", Value: 40},
		{ID: 9, Item: "pizza", Value: 45},
	}

	tests := []struct {
		name   string
		choice string
		wantID int64
	}{
		{"oldest", "o mais antigo", 3},
		{"first", "o primeiro", 3},
		{"newest", "o mais recente", 9},
		{"last", "o último", 9},
		{"explicit id", "ID 9", 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t,
				model.Analysis{
					Intent:         model.IntentRequestReceipt,
					SearchCriteria: model.SearchCriteria{Item: "pizza"},
				},
				model.Analysis{Intent: model.IntentProvideInfo},
			)
			f.storage.findResult = candidates
			f.storage.attachments = map[int64][]string{
				3: {"ref-old"}, 9: {"ref-new"},
			}

			reply := f.send("comprovante da pizza")
			assert.Contains(t, reply.Text(), "ID 3")
			assert.Contains(t, reply.Text(), "ID 9")
			assert.Equal(t, state.WaitingReceiptDisambiguation, f.waiting(t))

			reply = f.send(tt.choice)
			wantRef := "ref-old"
			if tt.wantID == 9 {
				wantRef = "ref-new"
			}
			require.Len(t, reply.Segments, 2)
			assert.Equal(t, wantRef, reply.Segments[1].Ref)
			assert.Equal(t, state.WaitingNone, f.waiting(t))
		})
	}
}

func TestReceiptDisambiguationMismatchKeepsCandidates(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:         model.IntentRequestReceipt,
			SearchCriteria: model.SearchCriteria{Item: "pizza"},
		},
		model.Analysis{Intent: model.IntentProvideInfo},
	)
	f.storage.findResult = []model.Expense{{ID: 3, Item: "pizza"}, {ID: 9, Item: "pizza"}}

	f.send("comprovante da pizza")
	reply := f.send("aquele de ontem à noite")
	assert.Contains(t, reply.Text(), "Não entendi qual comprovante")
	assert.Equal(t, state.WaitingReceiptDisambiguation, f.waiting(t))

	conv, _ := f.states.Get(testConv)
	assert.Len(t, conv.Candidates, 2)
}

func TestReceiptDisambiguationUnknownIDReprompts(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:         model.IntentRequestReceipt,
			SearchCriteria: model.SearchCriteria{Item: "pizza"},
		},
		model.Analysis{Intent: model.IntentProvideInfo},
	)
	f.storage.findResult = []model.Expense{{ID: 3, Item: "pizza"}, {ID: 9, Item: "pizza"}}

	f.send("comprovante da pizza")
	reply := f.send("ID 42")
	assert.Contains(t, reply.Text(), "Não entendi qual comprovante")
	assert.Equal(t, state.WaitingReceiptDisambiguation, f.waiting(t))
}

func TestReceiptDisambiguationCancel(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:         model.IntentRequestReceipt,
			SearchCriteria: model.SearchCriteria{Item: "pizza"},
		},
		model.Analysis{Intent: model.IntentCancelAction},
	)
	f.storage.findResult = []model.Expense{{ID: 3, Item: "pizza"}, {ID: 9, Item: "pizza"}}

	f.send("comprovante da pizza")
	reply := f.send("cancela")
	assert.Contains(t, reply.Text(), "cancelada")
	assert.Equal(t, state.WaitingNone, f.waiting(t))
}

func TestAttachmentsOnInitialMessageReachStorage(t *testing.T) {
	f := newFixture(t,
		model.Analysis{
			Intent:        model.IntentRegisterExpense,
			Value:         "99",
			Item:          "tênis",
			PaymentMethod: "Crédito (Visa)",
			Establishment: "Loja X",
		},
		model.Analysis{Intent: model.IntentCancelAction},
	)

	f.send("gastei 99 num tênis na Loja X no crédito", "ref-photo-1")
	f.send("não")
	require.Len(t, f.storage.created, 1)
	assert.Equal(t, []string{"ref-photo-1"}, f.storage.created[0].Attachments)
}

func TestCancelWithNothingPendingFallsBackToSmallTalk(t *testing.T) {
	f := newFixture(t, model.Analysis{Intent: model.IntentCancelAction})

	reply := f.send("cancela tudo")
	assert.Equal(t, "Olá! Como posso ajudar? 👋", reply.Text())
	assert.Equal(t, model.IntentUnknown, f.generator.lastIntent)
}
