// Package render builds the pt-BR chat text for reports and draft summaries.
// Formatting follows WhatsApp conventions (*bold*, _italic_).
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/pbarbosa/finbot/internal/model"
)

// Money formats a value in Brazilian style (comma decimal separator).
func Money(value float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", value), ".", ",")
}

// PeriodLabel returns the human label used in report headings.
func PeriodLabel(period model.Period) string {
	switch period {
	case model.PeriodMonth:
		return "Mês Atual"
	case model.PeriodToday:
		return "Hoje"
	case model.PeriodYesterday:
		return "Ontem"
	case model.PeriodLastMonth:
		return "Mês Passado"
	case model.PeriodAll:
		return "Geral"
	default:
		return fmt.Sprintf("Período (%s)", period)
	}
}

// Report renders the full expense report for a period.
func Report(expenses []model.Expense, period model.Period) string {
	label := PeriodLabel(period)

	if len(expenses) == 0 {
		return fmt.Sprintf("Nenhuma despesa encontrada para o período: *%s*.", label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 *Relatório de Despesas (%s)* 🧾\n\n", label)

	var total float64
	for _, exp := range expenses {
		fmt.Fprintf(&b, "*- Data:* %s\n", brazilianDate(exp.Date))
		fmt.Fprintf(&b, "  *- Categoria:* %s\n", orNA(exp.Category))
		fmt.Fprintf(&b, "  *- Item:* %s\n", orNA(exp.Item))
		fmt.Fprintf(&b, "  *- Local:* %s\n", orNA(exp.Establishment))
		fmt.Fprintf(&b, "  *- Pagamento:* %s\n", orNA(exp.PaymentMethod))
		if exp.Notes != "" {
			fmt.Fprintf(&b, "  *- Observações:* %s\n", exp.Notes)
		}
		if exp.HasAttachment {
			b.WriteString("  *- Comprovante:* [Imagem anexada]\n")
		}
		fmt.Fprintf(&b, "  *- Valor:* R$ %s\n\n", Money(exp.Value))
		total += exp.Value
	}

	b.WriteString("--------------------\n")
	fmt.Fprintf(&b, "*Total (%s):* R$ %s", label, Money(total))
	return b.String()
}

// DraftSummary renders the confirmation summary of an in-progress draft.
func DraftSummary(draft model.ExpenseDraft, includeNotes bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*- Valor:* R$ %s\n", Money(draft.Value))
	fmt.Fprintf(&b, "*- Categoria:* %s\n", orNA(draft.Category))
	fmt.Fprintf(&b, "*- Item:* %s\n", orNA(draft.Item))
	fmt.Fprintf(&b, "*- Local:* %s\n", orNA(draft.Establishment))
	fmt.Fprintf(&b, "*- Pagamento:* %s", orNA(draft.PaymentMethod))

	switch {
	case draft.Date == model.DateToday:
		b.WriteString("\n*- Data:* Hoje")
	case draft.Date != "":
		if parsed, err := time.Parse("2006-01-02", draft.Date); err == nil {
			fmt.Fprintf(&b, "\n*- Data:* %s", parsed.Format("02/01/2006"))
		}
	}

	if includeNotes && draft.Notes != "" {
		fmt.Fprintf(&b, "\n*- Observações:* %s", draft.Notes)
	}
	if len(draft.Attachments) > 0 {
		b.WriteString("\n*- Comprovante:* [Imagem anexada]")
	}
	return b.String()
}

// CandidateList renders disambiguation candidates with id, item, value,
// date and time of registration.
func CandidateList(candidates []model.Expense) string {
	var b strings.Builder
	b.WriteString("Encontrei estas despesas. Qual comprovante você deseja?\n")
	b.WriteString("_(Responda com o ID, 'o mais antigo' ou 'o mais recente')_\n")
	for _, exp := range candidates {
		fmt.Fprintf(&b, "\n- *ID %d:* %s (R$ %s) em %s às %s",
			exp.ID, exp.Item, Money(exp.Value),
			brazilianDate(exp.Date), exp.CreatedAt.Format("15:04"))
	}
	return b.String()
}

// brazilianDate converts YYYY-MM-DD into DD/MM/YYYY, leaving anything else
// untouched.
func brazilianDate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

func orNA(s string) string {
	if s == "" {
		return model.EstablishmentNA
	}
	return s
}
