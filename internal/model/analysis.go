package model

import (
	"fmt"
	"strconv"
)

// Intent is the classified top-level intention of a chat message.
type Intent string

// Known intents. Anything else decodes to IntentUnknown.
const (
	IntentRegisterExpense Intent = "register_expense"
	IntentRequestReport   Intent = "request_report"
	IntentRequestAdvice   Intent = "request_advice"
	IntentRequestResearch Intent = "request_research"
	IntentRequestReceipt  Intent = "request_receipt"
	IntentProvideInfo     Intent = "provide_info"
	IntentConfirmAction   Intent = "confirm_action"
	IntentCancelAction    Intent = "cancel_action"
	IntentGreeting        Intent = "greeting"
	IntentChitChat        Intent = "chit_chat"
	IntentUnknown         Intent = "unknown"
)

// Analysis is the decoded classifier output for one message. Entity fields
// are populated only for the intents that carry them; numeric entities are
// kept raw (string) because coercion rules differ per consumer.
type Analysis struct {
	Intent Intent

	// register_expense entities.
	Value         string
	Category      string
	Establishment string
	PaymentMethod string
	Item          string
	Notes         string
	Date          string

	// request_report.
	ReportPeriod string

	// request_research. Empty means "refine the previous topic".
	ResearchQuery string

	// request_receipt.
	SearchCriteria SearchCriteria

	// provide_info.
	ProvidedField string
	ProvidedValue string

	// Err carries upstream classification failures; the rest of the
	// struct is not meaningful when it is set.
	Err string
}

// DecodeAnalysis converts the classifier's raw JSON object into a typed
// Analysis, tolerating missing fields and mixed string/number payloads.
// An unrecognized or absent intent decodes to IntentUnknown rather than
// being trusted.
func DecodeAnalysis(raw map[string]any) Analysis {
	a := Analysis{Intent: IntentUnknown}
	if raw == nil {
		a.Err = "empty classifier output"
		return a
	}

	switch Intent(asString(raw["intent"])) {
	case IntentRegisterExpense, IntentRequestReport, IntentRequestAdvice,
		IntentRequestResearch, IntentRequestReceipt, IntentProvideInfo,
		IntentConfirmAction, IntentCancelAction, IntentGreeting,
		IntentChitChat:
		a.Intent = Intent(asString(raw["intent"]))
	case IntentUnknown:
		a.Intent = IntentUnknown
	default:
		a.Intent = IntentUnknown
	}

	a.Value = asString(raw["value"])
	a.Category = asString(raw["category"])
	a.Establishment = asString(raw["establishment"])
	a.PaymentMethod = asString(raw["payment_method"])
	a.Item = asString(raw["item"])
	a.Notes = asString(raw["notes"])
	a.Date = asString(raw["date"])
	a.ReportPeriod = asString(raw["report_period"])
	a.ResearchQuery = asString(raw["research_query"])
	a.ProvidedField = asString(raw["provided_field"])
	a.ProvidedValue = asString(raw["provided_value"])
	a.Err = asString(raw["error"])

	if criteria, ok := raw["search_criteria"].(map[string]any); ok {
		a.SearchCriteria = SearchCriteria{
			Item:          asString(criteria["item"]),
			Establishment: asString(criteria["establishment"]),
			Category:      asString(criteria["category"]),
			Date:          asString(criteria["date"]),
		}
		if v, err := ParseMoney(asString(criteria["value"])); err == nil {
			a.SearchCriteria.Value = v
		}
	}

	return a
}

// asString renders a JSON scalar as a string. Nulls and unsupported types
// become empty strings; numbers keep their shortest representation so
// "25.5" and 25.5 decode identically.
func asString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
