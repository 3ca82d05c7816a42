package types

// User roles the prompt templates know about.
const (
	RoleEmployee       = "employee"
	RoleManager        = "manager"
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
)

// SupportQuery is one incoming question. It lives for the duration of a
// single pipeline run and is never persisted.
type SupportQuery struct {
	Text       string `json:"text"`
	Role       string `json:"role,omitempty"`
	ModuleHint string `json:"module_hint,omitempty"`
}

// IntentCategory is the visual-intent taxonomy. The classifier always
// returns exactly one of these.
type IntentCategory string

const (
	IntentProjectSetup  IntentCategory = "project_setup"
	IntentTimesheet     IntentCategory = "timesheet"
	IntentMobile        IntentCategory = "mobile"
	IntentNavigation    IntentCategory = "navigation"
	IntentGeneralVisual IntentCategory = "general_visual"
	IntentNone          IntentCategory = "none"
)

// IntentResult is the classifier output. Category is IntentNone when no
// rule matched; image retrieval is skipped in that case.
type IntentResult struct {
	Category   IntentCategory `json:"category"`
	Confidence float64        `json:"confidence"`
}
