package types

// DocumentRef is the document view exposed in a SupportResponse.
type DocumentRef struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// ImageRef is the screenshot view exposed in a SupportResponse.
type ImageRef struct {
	ID        string  `json:"id"`
	Caption   string  `json:"caption"`
	Intent    string  `json:"intent"`
	LocalPath string  `json:"local_path"`
	Score     float64 `json:"score"`
}

// SupportResponse is the terminal artifact of one pipeline run. Field
// names are stable for consuming UIs.
type SupportResponse struct {
	AnswerText        string        `json:"answer_text"`
	Confidence        float64       `json:"confidence"`
	NeedsEscalation   bool          `json:"needs_escalation"`
	SuggestedActions  []string      `json:"suggested_actions"`
	RelevantDocuments []DocumentRef `json:"relevant_documents"`
	RelevantImages    []ImageRef    `json:"relevant_images"`
}

// AskRequest is the HTTP body for the ask endpoint.
type AskRequest struct {
	Query      string `json:"query"`
	Role       string `json:"role,omitempty"`
	ModuleHint string `json:"module_hint,omitempty"`
}

// DataResponse is the generic HTTP envelope.
type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthResponse reports service liveness and collaborator status.
type HealthResponse struct {
	Status              string `json:"status"`
	CorpusConnected     bool   `json:"corpus_connected"`
	GeneratorConfigured bool   `json:"generator_configured"`
}
