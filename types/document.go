package types

// Document categories follow the scraped help-center taxonomy.
const (
	CategoryTimesheet         = "timesheet"
	CategoryProjectManagement = "project_management"
	CategoryBilling           = "billing"
	CategoryCompliance        = "compliance"
	CategoryWorkforce         = "workforce_management"
	CategoryIntegration       = "integration"
	CategoryReporting         = "reporting"
	CategoryMobile            = "mobile"
	CategoryTroubleshooting   = "troubleshooting"
	CategoryGeneral           = "general"
)

// Document is one indexed help-center article. Documents are written by
// the scraper and are read-only during query processing.
type Document struct {
	ID        string   `bson:"_id,omitempty" json:"id"`
	Title     string   `bson:"title" json:"title"`
	Body      string   `bson:"body" json:"body"`
	URL       string   `bson:"url" json:"url"`
	Category  string   `bson:"category" json:"category"`
	Module    string   `bson:"module" json:"module"`
	Keywords  []string `bson:"keywords" json:"keywords"`
	CreatedAt int64    `bson:"created_at" json:"created_at"`
}

// ImageAsset is a screenshot scraped alongside a document. Intent is
// the visual-intent category the scraper tagged it with.
type ImageAsset struct {
	ID               string `bson:"_id,omitempty" json:"id"`
	Caption          string `bson:"caption" json:"caption"`
	AltText          string `bson:"alt_text" json:"alt_text"`
	Intent           string `bson:"intent" json:"intent"`
	Module           string `bson:"module" json:"module"`
	SourceDocumentID string `bson:"source_document_id" json:"source_document_id"`
	LocalPath        string `bson:"local_path" json:"local_path"`
	Width            int    `bson:"width" json:"width"`
	Height           int    `bson:"height" json:"height"`
}

// CorpusStats is the read-only introspection view over the corpus.
type CorpusStats struct {
	DocumentCount        int64            `json:"document_count"`
	ImageCount           int64            `json:"image_count"`
	CategoryDistribution map[string]int64 `json:"category_distribution"`
}
