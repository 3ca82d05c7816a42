package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/timewise-app/support-be/types"
)

// Corpus drivers.
const (
	CorpusDriverMongo    = "mongo"
	CorpusDriverWeaviate = "weaviate"
)

// Generation providers.
const (
	AIProviderOpenAI = "openai"
	AIProviderGemini = "gemini"
)

type Config struct {
	Port     string         `mapstructure:"port"`
	Corpus   CorpusConfig   `mapstructure:"corpus"`
	AI       AIConfig       `mapstructure:"ai"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

type CorpusConfig struct {
	Driver        string         `mapstructure:"driver"`
	MongoURI      string         `mapstructure:"MONGODB_URI"`
	MongoDatabase string         `mapstructure:"mongo_database"`
	Weaviate      WeaviateConfig `mapstructure:"weaviate"`
	// CandidateLimit caps how many pre-filtered candidates the store
	// returns per search; the scorer re-ranks and thresholds them.
	CandidateLimit int `mapstructure:"candidate_limit"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

type AIConfig struct {
	Provider       string   `mapstructure:"provider"`
	Endpoint       string   `mapstructure:"endpoint"`
	Model          string   `mapstructure:"model"`
	OpenAIAPIKey   string   `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys  []string `mapstructure:"gemini_api_keys"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	// MaxRetries is the number of additional generation attempts after
	// the first one fails. The pipeline allows at most one.
	MaxRetries int `mapstructure:"max_retries"`
}

func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PipelineConfig carries every tunable of the query pipeline so tests
// can vary thresholds without touching shared state.
type PipelineConfig struct {
	Scorer   ScorerConfig   `mapstructure:"scorer"`
	Intent   IntentConfig   `mapstructure:"intent"`
	Context  ContextConfig  `mapstructure:"context"`
	Assessor AssessorConfig `mapstructure:"assessor"`
}

type ScorerConfig struct {
	StopWords     []string `mapstructure:"stop_words"`
	MinTermLength int      `mapstructure:"min_term_length"`

	// Document scoring weights.
	QueryInTitleWeight float64 `mapstructure:"query_in_title_weight"`
	TitleTermWeight    float64 `mapstructure:"title_term_weight"`
	KeywordTermWeight  float64 `mapstructure:"keyword_term_weight"`
	BodyTermWeight     float64 `mapstructure:"body_term_weight"`
	FuzzyWeight        float64 `mapstructure:"fuzzy_weight"`
	FuzzyPrefixLength  int     `mapstructure:"fuzzy_prefix_length"`
	CategoryBonus      float64 `mapstructure:"category_bonus"`
	ModuleBonus        float64 `mapstructure:"module_bonus"`
	LongBodyChars      int     `mapstructure:"long_body_chars"`
	LongBodyDamping    float64 `mapstructure:"long_body_damping"`
	DocumentThreshold  float64 `mapstructure:"document_threshold"`

	// Image scoring weights.
	IntentMatchWeight float64  `mapstructure:"intent_match_weight"`
	CaptionTermWeight float64  `mapstructure:"caption_term_weight"`
	AltTextTermWeight float64  `mapstructure:"alt_text_term_weight"`
	ImageModuleBonus  float64  `mapstructure:"image_module_bonus"`
	PenaltyTerms      []string `mapstructure:"penalty_terms"`
	PenaltyWeight     float64  `mapstructure:"penalty_weight"`
	ImageThreshold    float64  `mapstructure:"image_threshold"`

	// CategoryKeywords drives the category hint derived from raw query
	// text and handed to the corpus store as a pre-filter preference.
	CategoryKeywords map[string][]string `mapstructure:"category_keywords"`
}

type IntentConfig struct {
	VisualCues        []string `mapstructure:"visual_cues"`
	ProjectPhrases    []string `mapstructure:"project_phrases"`
	ProjectCues       []string `mapstructure:"project_cues"`
	TimesheetPhrases  []string `mapstructure:"timesheet_phrases"`
	MobilePhrases     []string `mapstructure:"mobile_phrases"`
	NavigationPhrases []string `mapstructure:"navigation_phrases"`
}

type ContextConfig struct {
	MaxDocuments int `mapstructure:"max_documents"`
	MaxImages    int `mapstructure:"max_images"`
	SnippetChars int `mapstructure:"snippet_chars"`
}

type AssessorConfig struct {
	BaseConfidence      float64  `mapstructure:"base_confidence"`
	DocBonus            float64  `mapstructure:"doc_bonus"`
	MultiDocBonus       float64  `mapstructure:"multi_doc_bonus"`
	ImageBonus          float64  `mapstructure:"image_bonus"`
	ActionableBonus     float64  `mapstructure:"actionable_bonus"`
	HedgePenalty        float64  `mapstructure:"hedge_penalty"`
	HedgePhrases        []string `mapstructure:"hedge_phrases"`
	ActionablePhrases   []string `mapstructure:"actionable_phrases"`
	CannotHelpPhrases   []string `mapstructure:"cannot_help_phrases"`
	EscalationThreshold float64  `mapstructure:"escalation_threshold"`
	MaxSuggestedActions int      `mapstructure:"max_suggested_actions"`

	// Fallback-path confidence is computed from document-match
	// strength alone.
	FallbackBaseConfidence float64 `mapstructure:"fallback_base_confidence"`
	FallbackDocBonus       float64 `mapstructure:"fallback_doc_bonus"`
	FallbackMaxConfidence  float64 `mapstructure:"fallback_max_confidence"`
}

// DefaultScorerConfig returns the tuned production weights.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		StopWords: []string{
			"how", "do", "i", "can", "the", "is", "in", "to",
			"and", "or", "but", "for", "with", "my", "a", "an",
			"on", "of", "what", "where",
		},
		MinTermLength:      3,
		QueryInTitleWeight: 10,
		TitleTermWeight:    3,
		KeywordTermWeight:  2,
		BodyTermWeight:     1,
		FuzzyWeight:        0.5,
		FuzzyPrefixLength:  4,
		CategoryBonus:      2,
		ModuleBonus:        2,
		LongBodyChars:      5000,
		LongBodyDamping:    0.9,
		DocumentThreshold:  1,
		IntentMatchWeight:  10,
		CaptionTermWeight:  2,
		AltTextTermWeight:  1.5,
		ImageModuleBonus:   2,
		PenaltyTerms:       []string{"login", "password", "email", "formula", "authentication"},
		PenaltyWeight:      15,
		ImageThreshold:     5,
		CategoryKeywords: map[string][]string{
			types.CategoryTimesheet:         {"timesheet", "time entry", "submit time", "hours", "clock in", "clock out"},
			types.CategoryProjectManagement: {"project", "task", "milestone", "deadline", "project setup"},
			types.CategoryBilling:           {"billing", "invoice", "rates", "cost", "expense", "charge"},
			types.CategoryCompliance:        {"compliance", "overtime", "labor law", "regulation", "policy"},
			types.CategoryWorkforce:         {"schedule", "shift", "employee", "workforce", "attendance"},
			types.CategoryIntegration:       {"integration", "api", "sync", "import", "export", "connect"},
			types.CategoryReporting:         {"report", "analytics", "dashboard", "metrics", "data"},
			types.CategoryMobile:            {"mobile", "app", "phone", "ios", "android"},
			types.CategoryTroubleshooting:   {"error", "issue", "problem", "fix", "not working", "broken"},
		},
	}
}

func DefaultIntentConfig() IntentConfig {
	return IntentConfig{
		VisualCues:        []string{"visual", "guide", "show", "screenshot", "step by step", "how to", "tutorial"},
		ProjectPhrases:    []string{"project", "create project", "new project", "project setup", "set up project"},
		ProjectCues:       []string{"setup", "set up", "create", "new"},
		TimesheetPhrases:  []string{"timesheet", "submit timesheet", "time entry", "enter time", "fill timesheet"},
		MobilePhrases:     []string{"mobile", "app", "phone", "android", "ios"},
		NavigationPhrases: []string{"navigate", "find", "where is", "access", "menu", "button"},
	}
}

func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		MaxDocuments: 3,
		MaxImages:    2,
		SnippetChars: 1000,
	}
}

func DefaultAssessorConfig() AssessorConfig {
	return AssessorConfig{
		BaseConfidence:      0.6,
		DocBonus:            0.2,
		MultiDocBonus:       0.1,
		ImageBonus:          0.1,
		ActionableBonus:     0.1,
		HedgePenalty:        0.1,
		HedgePhrases:        []string{"not sure", "might be", "unclear", "i don't know"},
		ActionablePhrases:   []string{"click", "navigate", "go to", "select", "enter"},
		CannotHelpPhrases:   []string{"contact support", "speak with", "technical issue", "system administrator", "i cannot help"},
		EscalationThreshold: 0.5,
		MaxSuggestedActions: 5,

		FallbackBaseConfidence: 0.4,
		FallbackDocBonus:       0.1,
		FallbackMaxConfidence:  0.7,
	}
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Scorer:   DefaultScorerConfig(),
		Intent:   DefaultIntentConfig(),
		Context:  DefaultContextConfig(),
		Assessor: DefaultAssessorConfig(),
	}
}

// LoadConfig reads the yaml config file, overlays environment
// variables, and fills any pipeline tunables left unset with defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("ai.OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("corpus.MONGODB_URI", "MONGODB_URI")
	v.BindEnv("corpus.weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if keys := os.Getenv("GEMINI_API_KEYS"); keys != "" {
		cfg.AI.GeminiAPIKeys = strings.Split(keys, ",")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Corpus.Driver == "" {
		c.Corpus.Driver = CorpusDriverMongo
	}
	if c.Corpus.MongoDatabase == "" {
		c.Corpus.MongoDatabase = "timewise_support"
	}
	if c.Corpus.CandidateLimit <= 0 {
		c.Corpus.CandidateLimit = 20
	}
	if c.AI.Provider == "" {
		c.AI.Provider = AIProviderOpenAI
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.AI.MaxRetries < 0 {
		c.AI.MaxRetries = 0
	}
	if c.AI.MaxRetries > 1 {
		c.AI.MaxRetries = 1
	}

	def := DefaultPipelineConfig()
	if len(c.Pipeline.Scorer.StopWords) == 0 {
		c.Pipeline.Scorer = def.Scorer
	}
	if len(c.Pipeline.Intent.VisualCues) == 0 {
		c.Pipeline.Intent = def.Intent
	}
	if c.Pipeline.Context.MaxDocuments <= 0 {
		c.Pipeline.Context = def.Context
	}
	if c.Pipeline.Assessor.EscalationThreshold <= 0 {
		c.Pipeline.Assessor = def.Assessor
	}
}
