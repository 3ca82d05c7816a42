package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/database"
	"github.com/timewise-app/support-be/types"
	"github.com/timewise-app/support-be/utils"
)

const outOfScopeTemplate = `I don't have specific information about %q in the Timewise documentation I have access to.

**What I can help with:**
- Timesheet submission and management
- Project setup and tracking
- Billing and invoicing processes
- Mobile app usage
- Time-off requests and approvals
- Reporting and analytics
- User management and permissions

Could you rephrase your question to focus on one of these Timewise features, or let me know if you're looking for help with a specific Timewise process?`

// Category-specific step outlines used on the fallback path when the
// generator is unreachable.
var fallbackCategoryBodies = map[string]string{
	types.CategoryTimesheet: `**Timesheet Management:**

1. **Navigate to Timesheets** - Access the Timesheets section from your main Timewise menu
2. **Enter Time** - Fill in your hours for each project and day
3. **Review Entries** - Ensure all required fields are completed
4. **Submit** - Click Submit for Approval when ready`,
	types.CategoryProjectManagement: `**Project Management:**

1. **Access Projects** - Navigate to the Projects section from your main menu
2. **Create New Project** - Look for the 'New Project' or 'Create Project' button
3. **Enter Details** - Fill in project name, code, and basic information
4. **Set Up Team** - Assign team members and their roles
5. **Configure Settings** - Set up billing, time tracking, and approval workflows`,
	types.CategoryMobile: `**Mobile App Usage:**

1. **Download** - Get the Timewise app from your device's app store
2. **Login** - Use your standard Timewise credentials
3. **Navigate** - Access timesheets, projects, and time-off features
4. **Sync** - Ensure data syncs with the web version`,
}

// SupportService runs the full query pipeline: retrieval, scoring,
// intent gating, context assembly, generation, assessment, and final
// response assembly.
type SupportService struct {
	corpus   database.CorpusStore
	ai       AIService
	scorer   *RelevanceScorer
	intents  *IntentClassifier
	builder  *ContextBuilder
	assessor *ResponseAssessor

	candidateLimit int
	genTimeout     time.Duration
	genRetries     int
	snippetChars   int
}

func NewSupportService(corpus database.CorpusStore, ai AIService, cfg *config.Config) *SupportService {
	return &SupportService{
		corpus:         corpus,
		ai:             ai,
		scorer:         NewRelevanceScorer(cfg.Pipeline.Scorer),
		intents:        NewIntentClassifier(cfg.Pipeline.Intent),
		builder:        NewContextBuilder(cfg.Pipeline.Context),
		assessor:       NewResponseAssessor(cfg.Pipeline.Assessor),
		candidateLimit: cfg.Corpus.CandidateLimit,
		genTimeout:     cfg.AI.Timeout(),
		genRetries:     cfg.AI.MaxRetries,
		snippetChars:   cfg.Pipeline.Context.SnippetChars,
	}
}

// HandleQuery is the single synchronous entry point. It always returns
// a valid SupportResponse for well-typed input; the only hard error is
// an unavailable corpus store.
func (s *SupportService) HandleQuery(ctx context.Context, query types.SupportQuery) (*types.SupportResponse, error) {
	query.Text = strings.TrimSpace(query.Text)
	if query.Text == "" {
		return s.outOfScopeResponse(query), nil
	}

	categoryHint := s.scorer.CategoryHint(query.Text)

	// Intent classification and document retrieval have no data
	// dependency on each other.
	var (
		intent     types.IntentResult
		scoredDocs []types.ScoredDocument
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		intent = s.intents.Classify(query.Text)
		return nil
	})
	g.Go(func() error {
		docs, err := s.corpus.SearchDocuments(gctx, query.Text, categoryHint, query.ModuleHint, s.candidateLimit)
		if err != nil {
			return fmt.Errorf("document retrieval: %w", err)
		}
		scoredDocs = s.scorer.ScoreDocuments(query, categoryHint, docs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(scoredDocs) == 0 {
		return s.outOfScopeResponse(query), nil
	}

	// Image retrieval is gated on detected visual intent and on having
	// found at least one relevant document.
	var scoredImages []types.ScoredImage
	if intent.Category != types.IntentNone {
		images, err := s.corpus.SearchImages(ctx, intent.Category, query.ModuleHint, s.candidateLimit)
		if err != nil {
			// A usable answer can still be built from documents, so a
			// failing image lookup degrades instead of propagating.
			log.Printf("image retrieval failed, continuing without images: %v", err)
		} else {
			scoredImages = s.scorer.ScoreImages(query, intent.Category, images)
		}
	}

	gc := s.builder.Build(query, intent, scoredDocs, scoredImages)

	answer, err := s.generate(ctx, gc)
	if err != nil {
		log.Printf("generation failed, taking fallback path: %v", err)
		return s.fallbackResponse(query, gc), nil
	}

	if gc.HasImages() {
		answer = enrichWithImages(answer, len(gc.Images))
	}

	assessment := s.assessor.Assess(answer, true, gc.Documents, gc.HasImages())
	return assemble(answer, assessment, gc), nil
}

// generate performs the bounded generation call, retrying at most the
// configured number of times.
func (s *SupportService) generate(ctx context.Context, gc types.GroundingContext) (string, error) {
	systemPrompt := s.builder.SystemPrompt(gc)
	userPrompt := s.builder.UserPrompt(gc)

	attempts := 1 + s.genRetries
	var lastErr error
	for i := 0; i < attempts; i++ {
		genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
		answer, err := s.ai.Generate(genCtx, systemPrompt, userPrompt)
		cancel()
		if err == nil {
			return answer, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// SearchDocuments is direct scored retrieval without generation, used
// by the search endpoint.
func (s *SupportService) SearchDocuments(ctx context.Context, text, categoryHint, moduleHint string, limit int) ([]types.ScoredDocument, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if categoryHint == "" {
		categoryHint = s.scorer.CategoryHint(text)
	}
	docs, err := s.corpus.SearchDocuments(ctx, text, categoryHint, moduleHint, s.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("document retrieval: %w", err)
	}
	scored := s.scorer.ScoreDocuments(types.SupportQuery{Text: text, ModuleHint: moduleHint}, categoryHint, docs)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Stats exposes corpus counts for operational visibility. It has no
// coupling to query handling.
func (s *SupportService) Stats(ctx context.Context) (*types.CorpusStats, error) {
	return s.corpus.Stats(ctx)
}

// Health reports collaborator status for the health endpoint.
func (s *SupportService) Health(ctx context.Context) types.HealthResponse {
	_, err := s.corpus.Stats(ctx)
	return types.HealthResponse{
		Status:              "healthy",
		CorpusConnected:     err == nil,
		GeneratorConfigured: s.ai != nil,
	}
}

// outOfScopeResponse is the terminal path for queries with no relevant
// documentation. The generator is never invoked here.
func (s *SupportService) outOfScopeResponse(query types.SupportQuery) *types.SupportResponse {
	return &types.SupportResponse{
		AnswerText:        fmt.Sprintf(outOfScopeTemplate, query.Text),
		Confidence:        0,
		NeedsEscalation:   true,
		SuggestedActions:  []string{},
		RelevantDocuments: []types.DocumentRef{},
		RelevantImages:    []types.ImageRef{},
	}
}

// fallbackResponse builds an answer directly from the retrieved
// documents when generation is unavailable.
func (s *SupportService) fallbackResponse(query types.SupportQuery, gc types.GroundingContext) *types.SupportResponse {
	top := gc.Documents[0]

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n", query.Text)
	sb.WriteString("Based on Timewise documentation:\n\n")
	fmt.Fprintf(&sb, "**%s**\n%s", top.Item.Title, utils.Truncate(top.Item.Body, s.snippetChars))
	if body, ok := fallbackCategoryBodies[top.Item.Category]; ok {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}

	answer := sb.String()
	assessment := s.assessor.Assess(answer, false, gc.Documents, gc.HasImages())
	return assemble(answer, assessment, gc)
}

func enrichWithImages(answer string, imageCount int) string {
	if imageCount == 1 {
		return answer + "\n\n**Screenshot Available**\nA relevant screenshot from Timewise is shown below."
	}
	return answer + "\n\n**Screenshots Available**\nRelevant screenshots from Timewise are shown below to help illustrate this process."
}

// assemble merges the context and assessment into the final response.
func assemble(answer string, assessment Assessment, gc types.GroundingContext) *types.SupportResponse {
	docRefs := make([]types.DocumentRef, 0, len(gc.Documents))
	for _, doc := range gc.Documents {
		docRefs = append(docRefs, types.DocumentRef{
			ID:       doc.Item.ID,
			Title:    doc.Item.Title,
			URL:      doc.Item.URL,
			Category: doc.Item.Category,
			Score:    doc.Score,
		})
	}
	imageRefs := make([]types.ImageRef, 0, len(gc.Images))
	for _, img := range gc.Images {
		imageRefs = append(imageRefs, types.ImageRef{
			ID:        img.Item.ID,
			Caption:   img.Item.Caption,
			Intent:    img.Item.Intent,
			LocalPath: img.Item.LocalPath,
			Score:     img.Score,
		})
	}

	actions := assessment.SuggestedActions
	if actions == nil {
		actions = []string{}
	}
	return &types.SupportResponse{
		AnswerText:        answer,
		Confidence:        assessment.Confidence,
		NeedsEscalation:   assessment.NeedsEscalation,
		SuggestedActions:  actions,
		RelevantDocuments: docRefs,
		RelevantImages:    imageRefs,
	}
}
