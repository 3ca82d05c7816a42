package service

import (
	"sort"
	"strings"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
	"github.com/timewise-app/support-be/utils"
)

// RelevanceScorer ranks retrieved candidates against a query. It is
// pure: identical inputs always produce identical rankings, and corpus
// state is never touched.
type RelevanceScorer struct {
	cfg config.ScorerConfig
}

func NewRelevanceScorer(cfg config.ScorerConfig) *RelevanceScorer {
	return &RelevanceScorer{cfg: cfg}
}

// Terms extracts the scoring terms from raw query text.
func (s *RelevanceScorer) Terms(text string) []string {
	return utils.Tokenize(text, s.cfg.StopWords, s.cfg.MinTermLength)
}

// CategoryHint derives a likely document category from the query text.
// Returns the general category when nothing matches.
func (s *RelevanceScorer) CategoryHint(text string) string {
	lower := strings.ToLower(text)
	// Fixed iteration order keeps the hint deterministic when multiple
	// categories would match.
	candidates := []string{
		types.CategoryTimesheet,
		types.CategoryProjectManagement,
		types.CategoryBilling,
		types.CategoryCompliance,
		types.CategoryWorkforce,
		types.CategoryIntegration,
		types.CategoryReporting,
		types.CategoryMobile,
		types.CategoryTroubleshooting,
	}
	for _, category := range candidates {
		for _, keyword := range s.cfg.CategoryKeywords[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	return types.CategoryGeneral
}

// ScoreDocuments ranks candidate documents and drops everything below
// the document threshold. Ties keep candidate insertion order. Hint
// bonuses only apply once at least one query term matched, so a bare
// category match can never clear the threshold on its own.
func (s *RelevanceScorer) ScoreDocuments(query types.SupportQuery, categoryHint string, docs []types.Document) []types.ScoredDocument {
	terms := s.Terms(query.Text)
	queryLower := strings.ToLower(strings.TrimSpace(query.Text))

	var scored []types.ScoredDocument
	for _, doc := range docs {
		score, matched := s.scoreDocument(queryLower, terms, categoryHint, query.ModuleHint, doc)
		if score >= s.cfg.DocumentThreshold {
			scored = append(scored, types.ScoredDocument{
				Item:         doc,
				Score:        score,
				MatchedTerms: matched,
			})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func (s *RelevanceScorer) scoreDocument(queryLower string, terms []string, categoryHint, moduleHint string, doc types.Document) (float64, []string) {
	titleLower := strings.ToLower(doc.Title)
	bodyLower := strings.ToLower(doc.Body)
	keywordsLower := strings.ToLower(strings.Join(doc.Keywords, " "))

	var score float64
	var matched []string

	if queryLower != "" && strings.Contains(titleLower, queryLower) {
		score += s.cfg.QueryInTitleWeight
	}

	for _, term := range terms {
		hit := false
		if utils.ContainsToken(titleLower, term) {
			score += s.cfg.TitleTermWeight
			hit = true
		}
		if utils.ContainsToken(keywordsLower, term) {
			score += s.cfg.KeywordTermWeight
			hit = true
		}
		if utils.ContainsToken(bodyLower, term) {
			score += s.cfg.BodyTermWeight
			hit = true
		}
		if !hit && len(term) > s.cfg.FuzzyPrefixLength {
			// Partial overlap catches inflections: "submitting"
			// still reaches a document titled "Submit Timesheet".
			prefix := term[:s.cfg.FuzzyPrefixLength]
			if strings.Contains(titleLower, prefix) || strings.Contains(keywordsLower, prefix) {
				score += s.cfg.FuzzyWeight
				hit = true
			}
		}
		if hit {
			matched = append(matched, term)
		}
	}

	// Hints are tie-breakers among matching documents, never a way in
	// for documents with zero term overlap.
	if len(matched) > 0 {
		if categoryHint != "" && doc.Category == categoryHint {
			score += s.cfg.CategoryBonus
		}
		if moduleHint != "" && strings.EqualFold(doc.Module, moduleHint) {
			score += s.cfg.ModuleBonus
		}
	}

	if len(doc.Body) > s.cfg.LongBodyChars {
		score *= s.cfg.LongBodyDamping
	}
	return score, matched
}

// ScoreImages ranks candidate screenshots for a detected visual intent
// and drops everything below the image threshold.
func (s *RelevanceScorer) ScoreImages(query types.SupportQuery, intent types.IntentCategory, images []types.ImageAsset) []types.ScoredImage {
	terms := s.Terms(query.Text)

	var scored []types.ScoredImage
	for _, img := range images {
		score, matched := s.scoreImage(terms, intent, query.ModuleHint, img)
		if score >= s.cfg.ImageThreshold {
			scored = append(scored, types.ScoredImage{
				Item:         img,
				Score:        score,
				MatchedTerms: matched,
			})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func (s *RelevanceScorer) scoreImage(terms []string, intent types.IntentCategory, moduleHint string, img types.ImageAsset) (float64, []string) {
	captionLower := strings.ToLower(img.Caption)
	altLower := strings.ToLower(img.AltText)

	var score float64
	var matched []string

	if img.Intent == string(intent) {
		score += s.cfg.IntentMatchWeight
	}

	for _, term := range terms {
		hit := false
		if utils.ContainsToken(captionLower, term) {
			score += s.cfg.CaptionTermWeight
			hit = true
		}
		if utils.ContainsToken(altLower, term) {
			score += s.cfg.AltTextTermWeight
			hit = true
		}
		if hit {
			matched = append(matched, term)
		}
	}

	if moduleHint != "" && strings.EqualFold(img.Module, moduleHint) {
		score += s.cfg.ImageModuleBonus
	}

	// Screenshots of login/credential pages are never useful support
	// answers, whatever else they match.
	for _, penalty := range s.cfg.PenaltyTerms {
		if strings.Contains(captionLower, penalty) || strings.Contains(altLower, penalty) {
			score -= s.cfg.PenaltyWeight
		}
	}

	if score < 0 {
		score = 0
	}
	return score, matched
}
