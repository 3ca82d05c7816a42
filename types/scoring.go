package types

// Scored wraps a retrieved candidate with the relevance score and the
// query terms that produced it. Scores are only comparable within a
// single request.
type Scored[T any] struct {
	Item         T        `json:"item"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms"`
}

type (
	ScoredDocument = Scored[Document]
	ScoredImage    = Scored[ImageAsset]
)

// GroundingContext is the bounded set of retrieved material used to
// condition the generation call. Immutable once built.
type GroundingContext struct {
	Query     SupportQuery
	Intent    IntentResult
	Documents []ScoredDocument
	Images    []ScoredImage
}

// HasImages reports whether any screenshots were selected for the
// context.
func (g GroundingContext) HasImages() bool {
	return len(g.Images) > 0
}
