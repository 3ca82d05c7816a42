package service

import (
	"regexp"
	"strings"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
)

// Assessment is the post-hoc judgement over a generated (or fallback)
// answer.
type Assessment struct {
	Confidence       float64
	NeedsEscalation  bool
	SuggestedActions []string
}

// categoryNextSteps maps matched document categories to canned
// next-step suggestions appended after the ones extracted from the
// answer itself.
var categoryNextSteps = map[string]string{
	types.CategoryTimesheet:         "Review your timesheet entries before submitting",
	types.CategoryProjectManagement: "Check your project settings in Timewise",
	types.CategoryBilling:           "Verify billing rates with your administrator",
	types.CategoryMobile:            "Try the same steps in the Timewise mobile app",
	types.CategoryReporting:         "Open the Reports dashboard to confirm the data",
	types.CategoryTroubleshooting:   "Retry the operation after signing out and back in",
}

var (
	numberedStepRe = regexp.MustCompile(`(?m)^\s*\d+\.\s*(?:\*\*([^*]+)\*\*|(.+))`)
	actionPhraseRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)navigate to ([^\n.]+)`),
		regexp.MustCompile(`(?i)click (?:on )?([^\n.]+)`),
		regexp.MustCompile(`(?i)access ([^\n.]+)`),
	}
)

// ResponseAssessor computes confidence, the escalation flag, and
// suggested next actions. It never fails: absent inputs degrade scores
// instead of erroring.
type ResponseAssessor struct {
	cfg config.AssessorConfig
}

func NewResponseAssessor(cfg config.AssessorConfig) *ResponseAssessor {
	return &ResponseAssessor{cfg: cfg}
}

// Assess judges an answer produced by the generator. generated is false
// on the fallback path, where confidence comes from document-match
// strength alone.
func (a *ResponseAssessor) Assess(answer string, generated bool, docs []types.ScoredDocument, hasImages bool) Assessment {
	var confidence float64
	if generated {
		confidence = a.generatedConfidence(answer, docs, hasImages)
	} else {
		confidence = a.FallbackConfidence(docs)
	}

	needsEscalation := confidence < a.cfg.EscalationThreshold ||
		!generated ||
		len(docs) == 0 ||
		a.matchesCannotHelp(answer)

	return Assessment{
		Confidence:       confidence,
		NeedsEscalation:  needsEscalation,
		SuggestedActions: a.suggestedActions(answer, docs),
	}
}

func (a *ResponseAssessor) generatedConfidence(answer string, docs []types.ScoredDocument, hasImages bool) float64 {
	confidence := a.cfg.BaseConfidence
	if len(docs) > 0 {
		confidence += a.cfg.DocBonus
	}
	if len(docs) >= 2 {
		confidence += a.cfg.MultiDocBonus
	}
	if hasImages {
		confidence += a.cfg.ImageBonus
	}

	answerLower := strings.ToLower(answer)
	for _, hedge := range a.cfg.HedgePhrases {
		if strings.Contains(answerLower, hedge) {
			confidence -= a.cfg.HedgePenalty
		}
	}
	for _, phrase := range a.cfg.ActionablePhrases {
		if strings.Contains(answerLower, phrase) {
			confidence += a.cfg.ActionableBonus
			break
		}
	}
	return clamp01(confidence)
}

// FallbackConfidence rates a templated fallback answer purely on how
// strong document retrieval was.
func (a *ResponseAssessor) FallbackConfidence(docs []types.ScoredDocument) float64 {
	confidence := a.cfg.FallbackBaseConfidence + a.cfg.FallbackDocBonus*float64(len(docs))
	if confidence > a.cfg.FallbackMaxConfidence {
		confidence = a.cfg.FallbackMaxConfidence
	}
	return clamp01(confidence)
}

func (a *ResponseAssessor) matchesCannotHelp(answer string) bool {
	answerLower := strings.ToLower(answer)
	for _, phrase := range a.cfg.CannotHelpPhrases {
		if strings.Contains(answerLower, phrase) {
			return true
		}
	}
	return false
}

// suggestedActions extracts numbered steps from the answer, falls back
// to action phrases, then appends canned next steps for the matched
// document categories. Deduplicated, ordered, capped.
func (a *ResponseAssessor) suggestedActions(answer string, docs []types.ScoredDocument) []string {
	var actions []string

	for _, match := range numberedStepRe.FindAllStringSubmatch(answer, -1) {
		step := match[1]
		if step == "" {
			step = match[2]
		}
		if step = strings.TrimSpace(step); step != "" {
			actions = append(actions, truncateAction(step))
		}
	}

	if len(actions) == 0 {
		for _, re := range actionPhraseRe {
			for _, match := range re.FindAllStringSubmatch(answer, -1) {
				target := strings.TrimSpace(match[1])
				if target != "" && len(target) < 80 {
					actions = append(actions, "Go to: "+target)
				}
			}
		}
	}

	for _, doc := range docs {
		if step, ok := categoryNextSteps[doc.Item.Category]; ok {
			actions = append(actions, step)
		}
	}

	return dedupeActions(actions, a.cfg.MaxSuggestedActions)
}

func dedupeActions(actions []string, maxActions int) []string {
	seen := make(map[string]struct{}, len(actions))
	var out []string
	for _, action := range actions {
		key := strings.ToLower(action)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, action)
		if len(out) == maxActions {
			break
		}
	}
	return out
}

func truncateAction(s string) string {
	if len(s) > 100 {
		return s[:100]
	}
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
