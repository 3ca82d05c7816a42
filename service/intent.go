package service

import (
	"strings"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
	"github.com/timewise-app/support-be/utils"
)

// IntentClassifier maps query text to a visual-intent category. It is
// a priority-ordered list of (predicate, category) rules; the first
// matching rule wins and an unmatched query is IntentNone, which gates
// image retrieval off entirely. Classification is total: every input
// gets a category, never an error.
type IntentClassifier struct {
	cfg   config.IntentConfig
	rules []intentRule
}

type intentRule struct {
	category types.IntentCategory
	matches  func(q queryText) bool
}

// queryText precomputes the lowered text and the visual-cue flag so
// each rule stays a cheap predicate.
type queryText struct {
	lower     string
	visualCue bool
}

func (q queryText) hasPhrase(phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(phrase, " ") {
			if strings.Contains(q.lower, phrase) {
				return true
			}
		} else if utils.ContainsToken(q.lower, phrase) {
			// Single-word triggers match whole tokens only; plain
			// substring matching would let "app" hit "happy".
			return true
		}
	}
	return false
}

func (q queryText) countPhrases(phrases []string) int {
	n := 0
	for _, phrase := range phrases {
		if strings.Contains(phrase, " ") {
			if strings.Contains(q.lower, phrase) {
				n++
			}
		} else if utils.ContainsToken(q.lower, phrase) {
			n++
		}
	}
	return n
}

func NewIntentClassifier(cfg config.IntentConfig) *IntentClassifier {
	// Device-specific rules outrank task-specific ones: a timesheet
	// question asked about the mobile app should surface mobile
	// screenshots, not generic timesheet ones.
	rules := []intentRule{
		{
			category: types.IntentProjectSetup,
			matches: func(q queryText) bool {
				return q.hasPhrase(cfg.ProjectPhrases) &&
					(q.visualCue || q.hasPhrase(cfg.ProjectCues))
			},
		},
		{
			category: types.IntentMobile,
			matches:  func(q queryText) bool { return q.hasPhrase(cfg.MobilePhrases) },
		},
		{
			category: types.IntentTimesheet,
			matches:  func(q queryText) bool { return q.hasPhrase(cfg.TimesheetPhrases) },
		},
		{
			category: types.IntentNavigation,
			matches:  func(q queryText) bool { return q.hasPhrase(cfg.NavigationPhrases) },
		},
		{
			category: types.IntentGeneralVisual,
			matches:  func(q queryText) bool { return q.visualCue },
		},
	}
	return &IntentClassifier{cfg: cfg, rules: rules}
}

// Classify returns the first matching category in priority order, or
// IntentNone when no rule fires.
func (c *IntentClassifier) Classify(text string) types.IntentResult {
	q := queryText{lower: strings.ToLower(text)}
	q.visualCue = q.hasPhrase(c.cfg.VisualCues)

	for _, rule := range c.rules {
		if rule.matches(q) {
			return types.IntentResult{
				Category:   rule.category,
				Confidence: c.confidence(q, rule.category),
			}
		}
	}
	return types.IntentResult{Category: types.IntentNone, Confidence: 0}
}

// confidence grows with the number of trigger phrases the query hit.
func (c *IntentClassifier) confidence(q queryText, category types.IntentCategory) float64 {
	var hits int
	switch category {
	case types.IntentProjectSetup:
		hits = q.countPhrases(c.cfg.ProjectPhrases)
	case types.IntentMobile:
		hits = q.countPhrases(c.cfg.MobilePhrases)
	case types.IntentTimesheet:
		hits = q.countPhrases(c.cfg.TimesheetPhrases)
	case types.IntentNavigation:
		hits = q.countPhrases(c.cfg.NavigationPhrases)
	case types.IntentGeneralVisual:
		hits = q.countPhrases(c.cfg.VisualCues)
	}

	conf := 0.6 + 0.1*float64(hits-1)
	if conf < 0.6 {
		conf = 0.6
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}
