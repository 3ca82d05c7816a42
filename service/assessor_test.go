package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
)

func newTestAssessor() *ResponseAssessor {
	return NewResponseAssessor(config.DefaultAssessorConfig())
}

func timesheetDocs(n int) []types.ScoredDocument {
	docs := make([]types.ScoredDocument, n)
	for i := range docs {
		docs[i] = types.ScoredDocument{
			Item:  types.Document{ID: "doc", Category: types.CategoryTimesheet},
			Score: 5,
		}
	}
	return docs
}

func TestAssessGeneratedConfidence(t *testing.T) {
	assessor := newTestAssessor()

	answer := "Navigate to the Timesheets section and click Submit."
	// base 0.6 + doc 0.2 + multi 0.1 + actionable 0.1 = 1.0
	got := assessor.Assess(answer, true, timesheetDocs(2), false)
	assert.InDelta(t, 1.0, got.Confidence, 0.001)
	assert.False(t, got.NeedsEscalation)
}

func TestAssessHedgingLowersConfidence(t *testing.T) {
	assessor := newTestAssessor()

	confident := assessor.Assess("Click Submit to send your timesheet.", true, timesheetDocs(1), false)
	hedged := assessor.Assess("I'm not sure, it might be under Settings.", true, timesheetDocs(1), false)
	assert.Less(t, hedged.Confidence, confident.Confidence)
}

func TestAssessEscalation(t *testing.T) {
	assessor := newTestAssessor()

	t.Run("low confidence", func(t *testing.T) {
		// base 0.6 - two hedges 0.2 = 0.4, below the threshold.
		got := assessor.Assess("I'm not sure, it might be there.", true, nil, false)
		assert.True(t, got.NeedsEscalation)
	})
	t.Run("fallback path always escalates", func(t *testing.T) {
		got := assessor.Assess("Templated answer with steps.", false, timesheetDocs(3), false)
		assert.True(t, got.NeedsEscalation)
	})
	t.Run("zero documents always escalate", func(t *testing.T) {
		got := assessor.Assess("Navigate to the dashboard and click around.", true, nil, true)
		assert.True(t, got.NeedsEscalation)
	})
	t.Run("cannot-help phrase always escalates", func(t *testing.T) {
		answer := "Please contact support for this one. Click nothing."
		got := assessor.Assess(answer, true, timesheetDocs(2), true)
		assert.True(t, got.NeedsEscalation)
		assert.GreaterOrEqual(t, got.Confidence, 0.5)
	})
}

func TestFallbackConfidenceCapped(t *testing.T) {
	assessor := newTestAssessor()

	assert.InDelta(t, 0.5, assessor.FallbackConfidence(timesheetDocs(1)), 0.001)
	assert.InDelta(t, 0.7, assessor.FallbackConfidence(timesheetDocs(3)), 0.001)
	// More documents never push past the cap.
	assert.InDelta(t, 0.7, assessor.FallbackConfidence(timesheetDocs(10)), 0.001)
}

func TestSuggestedActionsFromNumberedSteps(t *testing.T) {
	assessor := newTestAssessor()

	answer := "Do this:\n1. **Open Timesheets** - from the main menu\n2. Enter your hours\n3. Click Submit"
	got := assessor.Assess(answer, true, nil, false)
	require.GreaterOrEqual(t, len(got.SuggestedActions), 3)
	assert.Equal(t, "Open Timesheets", got.SuggestedActions[0])
	assert.Equal(t, "Enter your hours", got.SuggestedActions[1])
}

func TestSuggestedActionsFromActionPhrases(t *testing.T) {
	assessor := newTestAssessor()

	answer := "Navigate to the Projects page, then click the New Project button"
	got := assessor.Assess(answer, true, nil, false)
	require.NotEmpty(t, got.SuggestedActions)
	assert.Contains(t, got.SuggestedActions[0], "Go to: ")
}

func TestSuggestedActionsCategoryStepsAndDedupe(t *testing.T) {
	assessor := newTestAssessor()

	got := assessor.Assess("Plain answer.", true, timesheetDocs(3), false)
	// Three timesheet documents contribute one deduplicated canned step.
	assert.Equal(t, []string{"Review your timesheet entries before submitting"}, got.SuggestedActions)
}

func TestSuggestedActionsCapped(t *testing.T) {
	assessor := newTestAssessor()

	answer := "1. one\n2. two\n3. three\n4. four\n5. five\n6. six\n7. seven"
	got := assessor.Assess(answer, true, nil, false)
	assert.Len(t, got.SuggestedActions, 5)
}
