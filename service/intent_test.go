package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
)

func newTestClassifier() *IntentClassifier {
	return NewIntentClassifier(config.DefaultIntentConfig())
}

func TestClassifyIntents(t *testing.T) {
	classifier := newTestClassifier()

	tests := []struct {
		name  string
		query string
		want  types.IntentCategory
	}{
		{"project setup with cue", "how do I set up a new project", types.IntentProjectSetup},
		{"project setup with visual cue", "show me the project screen", types.IntentProjectSetup},
		{"timesheet", "submit my timesheet for last week", types.IntentTimesheet},
		{"mobile", "does the android version support time entry", types.IntentMobile},
		{"navigation", "where is the approvals menu", types.IntentNavigation},
		{"general visual", "can you give me a screenshot of the dashboard", types.IntentGeneralVisual},
		{"no intent", "what is the overtime policy", types.IntentNone},
		{"empty", "", types.IntentNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.query)
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

// A timesheet question asked about the mobile app surfaces mobile
// screenshots, not generic timesheet ones.
func TestClassifyMobileOutranksTimesheet(t *testing.T) {
	classifier := newTestClassifier()

	got := classifier.Classify("how do I submit my timesheet on mobile")
	assert.Equal(t, types.IntentMobile, got.Category)
}

func TestClassifyProjectNeedsSetupCue(t *testing.T) {
	classifier := newTestClassifier()

	// "project" alone without a setup or visual cue falls through to
	// lower-priority rules.
	got := classifier.Classify("what is the billing rate for this project")
	assert.NotEqual(t, types.IntentProjectSetup, got.Category)
}

func TestClassifyConfidence(t *testing.T) {
	classifier := newTestClassifier()

	single := classifier.Classify("open the mobile version")
	multi := classifier.Classify("open the mobile app on my phone")
	assert.InDelta(t, 0.6, single.Confidence, 0.001)
	assert.Greater(t, multi.Confidence, single.Confidence)
	assert.LessOrEqual(t, multi.Confidence, 1.0)

	none := classifier.Classify("what is the overtime policy")
	assert.Zero(t, none.Confidence)
}

func TestClassifyWholeTokenMatching(t *testing.T) {
	classifier := newTestClassifier()

	// "happy" must not trigger the mobile rule through "app".
	got := classifier.Classify("why are the managers happy with approvals")
	assert.NotEqual(t, types.IntentMobile, got.Category)
}
