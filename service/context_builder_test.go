package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
)

func scoredDoc(id, title, body string) types.ScoredDocument {
	return types.ScoredDocument{Item: types.Document{ID: id, Title: title, Body: body}, Score: 5}
}

func TestBuildCapsDocumentsAndImages(t *testing.T) {
	builder := NewContextBuilder(config.DefaultContextConfig())

	docs := []types.ScoredDocument{
		scoredDoc("1", "First", ""), scoredDoc("2", "Second", ""),
		scoredDoc("3", "Third", ""), scoredDoc("4", "Fourth", ""),
	}
	images := []types.ScoredImage{
		{Item: types.ImageAsset{ID: "a"}}, {Item: types.ImageAsset{ID: "b"}}, {Item: types.ImageAsset{ID: "c"}},
	}

	gc := builder.Build(types.SupportQuery{Text: "q"}, types.IntentResult{}, docs, images)
	require.Len(t, gc.Documents, 3)
	require.Len(t, gc.Images, 2)
	// Ranking order survives the cut.
	assert.Equal(t, "1", gc.Documents[0].Item.ID)
	assert.Equal(t, "3", gc.Documents[2].Item.ID)
	assert.Equal(t, "a", gc.Images[0].Item.ID)
}

func TestSystemPromptRoleAndImages(t *testing.T) {
	builder := NewContextBuilder(config.DefaultContextConfig())

	plain := builder.SystemPrompt(types.GroundingContext{
		Query: types.SupportQuery{Role: "unknown-role"},
	})
	assert.NotContains(t, plain, "User Context")
	assert.NotContains(t, plain, "Visual guides")

	withExtras := builder.SystemPrompt(types.GroundingContext{
		Query:  types.SupportQuery{Role: types.RoleManager},
		Images: []types.ScoredImage{{Item: types.ImageAsset{ID: "a"}}},
	})
	assert.Contains(t, withExtras, "timesheet approvals")
	assert.Contains(t, withExtras, "Visual guides are available")
}

func TestUserPromptSerializesDocuments(t *testing.T) {
	builder := NewContextBuilder(config.ContextConfig{MaxDocuments: 3, MaxImages: 2, SnippetChars: 20})

	gc := types.GroundingContext{
		Query: types.SupportQuery{Text: "how do I submit my timesheet"},
		Documents: []types.ScoredDocument{
			scoredDoc("1", "Submit Timesheet", strings.Repeat("body ", 20)),
		},
	}
	prompt := builder.UserPrompt(gc)
	assert.Contains(t, prompt, "User Question: how do I submit my timesheet")
	assert.Contains(t, prompt, "User Role: Not specified")
	assert.Contains(t, prompt, "=== Document 1: Submit Timesheet ===")
	// Body is clipped to the snippet limit.
	assert.Contains(t, prompt, "body body body body ...")
	assert.NotContains(t, prompt, strings.Repeat("body ", 20))
}

func TestUserPromptNoDocuments(t *testing.T) {
	builder := NewContextBuilder(config.DefaultContextConfig())

	prompt := builder.UserPrompt(types.GroundingContext{Query: types.SupportQuery{Text: "q"}})
	assert.Contains(t, prompt, "No relevant documentation found.")
}
