package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/database"
	"github.com/timewise-app/support-be/types"
)

type mockCorpus struct {
	docs     []types.Document
	images   []types.ImageAsset
	docErr   error
	imageErr error

	docCalls   int
	imageCalls int
	lastIntent types.IntentCategory
}

func (m *mockCorpus) SearchDocuments(ctx context.Context, text, categoryHint, moduleHint string, limit int) ([]types.Document, error) {
	m.docCalls++
	if m.docErr != nil {
		return nil, m.docErr
	}
	return m.docs, nil
}

func (m *mockCorpus) SearchImages(ctx context.Context, intent types.IntentCategory, moduleHint string, limit int) ([]types.ImageAsset, error) {
	m.imageCalls++
	m.lastIntent = intent
	if m.imageErr != nil {
		return nil, m.imageErr
	}
	return m.images, nil
}

func (m *mockCorpus) Stats(ctx context.Context) (*types.CorpusStats, error) {
	return &types.CorpusStats{DocumentCount: int64(len(m.docs)), ImageCount: int64(len(m.images))}, nil
}

func (m *mockCorpus) InsertDocuments(ctx context.Context, docs []types.Document) error { return nil }

func (m *mockCorpus) InsertImages(ctx context.Context, images []types.ImageAsset) error { return nil }

func (m *mockCorpus) Close(ctx context.Context) error { return nil }

type mockAI struct {
	answer string
	err    error
	calls  int
}

func (m *mockAI) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func newTestService(corpus *mockCorpus, ai *mockAI) *SupportService {
	cfg := &config.Config{
		Corpus:   config.CorpusConfig{CandidateLimit: 20},
		AI:       config.AIConfig{TimeoutSeconds: 5, MaxRetries: 1},
		Pipeline: config.DefaultPipelineConfig(),
	}
	return NewSupportService(corpus, ai, cfg)
}

func timesheetDoc() types.Document {
	return types.Document{
		ID:       "d1",
		Title:    "Submit Your Timesheet",
		Body:     "Navigate to Timesheets, enter your hours, and click Submit.",
		URL:      "https://docs.timewise.example/timesheets/submit",
		Category: types.CategoryTimesheet,
		Keywords: []string{"timesheet", "submit"},
	}
}

func TestHandleQueryOutOfScope(t *testing.T) {
	corpus := &mockCorpus{}
	ai := &mockAI{answer: "should never be used"}
	svc := newTestService(corpus, ai)

	resp, err := svc.HandleQuery(context.Background(), types.SupportQuery{Text: "quantum entanglement basics"})
	require.NoError(t, err)
	assert.Zero(t, resp.Confidence)
	assert.True(t, resp.NeedsEscalation)
	assert.Empty(t, resp.RelevantDocuments)
	assert.Empty(t, resp.RelevantImages)
	assert.Empty(t, resp.SuggestedActions)
	assert.Contains(t, resp.AnswerText, "quantum entanglement basics")
	assert.Zero(t, ai.calls)
}

func TestHandleQueryEmptyText(t *testing.T) {
	corpus := &mockCorpus{docs: []types.Document{timesheetDoc()}}
	ai := &mockAI{answer: "unused"}
	svc := newTestService(corpus, ai)

	resp, err := svc.HandleQuery(context.Background(), types.SupportQuery{Text: "   "})
	require.NoError(t, err)
	assert.Zero(t, resp.Confidence)
	assert.True(t, resp.NeedsEscalation)
	assert.Zero(t, corpus.docCalls)
	assert.Zero(t, ai.calls)
}

func TestHandleQueryCorpusErrorPropagates(t *testing.T) {
	corpus := &mockCorpus{
		docErr: fmt.Errorf("%w: dial tcp: connection refused", database.ErrCorpusUnavailable),
	}
	svc := newTestService(corpus, &mockAI{})

	_, err := svc.HandleQuery(context.Background(), types.SupportQuery{Text: "submit timesheet"})
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrCorpusUnavailable)
}

func TestHandleQueryNoIntentSkipsImages(t *testing.T) {
	corpus := &mockCorpus{
		docs:   []types.Document{{ID: "d1", Title: "Overtime Policy", Body: "Overtime requires manager approval.", Category: types.CategoryCompliance}},
		images: []types.ImageAsset{{ID: "i1", Intent: string(types.IntentGeneralVisual)}},
	}
	ai := &mockAI{answer: "Overtime requires approval by your manager."}
	svc := newTestService(corpus, ai)

	resp, err := svc.HandleQuery(context.Background(), types.SupportQuery{Text: "overtime policy rules"})
	require.NoError(t, err)
	assert.Zero(t, corpus.imageCalls)
	assert.Empty(t, resp.RelevantImages)
	assert.NotContains(t, resp.AnswerText, "Screenshot")
}

func TestHandleQueryFullPipeline(t *testing.T) {
	corpus := &mockCorpus{
		docs: []types.Document{timesheetDoc()},
		images: []types.ImageAsset{{
			ID:        "i1",
			Caption:   "Mobile timesheet entry screen",
			Intent:    string(types.IntentMobile),
			LocalPath: "images/mobile-timesheet.png",
		}},
	}
	ai := &mockAI{answer: "Open the Timewise app, navigate to Timesheets, and click Submit."}
	svc := newTestService(corpus, ai)

	resp, err := svc.HandleQuery(context.Background(), types.SupportQuery{Text: "how do I submit my timesheet on mobile"})
	require.NoError(t, err)

	// A device-specific question fetches mobile screenshots.
	assert.Equal(t, types.IntentMobile, corpus.lastIntent)
	require.Len(t, resp.RelevantImages, 1)
	assert.Equal(t, "i1", resp.RelevantImages[0].ID)
	assert.Contains(t, resp.AnswerText, ai.answer)
	assert.Contains(t, resp.AnswerText, "Screenshot Available")

	require.Len(t, resp.RelevantDocuments, 1)
	assert.Equal(t, "d1", resp.RelevantDocuments[0].ID)
	assert.Greater(t, resp.RelevantDocuments[0].Score, 0.0)

	assert.False(t, resp.NeedsEscalation)
	assert.GreaterOrEqual(t, resp.Confidence, 0.5)
	assert.Equal(t, 1, ai.calls)
}

func TestHandleQueryFallbackPath(t *testing.T) {
	corpus := &mockCorpus{docs: []types.Document{timesheetDoc()}}
	ai := &mockAI{err: errors.New("provider timeout")}
	svc := newTestService(corpus, ai)

	resp, err := svc.HandleQuery(context.Background(), types.SupportQuery{Text: "how do I submit my timesheet"})
	require.NoError(t, err)

	// One retry, then the documentation-derived answer.
	assert.Equal(t, 2, ai.calls)
	assert.Contains(t, resp.AnswerText, "Submit Your Timesheet")
	assert.True(t, resp.NeedsEscalation)
	assert.InDelta(t, 0.5, resp.Confidence, 0.001)
	require.NotEmpty(t, resp.RelevantDocuments)
}

func TestHandleQueryImageErrorDegrades(t *testing.T) {
	corpus := &mockCorpus{
		docs:     []types.Document{timesheetDoc()},
		imageErr: fmt.Errorf("%w: timeout", database.ErrCorpusUnavailable),
	}
	ai := &mockAI{answer: "Navigate to Timesheets and click Submit."}
	svc := newTestService(corpus, ai)

	resp, err := svc.HandleQuery(context.Background(), types.SupportQuery{Text: "show me how to submit my timesheet"})
	require.NoError(t, err)
	assert.Equal(t, 1, corpus.imageCalls)
	assert.Empty(t, resp.RelevantImages)
	assert.NotContains(t, resp.AnswerText, "Screenshot")
}

func TestHandleQueryIdempotent(t *testing.T) {
	corpus := &mockCorpus{docs: []types.Document{timesheetDoc()}}
	ai := &mockAI{answer: "Navigate to Timesheets and click Submit."}
	svc := newTestService(corpus, ai)

	query := types.SupportQuery{Text: "how do I submit my timesheet"}
	first, err := svc.HandleQuery(context.Background(), query)
	require.NoError(t, err)
	second, err := svc.HandleQuery(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchDocumentsEmptyQuery(t *testing.T) {
	corpus := &mockCorpus{docs: []types.Document{timesheetDoc()}}
	svc := newTestService(corpus, &mockAI{})

	docs, err := svc.SearchDocuments(context.Background(), "  ", "", "", 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Zero(t, corpus.docCalls)
}

func TestSearchDocumentsLimits(t *testing.T) {
	docs := make([]types.Document, 0, 4)
	for i := 0; i < 4; i++ {
		doc := timesheetDoc()
		doc.ID = fmt.Sprintf("d%d", i)
		docs = append(docs, doc)
	}
	corpus := &mockCorpus{docs: docs}
	svc := newTestService(corpus, &mockAI{})

	scored, err := svc.SearchDocuments(context.Background(), "submit timesheet", "", "", 2)
	require.NoError(t, err)
	assert.Len(t, scored, 2)
}
