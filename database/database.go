package database

import (
	"context"
	"errors"

	"github.com/timewise-app/support-be/types"
)

// ErrCorpusUnavailable marks infrastructure failures of the corpus
// store. It is the only pipeline condition that propagates to the
// caller as a hard error.
var ErrCorpusUnavailable = errors.New("corpus unavailable")

// CorpusStore is read-only candidate retrieval over the scraped corpus.
// Implementations may pre-filter however they like; the relevance
// scorer re-ranks and thresholds whatever comes back.
type CorpusStore interface {
	// SearchDocuments returns candidate documents for the query text.
	// Hints are preferences, not hard filters.
	SearchDocuments(ctx context.Context, text, categoryHint, moduleHint string, limit int) ([]types.Document, error)

	// SearchImages returns candidate screenshots tagged with the given
	// visual intent.
	SearchImages(ctx context.Context, intent types.IntentCategory, moduleHint string, limit int) ([]types.ImageAsset, error)

	// Stats reports corpus-level counts for operational visibility.
	Stats(ctx context.Context) (*types.CorpusStats, error)

	// InsertDocuments and InsertImages are used by the ingest command;
	// query processing never writes.
	InsertDocuments(ctx context.Context, docs []types.Document) error
	InsertImages(ctx context.Context, images []types.ImageAsset) error

	Close(ctx context.Context) error
}
