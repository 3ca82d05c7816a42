package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/timewise-app/support-be/types"
	"github.com/timewise-app/support-be/utils"
)

const insertBatchSize = 200

// Pre-filter term extraction only drops the words that would match
// nearly every document; real stop-word handling happens in the scorer.
var searchStopWords = []string{"the", "and", "for", "with", "how", "can", "you"}

// MongoCorpusStore is the default CorpusStore, backed by the documents
// and images collections the scraper populates.
type MongoCorpusStore struct {
	documents *mongo.Collection
	images    *mongo.Collection
	client    *mongo.Client
}

func NewMongoCorpusStore(client *mongo.Client, dbName string) *MongoCorpusStore {
	db := client.Database(dbName)
	return &MongoCorpusStore{
		documents: db.Collection("documents"),
		images:    db.Collection("images"),
		client:    client,
	}
}

func (s *MongoCorpusStore) SearchDocuments(ctx context.Context, text, categoryHint, moduleHint string, limit int) ([]types.Document, error) {
	terms := utils.Tokenize(text, searchStopWords, 3)
	if len(terms) == 0 {
		return nil, nil
	}

	ors := make([]bson.M, 0, len(terms)*3+2)
	for _, term := range terms {
		for _, field := range []string{"title", "body", "keywords"} {
			ors = append(ors, bson.M{field: bson.M{"$regex": term, "$options": "i"}})
		}
	}
	if categoryHint != "" {
		ors = append(ors, bson.M{"category": categoryHint})
	}
	if moduleHint != "" {
		ors = append(ors, bson.M{"module": moduleHint})
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "title", Value: 1}})
	cursor, err := s.documents.Find(ctx, bson.M{"$or": ors}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: document search: %v", ErrCorpusUnavailable, err)
	}
	defer cursor.Close(ctx)

	var docs []types.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decoding documents: %v", ErrCorpusUnavailable, err)
	}
	return docs, nil
}

func (s *MongoCorpusStore) SearchImages(ctx context.Context, intent types.IntentCategory, moduleHint string, limit int) ([]types.ImageAsset, error) {
	filter := bson.M{"intent": string(intent)}
	if moduleHint != "" {
		filter = bson.M{
			"intent": string(intent),
			"$or":    []bson.M{{"module": moduleHint}, {"module": ""}},
		}
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "caption", Value: 1}})
	cursor, err := s.images.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: image search: %v", ErrCorpusUnavailable, err)
	}
	defer cursor.Close(ctx)

	var images []types.ImageAsset
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("%w: decoding images: %v", ErrCorpusUnavailable, err)
	}
	return images, nil
}

func (s *MongoCorpusStore) Stats(ctx context.Context) (*types.CorpusStats, error) {
	docCount, err := s.documents.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: counting documents: %v", ErrCorpusUnavailable, err)
	}
	imageCount, err := s.images.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: counting images: %v", ErrCorpusUnavailable, err)
	}

	cursor, err := s.documents.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: category stats: %v", ErrCorpusUnavailable, err)
	}
	defer cursor.Close(ctx)

	distribution := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Category string `bson:"_id"`
			Count    int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("%w: decoding category stats: %v", ErrCorpusUnavailable, err)
		}
		distribution[row.Category] = row.Count
	}

	return &types.CorpusStats{
		DocumentCount:        docCount,
		ImageCount:           imageCount,
		CategoryDistribution: distribution,
	}, nil
}

func (s *MongoCorpusStore) InsertDocuments(ctx context.Context, docs []types.Document) error {
	for i := 0; i < len(docs); i += insertBatchSize {
		end := min(i+insertBatchSize, len(docs))
		batch := make([]interface{}, 0, end-i)
		for _, doc := range docs[i:end] {
			batch = append(batch, doc)
		}
		if _, err := s.documents.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert documents %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (s *MongoCorpusStore) InsertImages(ctx context.Context, images []types.ImageAsset) error {
	for i := 0; i < len(images); i += insertBatchSize {
		end := min(i+insertBatchSize, len(images))
		batch := make([]interface{}, 0, end-i)
		for _, img := range images[i:end] {
			batch = append(batch, img)
		}
		if _, err := s.images.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert images %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (s *MongoCorpusStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
