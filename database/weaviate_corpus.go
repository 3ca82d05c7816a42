package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
)

const (
	DocumentClass = "SupportDocument"
	ImageClass    = "SupportImage"
)

var documentClassObject = &models.Class{
	Class: DocumentClass,
	Properties: []*models.Property{
		{Name: "title", DataType: []string{"text"}},
		{Name: "body", DataType: []string{"text"}},
		{Name: "url", DataType: []string{"text"}},
		{Name: "category", DataType: []string{"text"}},
		{Name: "module", DataType: []string{"text"}},
		{Name: "keywords", DataType: []string{"text[]"}},
		{Name: "createdAt", DataType: []string{"int"}},
	},
	Vectorizer: "none",
}

var imageClassObject = &models.Class{
	Class: ImageClass,
	Properties: []*models.Property{
		{Name: "caption", DataType: []string{"text"}},
		{Name: "altText", DataType: []string{"text"}},
		{Name: "intent", DataType: []string{"text"}},
		{Name: "module", DataType: []string{"text"}},
		{Name: "sourceDocumentId", DataType: []string{"text"}},
		{Name: "localPath", DataType: []string{"text"}},
		{Name: "width", DataType: []string{"int"}},
		{Name: "height", DataType: []string{"int"}},
	},
	Vectorizer: "none",
}

// WeaviateCorpusStore is the alternative CorpusStore driver. Documents
// are pre-filtered with BM25; the relevance scorer still re-ranks and
// thresholds everything it returns.
type WeaviateCorpusStore struct {
	client *weaviate.Client
}

func NewWeaviateCorpusStore(cfg config.WeaviateConfig) (*WeaviateCorpusStore, error) {
	scheme := "http"
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")

	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	store := &WeaviateCorpusStore{client: client}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *WeaviateCorpusStore) ensureSchema(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: getting schema: %v", ErrCorpusUnavailable, err)
	}

	existing := make(map[string]bool, len(schema.Classes))
	for _, class := range schema.Classes {
		existing[class.Class] = true
	}
	for _, classObj := range []*models.Class{documentClassObject, imageClassObject} {
		if existing[classObj.Class] {
			continue
		}
		if err := s.client.Schema().ClassCreator().WithClass(classObj).Do(ctx); err != nil {
			return fmt.Errorf("failed to create %s class: %w", classObj.Class, err)
		}
	}
	return nil
}

// ReInit drops and recreates both classes. Used by the init-schema
// command before a full re-ingest.
func (s *WeaviateCorpusStore) ReInit(ctx context.Context) error {
	for _, classObj := range []*models.Class{documentClassObject, imageClassObject} {
		err := s.client.Schema().ClassDeleter().WithClassName(classObj.Class).Do(ctx)
		if err != nil && !strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("failed to delete %s class: %w", classObj.Class, err)
		}
		if err := s.client.Schema().ClassCreator().WithClass(classObj).Do(ctx); err != nil {
			return fmt.Errorf("failed to create %s class: %w", classObj.Class, err)
		}
	}
	return nil
}

var documentFields = []graphql.Field{
	{Name: "title"},
	{Name: "body"},
	{Name: "url"},
	{Name: "category"},
	{Name: "module"},
	{Name: "keywords"},
	{Name: "createdAt"},
	{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}},
}

func (s *WeaviateCorpusStore) SearchDocuments(ctx context.Context, text, categoryHint, moduleHint string, limit int) ([]types.Document, error) {
	bm25 := (&graphql.BM25ArgumentBuilder{}).
		WithQuery(text).
		WithProperties("title", "body", "keywords")

	result, err := s.client.GraphQL().Get().
		WithClassName(DocumentClass).
		WithFields(documentFields...).
		WithBM25(bm25).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: document search: %v", ErrCorpusUnavailable, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: document search: %s", ErrCorpusUnavailable, result.Errors[0].Message)
	}

	docs := parseDocuments(result.Data, DocumentClass)

	// BM25 can come up empty for short queries; the hints widen the
	// candidate set the same way the scraper's category index would.
	if len(docs) == 0 && (categoryHint != "" || moduleHint != "") {
		return s.documentsByHint(ctx, categoryHint, moduleHint, limit)
	}
	return docs, nil
}

func (s *WeaviateCorpusStore) documentsByHint(ctx context.Context, categoryHint, moduleHint string, limit int) ([]types.Document, error) {
	var operands []*filters.WhereBuilder
	if categoryHint != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"category"}).
			WithOperator(filters.Equal).
			WithValueString(categoryHint))
	}
	if moduleHint != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"module"}).
			WithOperator(filters.Equal).
			WithValueString(moduleHint))
	}
	where := operands[0]
	if len(operands) > 1 {
		where = filters.Where().WithOperator(filters.Or).WithOperands(operands)
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(DocumentClass).
		WithFields(documentFields...).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: document search by hint: %v", ErrCorpusUnavailable, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: document search by hint: %s", ErrCorpusUnavailable, result.Errors[0].Message)
	}
	return parseDocuments(result.Data, DocumentClass), nil
}

func (s *WeaviateCorpusStore) SearchImages(ctx context.Context, intent types.IntentCategory, moduleHint string, limit int) ([]types.ImageAsset, error) {
	where := filters.Where().
		WithPath([]string{"intent"}).
		WithOperator(filters.Equal).
		WithValueString(string(intent))
	if moduleHint != "" {
		moduleFilter := filters.Where().WithOperator(filters.Or).WithOperands([]*filters.WhereBuilder{
			filters.Where().WithPath([]string{"module"}).WithOperator(filters.Equal).WithValueString(moduleHint),
			filters.Where().WithPath([]string{"module"}).WithOperator(filters.Equal).WithValueString(""),
		})
		where = filters.Where().WithOperator(filters.And).
			WithOperands([]*filters.WhereBuilder{where, moduleFilter})
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(ImageClass).
		WithFields(
			graphql.Field{Name: "caption"},
			graphql.Field{Name: "altText"},
			graphql.Field{Name: "intent"},
			graphql.Field{Name: "module"},
			graphql.Field{Name: "sourceDocumentId"},
			graphql.Field{Name: "localPath"},
			graphql.Field{Name: "width"},
			graphql.Field{Name: "height"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}},
		).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: image search: %v", ErrCorpusUnavailable, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: image search: %s", ErrCorpusUnavailable, result.Errors[0].Message)
	}

	var images []types.ImageAsset
	for _, item := range classItems(result.Data, ImageClass) {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		images = append(images, types.ImageAsset{
			ID:               additionalID(obj),
			Caption:          asString(obj["caption"]),
			AltText:          asString(obj["altText"]),
			Intent:           asString(obj["intent"]),
			Module:           asString(obj["module"]),
			SourceDocumentID: asString(obj["sourceDocumentId"]),
			LocalPath:        asString(obj["localPath"]),
			Width:            asInt(obj["width"]),
			Height:           asInt(obj["height"]),
		})
	}
	return images, nil
}

func (s *WeaviateCorpusStore) Stats(ctx context.Context) (*types.CorpusStats, error) {
	metaCount := graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}

	docCount, err := s.classCount(ctx, DocumentClass, metaCount)
	if err != nil {
		return nil, err
	}
	imageCount, err := s.classCount(ctx, ImageClass, metaCount)
	if err != nil {
		return nil, err
	}

	grouped, err := s.client.GraphQL().Aggregate().
		WithClassName(DocumentClass).
		WithGroupBy("category").
		WithFields(
			graphql.Field{Name: "groupedBy", Fields: []graphql.Field{{Name: "value"}}},
			metaCount,
		).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: category stats: %v", ErrCorpusUnavailable, err)
	}

	distribution := make(map[string]int64)
	if agg, ok := grouped.Data["Aggregate"].(map[string]interface{}); ok {
		if rows, ok := agg[DocumentClass].([]interface{}); ok {
			for _, row := range rows {
				obj, ok := row.(map[string]interface{})
				if !ok {
					continue
				}
				category := ""
				if g, ok := obj["groupedBy"].(map[string]interface{}); ok {
					category = asString(g["value"])
				}
				if m, ok := obj["meta"].(map[string]interface{}); ok {
					distribution[category] = int64(asInt(m["count"]))
				}
			}
		}
	}

	return &types.CorpusStats{
		DocumentCount:        docCount,
		ImageCount:           imageCount,
		CategoryDistribution: distribution,
	}, nil
}

func (s *WeaviateCorpusStore) classCount(ctx context.Context, className string, metaCount graphql.Field) (int64, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(metaCount).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: counting %s: %v", ErrCorpusUnavailable, className, err)
	}
	if agg, ok := result.Data["Aggregate"].(map[string]interface{}); ok {
		if rows, ok := agg[className].([]interface{}); ok && len(rows) > 0 {
			if obj, ok := rows[0].(map[string]interface{}); ok {
				if m, ok := obj["meta"].(map[string]interface{}); ok {
					return int64(asInt(m["count"])), nil
				}
			}
		}
	}
	return 0, nil
}

func (s *WeaviateCorpusStore) InsertDocuments(ctx context.Context, docs []types.Document) error {
	for i := 0; i < len(docs); i += insertBatchSize {
		end := min(i+insertBatchSize, len(docs))
		batcher := s.client.Batch().ObjectsBatcher()
		for _, doc := range docs[i:end] {
			batcher = batcher.WithObjects(&models.Object{
				Class: DocumentClass,
				Properties: map[string]interface{}{
					"title":     doc.Title,
					"body":      doc.Body,
					"url":       doc.URL,
					"category":  doc.Category,
					"module":    doc.Module,
					"keywords":  doc.Keywords,
					"createdAt": doc.CreatedAt,
				},
			})
		}
		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert documents %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (s *WeaviateCorpusStore) InsertImages(ctx context.Context, images []types.ImageAsset) error {
	for i := 0; i < len(images); i += insertBatchSize {
		end := min(i+insertBatchSize, len(images))
		batcher := s.client.Batch().ObjectsBatcher()
		for _, img := range images[i:end] {
			batcher = batcher.WithObjects(&models.Object{
				Class: ImageClass,
				Properties: map[string]interface{}{
					"caption":          img.Caption,
					"altText":          img.AltText,
					"intent":           img.Intent,
					"module":           img.Module,
					"sourceDocumentId": img.SourceDocumentID,
					"localPath":        img.LocalPath,
					"width":            img.Width,
					"height":           img.Height,
				},
			})
		}
		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert images %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (s *WeaviateCorpusStore) Close(ctx context.Context) error {
	return nil
}

// Result parsing helpers.

func classItems(data map[string]models.JSONObject, className string) []interface{} {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, _ := get[className].([]interface{})
	return items
}

func parseDocuments(data map[string]models.JSONObject, className string) []types.Document {
	var docs []types.Document
	for _, item := range classItems(data, className) {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		docs = append(docs, types.Document{
			ID:        additionalID(obj),
			Title:     asString(obj["title"]),
			Body:      asString(obj["body"]),
			URL:       asString(obj["url"]),
			Category:  asString(obj["category"]),
			Module:    asString(obj["module"]),
			Keywords:  asStringSlice(obj["keywords"]),
			CreatedAt: int64(asInt(obj["createdAt"])),
		})
	}
	return docs
}

func additionalID(obj map[string]interface{}) string {
	if additional, ok := obj["_additional"].(map[string]interface{}); ok {
		return asString(additional["id"])
	}
	return ""
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}

func asStringSlice(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, asString(item))
	}
	return out
}
