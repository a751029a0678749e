// Package assessment persists assessments as RedisJSON documents behind an
// FT index used for both KNN and recency-ordered listing.
package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/cardioai/assessd/internal/db"
	"github.com/cardioai/assessd/internal/domain"
	domassess "github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/domain/search/result"
)

// store is the consumer interface for assessments (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, tags map[string]string) (int, error)
}

// Repo implements the assessment repositories consumed by the usecases.
type Repo struct {
	store  store
	prefix string
}

// New creates an assessment repository. prefix is the global key prefix
// (e.g. "assessd:").
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(id string) string {
	return r.prefix + "assessment:" + id
}

func (r *Repo) indexName() string {
	return r.prefix + "assessment:idx"
}

// EnsureIndex creates the assessment FT index if absent. dim is the embedding
// dimensionality configured for the embedding provider.
func (r *Repo) EnsureIndex(ctx context.Context, dim int) error {
	def := &db.IndexDefinition{
		Name:        r.indexName(),
		StorageType: db.StorageJSON,
		Prefixes:    []string{r.prefix + "assessment:"},
		Fields: []db.IndexField{
			{Name: "$.status", Alias: "status", Type: db.IndexFieldTag},
			{Name: "$.country", Alias: "country", Type: db.IndexFieldTag},
			{Name: "$.has_embedding", Alias: "has_embedding", Type: db.IndexFieldTag},
			{Name: "$.created_at", Alias: "created_at", Type: db.IndexFieldNumeric, Sortable: true},
			{
				Name:           "$.embedding",
				Alias:          db.VectorField,
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      dim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("index definition: %w", err)
	}

	err := r.store.CreateIndex(ctx, def)
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Save stores the full assessment document, creating or replacing it.
func (r *Repo) Save(ctx context.Context, a domassess.Assessment) error {
	data, err := json.Marshal(buildDoc(&a))
	if err != nil {
		return fmt.Errorf("marshal assessment %s: %w", a.ID(), err)
	}
	if err := r.store.JSONSet(ctx, r.key(a.ID()), "$", data); err != nil {
		return fmt.Errorf("%w: json.set %s: %w", domain.ErrStoreQuery, a.ID(), err)
	}
	return nil
}

// Exists reports whether an assessment document is present.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.key(id))
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %w", domain.ErrStoreQuery, id, err)
	}
	return ok, nil
}

// Get returns an assessment by id.
func (r *Repo) Get(ctx context.Context, id string) (domassess.Assessment, error) {
	raw, err := r.store.JSONGet(ctx, r.key(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domassess.Assessment{}, domain.ErrAssessmentNotFound
		}
		return domassess.Assessment{}, fmt.Errorf("%w: json.get %s: %w", domain.ErrStoreQuery, id, err)
	}
	doc, err := parseJSONGetResult(raw)
	if err != nil {
		return domassess.Assessment{}, fmt.Errorf("%w: %w", domain.ErrStoreQuery, err)
	}
	return doc.toDomain(), nil
}

// UpdateEmbedding persists a computed embedding in place and flips the
// presence tag so the document becomes visible to KNN pre-filters.
func (r *Repo) UpdateEmbedding(ctx context.Context, id string, vec []float32) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal embedding %s: %w", id, err)
	}
	key := r.key(id)
	if err := r.store.JSONSet(ctx, key, "$.embedding", data); err != nil {
		return fmt.Errorf("%w: set embedding %s: %w", domain.ErrStoreQuery, id, err)
	}
	if err := r.store.JSONSet(ctx, key, "$.has_embedding", []byte(strconv.Quote(tagEmbeddingPresent))); err != nil {
		return fmt.Errorf("%w: set embedding tag %s: %w", domain.ErrStoreQuery, id, err)
	}
	return nil
}

// ListRecent returns assessments in the given scope ordered newest first,
// along with the total count matching the filter.
func (r *Repo) ListRecent(
	ctx context.Context, country string, status domassess.Status, offset, limit int,
) ([]domassess.Assessment, int, error) {
	tags := r.scopeTags(country, status)

	sr, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    r.indexName(),
		Tags:         tags,
		SortBy:       "created_at",
		SortDesc:     true,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list assessments: %w", domain.ErrStoreQuery, err)
	}

	items := make([]domassess.Assessment, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		doc, err := parseEntryDoc(entry)
		if err != nil {
			continue
		}
		items = append(items, doc.toDomain())
	}
	return items, sr.Total, nil
}

// ListMissingEmbeddings returns assessments without a stored embedding,
// newest first, up to limit.
func (r *Repo) ListMissingEmbeddings(ctx context.Context, limit int) ([]domassess.Assessment, error) {
	sr, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    r.indexName(),
		Tags:         map[string]string{"has_embedding": tagEmbeddingMissing},
		SortBy:       "created_at",
		SortDesc:     true,
		Limit:        limit,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list missing embeddings: %w", domain.ErrStoreQuery, err)
	}

	items := make([]domassess.Assessment, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		doc, err := parseEntryDoc(entry)
		if err != nil {
			continue
		}
		items = append(items, doc.toDomain())
	}
	return items, nil
}

// Count returns the number of assessments matching the scope and status.
func (r *Repo) Count(ctx context.Context, country string, status domassess.Status) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), r.scopeTags(country, status))
	if err != nil {
		return 0, fmt.Errorf("%w: count assessments: %w", domain.ErrStoreQuery, err)
	}
	return n, nil
}

// SearchKNN retrieves the k nearest assessments to the query vector within
// the scope, restricted to documents that carry an embedding.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, country string, status domassess.Status, k int,
) ([]result.Scored, error) {
	tags := r.scopeTags(country, status)
	tags["has_embedding"] = tagEmbeddingPresent

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Tags:         tags,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn search: %w", domain.ErrStoreQuery, err)
	}

	scored := make([]result.Scored, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		doc, err := parseEntryDoc(entry)
		if err != nil {
			continue
		}
		scored = append(scored, result.Scored{
			Assessment: doc.toDomain(),
			Similarity: entry.Score,
		})
	}
	return scored, nil
}

func (r *Repo) scopeTags(country string, status domassess.Status) map[string]string {
	tags := map[string]string{"country": country}
	if status != domassess.StatusAll {
		tags["status"] = string(status)
	}
	return tags
}

func parseEntryDoc(entry db.SearchEntry) (*assessmentDoc, error) {
	jsonStr, ok := entry.Fields["$"]
	if !ok || jsonStr == "" {
		return nil, fmt.Errorf("entry %s: missing document payload", entry.Key)
	}
	var doc assessmentDoc
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, fmt.Errorf("entry %s: %w", entry.Key, err)
	}
	return &doc, nil
}
