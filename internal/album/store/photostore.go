package store

import (
	"context"
	"sort"

	"github.com/qdrant/go-client/qdrant"

	"github.com/smart-album/server/internal/album/filter"
	errx "github.com/smart-album/server/internal/core/error"
	logx "github.com/smart-album/server/pkg/logger"
)

// PhotoMeta is the structured payload stored alongside each photo vector.
type PhotoMeta struct {
	PhotoID     string   `json:"photo_id"`
	TakenAt     int64    `json:"taken_at"`
	Tags        []string `json:"tags,omitempty"`
	Caption     string   `json:"caption,omitempty"`
	PreviewPath string   `json:"preview_path,omitempty"`
}

// Photo pairs metadata with its embedding vector for insertion.
type Photo struct {
	Meta   PhotoMeta
	Vector []float32
}

// ScoredPhoto is one ranked search hit.
type ScoredPhoto struct {
	Meta  PhotoMeta
	Score float32
}

// SchemaField describes one payload field for schema introspection.
type SchemaField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Schema describes the collection for the introspection tool.
type Schema struct {
	Collection  string        `json:"collection"`
	Fields      []SchemaField `json:"fields"`
	TotalPhotos uint64        `json:"total_photos"`
}

// PhotoStore wraps the qdrant client for the album collection. Safe for
// concurrent use; the client owns its own connection handling.
type PhotoStore struct {
	client     *qdrant.Client
	collection string
	vectorSize uint64
	scanPage   uint32
}

func NewPhotoStore(client *qdrant.Client, collection string, vectorSize uint64, scanPage uint32) *PhotoStore {
	if scanPage == 0 {
		scanPage = 1024
	}
	return &PhotoStore{
		client:     client,
		collection: collection,
		vectorSize: vectorSize,
		scanPage:   scanPage,
	}
}

// EnsureCollection creates the album collection when it does not exist yet.
func (s *PhotoStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return errx.WrapStore(err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return errx.WrapStore(err)
	}
	logx.Info().Str("collection", s.collection).Uint64("vector_size", s.vectorSize).Msg("created photo collection")
	return nil
}

// Upsert writes photos and their vectors into the collection.
func (s *PhotoStore) Upsert(ctx context.Context, photos []Photo) error {
	if len(photos) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, 0, len(photos))
	for _, p := range photos {
		tags := make([]any, 0, len(p.Meta.Tags))
		for _, t := range p.Meta.Tags {
			tags = append(tags, t)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.Meta.PhotoID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"photo_id":     p.Meta.PhotoID,
				"taken_at":     p.Meta.TakenAt,
				"tags":         tags,
				"caption":      p.Meta.Caption,
				"preview_path": p.Meta.PreviewPath,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

// Delete removes photos by id.
func (s *PhotoStore) Delete(ctx context.Context, photoIDs []string) error {
	if len(photoIDs) == 0 {
		return nil
	}
	ids := make([]*qdrant.PointId, 0, len(photoIDs))
	for _, id := range photoIDs {
		ids = append(ids, qdrant.NewID(id))
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(ids...),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

// Search ranks photos by similarity to the query vector, constrained by the
// filter spec when it is non-empty.
func (s *PhotoStore) Search(ctx context.Context, vector []float32, spec filter.Spec, topK int) ([]ScoredPhoto, error) {
	limit := uint64(topK)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		Filter:         qdrantFilter(spec),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, errx.WrapStore(err)
	}

	results := make([]ScoredPhoto, 0, len(hits))
	for _, hit := range hits {
		results = append(results, ScoredPhoto{
			Meta:  metaFromPayload(hit.GetPayload()),
			Score: hit.GetScore(),
		})
	}
	return results, nil
}

// Scan returns all photos satisfying the filter spec, ordered by capture
// time descending. The order is deterministic for a fixed store state:
// ties on taken_at break on photo id.
func (s *PhotoStore) Scan(ctx context.Context, spec filter.Spec) ([]PhotoMeta, error) {
	metas, err := s.scroll(ctx, qdrantFilter(spec))
	if err != nil {
		return nil, err
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].TakenAt != metas[j].TakenAt {
			return metas[i].TakenAt > metas[j].TakenAt
		}
		return metas[i].PhotoID < metas[j].PhotoID
	})
	return metas, nil
}

// ScanDates walks the whole collection and returns (id, taken_at) pairs.
// Used to resolve year-less month-day constraints, which the native range
// filter cannot express.
func (s *PhotoStore) ScanDates(ctx context.Context) ([]filter.ScanRecord, error) {
	metas, err := s.scroll(ctx, nil)
	if err != nil {
		return nil, err
	}
	records := make([]filter.ScanRecord, 0, len(metas))
	for _, m := range metas {
		records = append(records, filter.ScanRecord{ID: m.PhotoID, TakenAt: m.TakenAt})
	}
	return records, nil
}

// Count returns the number of stored photos.
func (s *PhotoStore) Count(ctx context.Context) (uint64, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, errx.WrapStore(err)
	}
	return n, nil
}

// Describe reports the collection layout and size for schema introspection.
func (s *PhotoStore) Describe(ctx context.Context) (Schema, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return Schema{}, err
	}
	return Schema{
		Collection: s.collection,
		Fields: []SchemaField{
			{Name: "photo_id", Type: "string", Description: "unique photo identifier"},
			{Name: "taken_at", Type: "integer", Description: "capture time, unix seconds"},
			{Name: "tags", Type: "keyword[]", Description: "user-assigned tags, match-any filterable"},
			{Name: "caption", Type: "string", Description: "free-text caption"},
			{Name: "preview_path", Type: "string", Description: "preview image reference"},
		},
		TotalPhotos: total,
	}, nil
}

func (s *PhotoStore) scroll(ctx context.Context, f *qdrant.Filter) ([]PhotoMeta, error) {
	var metas []PhotoMeta
	var offset *qdrant.PointId

	points := s.client.GetPointsClient()
	for {
		resp, err := points.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Filter:         f,
			Limit:          qdrant.PtrOf(s.scanPage),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, errx.WrapStore(err)
		}
		for _, p := range resp.GetResult() {
			metas = append(metas, metaFromPayload(p.GetPayload()))
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			return metas, nil
		}
	}
}

// qdrantFilter converts a filter spec into the store's native filter. All
// conditions combine by logical AND.
func qdrantFilter(spec filter.Spec) *qdrant.Filter {
	if spec.Empty() {
		return nil
	}

	var must []*qdrant.Condition
	if spec.DateRange != nil {
		must = append(must, qdrant.NewRange("taken_at", &qdrant.Range{
			Gte: qdrant.PtrOf(float64(spec.DateRange.Start)),
			Lt:  qdrant.PtrOf(float64(spec.DateRange.End)),
		}))
	}
	if len(spec.Tags) > 0 {
		must = append(must, qdrant.NewMatchKeywords("tags", spec.Tags...))
	}
	if spec.IDSet {
		ids := make([]*qdrant.PointId, 0, len(spec.IDs))
		for _, id := range spec.IDs {
			ids = append(ids, qdrant.NewID(id))
		}
		must = append(must, qdrant.NewHasID(ids...))
	}
	return &qdrant.Filter{Must: must}
}

func metaFromPayload(payload map[string]*qdrant.Value) PhotoMeta {
	meta := PhotoMeta{}
	if payload == nil {
		return meta
	}
	if v, ok := payload["photo_id"]; ok {
		meta.PhotoID = v.GetStringValue()
	}
	if v, ok := payload["taken_at"]; ok {
		meta.TakenAt = v.GetIntegerValue()
	}
	if v, ok := payload["caption"]; ok {
		meta.Caption = v.GetStringValue()
	}
	if v, ok := payload["preview_path"]; ok {
		meta.PreviewPath = v.GetStringValue()
	}
	if v, ok := payload["tags"]; ok {
		for _, item := range v.GetListValue().GetValues() {
			if tag := item.GetStringValue(); tag != "" {
				meta.Tags = append(meta.Tags, tag)
			}
		}
	}
	return meta
}
