package store

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-album/server/internal/album/filter"
)

func TestQdrantFilter_EmptySpecIsNil(t *testing.T) {
	assert.Nil(t, qdrantFilter(filter.Spec{}))
}

func TestQdrantFilter_DateRangeIsHalfOpen(t *testing.T) {
	f := qdrantFilter(filter.Spec{
		DateRange: &filter.DateRange{Start: 1000, End: 2000},
	})

	require.NotNil(t, f)
	require.Len(t, f.Must, 1)
	r := f.Must[0].GetField().GetRange()
	require.NotNil(t, r)
	assert.Equal(t, float64(1000), r.GetGte())
	assert.Equal(t, float64(2000), r.GetLt())
	assert.Nil(t, r.Lte)
	assert.Nil(t, r.Gt)
}

func TestQdrantFilter_ConditionsCombineByAnd(t *testing.T) {
	f := qdrantFilter(filter.Spec{
		DateRange: &filter.DateRange{Start: 1, End: 2},
		Tags:      []string{"beach", "family"},
		IDs:       []string{"p1", "p2"},
		IDSet:     true,
	})

	require.NotNil(t, f)
	assert.Len(t, f.Must, 3)
	assert.Empty(t, f.Should)
	assert.Empty(t, f.MustNot)
}

func TestQdrantFilter_EmptyIDSetStillEmitsCondition(t *testing.T) {
	// An unsatisfiable spec must still translate to a has-id condition over
	// nothing rather than silently matching everything.
	f := qdrantFilter(filter.Spec{IDSet: true})

	require.NotNil(t, f)
	require.Len(t, f.Must, 1)
	assert.NotNil(t, f.Must[0].GetHasId())
}

func TestMetaFromPayload_FullPayload(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"photo_id":     "p1",
		"taken_at":     int64(1768662000),
		"caption":      "海边日落",
		"preview_path": "previews/p1.jpg",
		"tags":         []any{"beach", "sunset"},
	})

	meta := metaFromPayload(payload)

	assert.Equal(t, "p1", meta.PhotoID)
	assert.Equal(t, int64(1768662000), meta.TakenAt)
	assert.Equal(t, "海边日落", meta.Caption)
	assert.Equal(t, "previews/p1.jpg", meta.PreviewPath)
	assert.Equal(t, []string{"beach", "sunset"}, meta.Tags)
}

func TestMetaFromPayload_NilAndPartialPayload(t *testing.T) {
	assert.Equal(t, PhotoMeta{}, metaFromPayload(nil))

	meta := metaFromPayload(qdrant.NewValueMap(map[string]any{
		"photo_id": "p2",
	}))
	assert.Equal(t, "p2", meta.PhotoID)
	assert.Zero(t, meta.TakenAt)
	assert.Empty(t, meta.Tags)
}
