package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-album/server/internal/album/filter"
	"github.com/smart-album/server/internal/album/store"
	errx "github.com/smart-album/server/internal/core/error"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakePhotos struct {
	searchHits []store.ScoredPhoto
	searchErr  error
	scanMetas  []store.PhotoMeta
	scanErr    error
	lastSpec   filter.Spec
	lastTopK   int
}

func (f *fakePhotos) Search(ctx context.Context, vector []float32, spec filter.Spec, topK int) ([]store.ScoredPhoto, error) {
	f.lastSpec = spec
	f.lastTopK = topK
	return f.searchHits, f.searchErr
}

func (f *fakePhotos) Scan(ctx context.Context, spec filter.Spec) ([]store.PhotoMeta, error) {
	f.lastSpec = spec
	return f.scanMetas, f.scanErr
}

func dateSpec() filter.Spec {
	return filter.Spec{DateRange: &filter.DateRange{Start: 100, End: 200}}
}

func TestSelectMode_Totality(t *testing.T) {
	cases := []struct {
		name string
		text string
		spec filter.Spec
		want Mode
	}{
		{"both present", "海边", dateSpec(), ModeCombined},
		{"text only", "海边", filter.Spec{}, ModeSemantic},
		{"filter only", "", dateSpec(), ModeMetadata},
		{"tags only", "", filter.Spec{Tags: []string{"travel"}}, ModeMetadata},
		{"empty id set only", "", filter.Spec{IDSet: true}, ModeMetadata},
		{"nothing", "", filter.Spec{}, ModeNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectMode(tc.text, tc.spec))
		})
	}
}

func TestRetrieve_SemanticOnly(t *testing.T) {
	photos := &fakePhotos{searchHits: []store.ScoredPhoto{
		{Meta: store.PhotoMeta{PhotoID: "a"}, Score: 0.9},
		{Meta: store.PhotoMeta{PhotoID: "b"}, Score: 0.7},
	}}
	o := NewOrchestrator(&fakeEmbedder{vector: []float32{0.1, 0.2}}, photos)

	res, err := o.Retrieve(context.Background(), "表格", filter.Spec{}, 5)
	require.NoError(t, err)

	assert.Equal(t, ModeSemantic, res.Mode)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "a", res.Matches[0].PhotoID)
	assert.Equal(t, float32(0.9), res.Matches[0].Score)
	assert.Equal(t, 5, photos.lastTopK)
}

func TestRetrieve_MetadataOnlyTruncates(t *testing.T) {
	photos := &fakePhotos{scanMetas: []store.PhotoMeta{
		{PhotoID: "c", TakenAt: 300},
		{PhotoID: "b", TakenAt: 200},
		{PhotoID: "a", TakenAt: 100},
	}}
	o := NewOrchestrator(&fakeEmbedder{}, photos)

	res, err := o.Retrieve(context.Background(), "", dateSpec(), 2)
	require.NoError(t, err)

	assert.Equal(t, ModeMetadata, res.Mode)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "c", res.Matches[0].PhotoID, "metadata order is capture time descending")
	assert.Zero(t, res.Matches[0].Score)
}

func TestRetrieve_CombinedPassesSpec(t *testing.T) {
	photos := &fakePhotos{searchHits: []store.ScoredPhoto{{Meta: store.PhotoMeta{PhotoID: "a"}, Score: 0.8}}}
	o := NewOrchestrator(&fakeEmbedder{vector: []float32{0.3}}, photos)

	spec := filter.Spec{Tags: []string{"travel"}}
	res, err := o.Retrieve(context.Background(), "海边", spec, 0)
	require.NoError(t, err)

	assert.Equal(t, ModeCombined, res.Mode)
	assert.Equal(t, spec, photos.lastSpec)
	assert.Equal(t, DefaultTopK, photos.lastTopK)
}

func TestRetrieve_NoConstraint(t *testing.T) {
	o := NewOrchestrator(&fakeEmbedder{}, &fakePhotos{})

	res, err := o.Retrieve(context.Background(), "", filter.Spec{}, 10)
	require.ErrorIs(t, err, ErrNoConstraint)
	assert.Empty(t, res.Matches)
}

func TestRetrieve_UnsatisfiableFilterIsEmptyNotError(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	o := NewOrchestrator(embedder, &fakePhotos{})

	res, err := o.Retrieve(context.Background(), "照片", filter.Spec{IDSet: true}, 10)
	require.NoError(t, err)

	assert.Equal(t, ModeCombined, res.Mode)
	assert.Empty(t, res.Matches)
	assert.Zero(t, embedder.calls, "no embedding needed for an unsatisfiable filter")
}

func TestRetrieve_EmbedderFailureSurfaces(t *testing.T) {
	o := NewOrchestrator(&fakeEmbedder{err: errx.WrapProvider(errors.New("quota exceeded"))}, &fakePhotos{})

	_, err := o.Retrieve(context.Background(), "海边", filter.Spec{}, 10)
	require.Error(t, err)
	assert.True(t, errx.IsProvider(err), "embedding failure is a provider error, not an empty constraint")
}

func TestRetrieve_StoreFailureSurfaces(t *testing.T) {
	photos := &fakePhotos{scanErr: errx.WrapStore(errors.New("unavailable"))}
	o := NewOrchestrator(&fakeEmbedder{}, photos)

	_, err := o.Retrieve(context.Background(), "", dateSpec(), 10)
	require.Error(t, err)
	assert.True(t, errx.IsStore(err))
}
