package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-album/server/internal/album/filter"
	"github.com/smart-album/server/internal/album/query"
	"github.com/smart-album/server/internal/album/retrieval"
	"github.com/smart-album/server/internal/album/store"
	"github.com/smart-album/server/internal/agent/session"
	errx "github.com/smart-album/server/internal/core/error"
)

type fakeBuilder struct {
	gotExpr query.DateExpression
	gotTags []string
	spec    filter.Spec
	err     error
}

func (f *fakeBuilder) Build(ctx context.Context, expr query.DateExpression, tags []string) (filter.Spec, error) {
	f.gotExpr = expr
	f.gotTags = tags
	return f.spec, f.err
}

type fakeRetriever struct {
	gotText string
	gotSpec filter.Spec
	gotTopK int
	result  retrieval.Result
	err     error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, semanticText string, spec filter.Spec, topK int) (retrieval.Result, error) {
	f.gotText = semanticText
	f.gotSpec = spec
	f.gotTopK = topK
	return f.result, f.err
}

type fakeDescriber struct {
	schema store.Schema
	err    error
}

func (f *fakeDescriber) Describe(ctx context.Context) (store.Schema, error) {
	return f.schema, f.err
}

func newTestRegistry(b *fakeBuilder, r *fakeRetriever, d *fakeDescriber) *Registry {
	if b == nil {
		b = &fakeBuilder{}
	}
	if r == nil {
		r = &fakeRetriever{}
	}
	if d == nil {
		d = &fakeDescriber{}
	}
	return NewRegistry(r, b, d)
}

func semanticResult(ids ...string) retrieval.Result {
	res := retrieval.Result{Mode: retrieval.ModeSemantic}
	for i, id := range ids {
		res.Matches = append(res.Matches, retrieval.Match{PhotoID: id, Score: float32(len(ids) - i)})
	}
	return res
}

func TestSearchPhotos_RequiresQuery(t *testing.T) {
	r := newTestRegistry(nil, nil, nil)

	_, err := r.searchPhotos(context.Background(), &SearchPhotosInput{Query: "   "})

	require.Error(t, err)
	assert.True(t, errx.IsToolContract(err))
}

func TestSearchPhotos_DateInsideQueryBecomesConstraint(t *testing.T) {
	builder := &fakeBuilder{spec: filter.Spec{Tags: nil}}
	retriever := &fakeRetriever{result: semanticResult("p1")}
	r := newTestRegistry(builder, retriever, nil)

	out, err := r.searchPhotos(context.Background(), &SearchPhotosInput{Query: "1.18 海边"})

	require.NoError(t, err)
	assert.Equal(t, query.DateKindMonthDay, builder.gotExpr.Kind)
	assert.Equal(t, 1, builder.gotExpr.Month)
	assert.Equal(t, 18, builder.gotExpr.Day)
	assert.Equal(t, "海边", retriever.gotText)
	assert.Equal(t, 1, out.Total)
}

func TestFilterPhotos_RequiresSomeConstraint(t *testing.T) {
	r := newTestRegistry(nil, nil, nil)

	_, err := r.filterPhotos(context.Background(), &FilterPhotosInput{})

	require.Error(t, err)
	assert.True(t, errx.IsToolContract(err))
}

func TestFilterPhotos_DateTextDrivesBuilder(t *testing.T) {
	builder := &fakeBuilder{}
	retriever := &fakeRetriever{result: retrieval.Result{Mode: retrieval.ModeMetadata}}
	r := newTestRegistry(builder, retriever, nil)

	_, err := r.filterPhotos(context.Background(), &FilterPhotosInput{DateText: "2026-01-17"})

	require.NoError(t, err)
	assert.Equal(t, query.DateKindDate, builder.gotExpr.Kind)
	assert.Equal(t, 2026, builder.gotExpr.Year)
	assert.Equal(t, "", retriever.gotText)
}

func TestFilterPhotos_UnreadableDateTextDegradesToSemantic(t *testing.T) {
	builder := &fakeBuilder{}
	retriever := &fakeRetriever{result: semanticResult("p1")}
	r := newTestRegistry(builder, retriever, nil)

	_, err := r.filterPhotos(context.Background(), &FilterPhotosInput{DateText: "上个假期"})

	require.NoError(t, err)
	assert.True(t, builder.gotExpr.None())
	assert.Equal(t, "上个假期", retriever.gotText)
}

func TestFilterPhotos_TagsReachBuilder(t *testing.T) {
	builder := &fakeBuilder{spec: filter.Spec{Tags: []string{"travel"}}}
	retriever := &fakeRetriever{result: retrieval.Result{Mode: retrieval.ModeMetadata}}
	r := newTestRegistry(builder, retriever, nil)

	_, err := r.filterPhotos(context.Background(), &FilterPhotosInput{Tags: []string{"travel"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"travel"}, builder.gotTags)
	assert.Equal(t, []string{"travel"}, retriever.gotSpec.Tags)
}

func TestResolve_TopKClamped(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, defaultTopK},
		{-3, defaultTopK},
		{5, 5},
		{200, maxTopK},
	}
	for _, tc := range cases {
		retriever := &fakeRetriever{result: semanticResult("p1")}
		r := newTestRegistry(nil, retriever, nil)

		_, err := r.searchPhotos(context.Background(), &SearchPhotosInput{Query: "海边", TopK: tc.in})

		require.NoError(t, err)
		assert.Equal(t, tc.want, retriever.gotTopK)
	}
}

func TestResolve_TopKHintUsedWhenToolOmitsIt(t *testing.T) {
	retriever := &fakeRetriever{result: semanticResult("p1")}
	r := newTestRegistry(nil, retriever, nil)
	ctx := session.WithTopKHint(context.Background(), 7)

	_, err := r.searchPhotos(ctx, &SearchPhotosInput{Query: "海边"})

	require.NoError(t, err)
	assert.Equal(t, 7, retriever.gotTopK)
}

func TestResolve_ExplicitTopKBeatsHint(t *testing.T) {
	retriever := &fakeRetriever{result: semanticResult("p1")}
	r := newTestRegistry(nil, retriever, nil)
	ctx := session.WithTopKHint(context.Background(), 7)

	_, err := r.searchPhotos(ctx, &SearchPhotosInput{Query: "海边", TopK: 5})

	require.NoError(t, err)
	assert.Equal(t, 5, retriever.gotTopK)
}

func TestResolve_TopKHintClamped(t *testing.T) {
	retriever := &fakeRetriever{result: semanticResult("p1")}
	r := newTestRegistry(nil, retriever, nil)
	ctx := session.WithTopKHint(context.Background(), 200)

	_, err := r.searchPhotos(ctx, &SearchPhotosInput{Query: "海边"})

	require.NoError(t, err)
	assert.Equal(t, maxTopK, retriever.gotTopK)
}

func TestResolve_RecordsIntoTurnCache(t *testing.T) {
	retriever := &fakeRetriever{result: semanticResult("p1", "p2")}
	r := newTestRegistry(nil, retriever, nil)
	cache := session.NewTurnCache()
	ctx := session.WithTurnCache(context.Background(), cache)

	_, err := r.searchPhotos(ctx, &SearchPhotosInput{Query: "海边"})

	require.NoError(t, err)
	assert.Equal(t, 1, cache.Recorded())
	assert.Len(t, cache.Take(), 2)
}

func TestResolve_BuilderErrorSurfaces(t *testing.T) {
	builder := &fakeBuilder{err: errx.WrapStore(errors.New("scan failed"))}
	r := newTestRegistry(builder, nil, nil)

	_, err := r.searchPhotos(context.Background(), &SearchPhotosInput{Query: "1.18 海边"})

	require.Error(t, err)
	assert.True(t, errx.IsStore(err))
}

func TestCurrentTime_UsesInjectedClock(t *testing.T) {
	r := newTestRegistry(nil, nil, nil)
	fixed := time.Date(2026, 1, 18, 9, 30, 0, 0, time.UTC)
	r.Now = func() time.Time { return fixed }

	out, err := r.currentTime(context.Background(), &CurrentTimeInput{})

	require.NoError(t, err)
	assert.Equal(t, "2026-01-18T09:30:00Z", out.Now)
	assert.Equal(t, "Sunday", out.Weekday)
	assert.Equal(t, fixed.Unix(), out.Unix)
}

func TestAlbumSchema_ReportsStoreError(t *testing.T) {
	d := &fakeDescriber{err: errx.WrapStore(errors.New("unreachable"))}
	r := newTestRegistry(nil, nil, d)

	_, err := r.albumSchema(context.Background(), &AlbumSchemaInput{})

	require.Error(t, err)
	assert.True(t, errx.IsStore(err))
}

func TestDispatch_RoundTrip(t *testing.T) {
	retriever := &fakeRetriever{result: semanticResult("p1")}
	r := newTestRegistry(nil, retriever, nil)

	raw, err := r.Dispatch(context.Background(), ToolSearchPhotos, `{"query":"海边","top_k":3}`)

	require.NoError(t, err)
	var out PhotoSetOutput
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.Equal(t, "semantic", out.Mode)
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, 3, retriever.gotTopK)
}

func TestDispatch_UnknownToolIsContractViolation(t *testing.T) {
	r := newTestRegistry(nil, nil, nil)

	_, err := r.Dispatch(context.Background(), "delete_everything", `{}`)

	require.Error(t, err)
	assert.True(t, errx.IsToolContract(err))
}

func TestDispatch_MalformedArgumentsIsContractViolation(t *testing.T) {
	r := newTestRegistry(nil, nil, nil)

	_, err := r.Dispatch(context.Background(), ToolSearchPhotos, `{"query":`)

	require.Error(t, err)
	assert.True(t, errx.IsToolContract(err))
}

func TestToolInfos_DeclaresAllTools(t *testing.T) {
	r := newTestRegistry(nil, nil, nil)

	infos, err := ToolInfos(context.Background(), r.QueryTools())

	require.NoError(t, err)
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.ElementsMatch(t, []string{ToolSearchPhotos, ToolFilterPhotos, ToolAlbumSchema, ToolCurrentTime}, names)
}
