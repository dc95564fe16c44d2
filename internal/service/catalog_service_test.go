package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"movie-cache/internal/cache"
	"movie-cache/internal/config"
	catalogerrors "movie-cache/internal/errors"
	"movie-cache/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const popularBody = `{"page":1,"results":[{"id":603,"title":"The Matrix","genre_ids":[28,878]}],"total_pages":1,"total_results":1}`

type fakeUpstream struct {
	server *httptest.Server
	calls  atomic.Int64

	mu      sync.Mutex
	lastReq *http.Request
	handler http.HandlerFunc
}

func newFakeUpstream(t *testing.T, h http.HandlerFunc) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{handler: h}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.mu.Lock()
		f.lastReq = r.Clone(context.Background())
		h := f.handler
		f.mu.Unlock()
		h(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) setHandler(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *fakeUpstream) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	results   []string
	fallbacks int
}

func (o *recordingObserver) ObserveUpstream(endpoint, result string, latency time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, endpoint+":"+result)
}

func (o *recordingObserver) ObserveFallback() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks++
}

func newTestService(t *testing.T, baseURL string, fallback bool) (*CatalogService, *recordingObserver) {
	t.Helper()
	c, err := cache.New[[]byte](cache.Config{Name: "test", MaxSize: 10, DefaultTTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	obs := &recordingObserver{}
	svc := NewCatalogService(c, metrics.NewSearchTracker(0), CatalogOptions{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		Language: "pt-BR",
		Fallback: fallback,
		TTLs:     TTLsFromConfig(config.DefaultConfig()),
		Retry:    RetryConfig{MaxRetries: 0, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		Observer: obs,
	})
	return svc, obs
}

func TestPopularMoviesMissThenHit(t *testing.T) {
	up := newFakeUpstream(t, jsonBody(popularBody))
	svc, obs := newTestService(t, up.server.URL, false)
	ctx := context.Background()

	resp, src, err := svc.PopularMovies(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, SourceUpstream, src)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "The Matrix", resp.Results[0].Title)

	req := up.last()
	assert.Equal(t, "/movie/popular", req.URL.Path)
	assert.Equal(t, "test-key", req.URL.Query().Get("api_key"))
	assert.Equal(t, "pt-BR", req.URL.Query().Get("language"))
	assert.Equal(t, "1", req.URL.Query().Get("page"))

	resp, src, err = svc.PopularMovies(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, "The Matrix", resp.Results[0].Title)

	assert.Equal(t, int64(1), up.calls.Load())
	assert.Equal(t, []string{"popular:ok"}, obs.results)
	assert.Equal(t, []string{"popular_1"}, svc.Cache().GetStats().Keys)
}

func TestSearchRecordedOnCacheHit(t *testing.T) {
	up := newFakeUpstream(t, jsonBody(popularBody))
	svc, _ := newTestService(t, up.server.URL, false)
	ctx := context.Background()

	for _, q := range []string{"Matrix", "matrix", "  MATRIX "} {
		_, _, err := svc.SearchMovies(ctx, q, 1)
		require.NoError(t, err)
	}
	_, _, err := svc.SearchMovies(ctx, "avatar", 1)
	require.NoError(t, err)

	// 大小写不同的搜索共用一个缓存条目
	assert.Equal(t, int64(2), up.calls.Load())
	assert.Equal(t, "avatar", up.last().URL.Query().Get("query"))
	assert.Equal(t, []string{"search_matrix_1", "search_avatar_1"}, svc.Cache().GetStats().Keys)
	assert.Equal(t, []metrics.SearchTerm{{Term: "matrix", Count: 3}, {Term: "avatar", Count: 1}}, svc.TopSearches(5))
}

func TestMoviesByGenreQuery(t *testing.T) {
	up := newFakeUpstream(t, jsonBody(popularBody))
	svc, _ := newTestService(t, up.server.URL, false)

	_, src, err := svc.MoviesByGenre(context.Background(), 28, 2)
	require.NoError(t, err)
	assert.Equal(t, SourceUpstream, src)

	req := up.last()
	assert.Equal(t, "/discover/movie", req.URL.Path)
	assert.Equal(t, "28", req.URL.Query().Get("with_genres"))
	assert.Equal(t, "2", req.URL.Query().Get("page"))
	assert.Equal(t, []string{"genre_28_2"}, svc.Cache().GetStats().Keys)
}

func TestGenresAndDetails(t *testing.T) {
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/genre/movie/list":
			w.Write([]byte(`{"genres":[{"id":28,"name":"Ação"}]}`))
		case "/movie/603":
			w.Write([]byte(`{"id":603,"title":"The Matrix","runtime":136,"genres":[{"id":28,"name":"Ação"}]}`))
		default:
			http.NotFound(w, r)
		}
	})
	svc, _ := newTestService(t, up.server.URL, false)
	ctx := context.Background()

	genres, _, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ação", genres.Genres[0].Name)

	details, _, err := svc.MovieDetails(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, 136, details.Runtime)

	assert.Equal(t, []string{GenresKey, "movie_603"}, svc.Cache().GetStats().Keys)
}

func TestFallbackIsNotCached(t *testing.T) {
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	svc, obs := newTestService(t, up.server.URL, true)
	ctx := context.Background()

	resp, src, err := svc.PopularMovies(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, src)
	assert.Equal(t, 3, resp.Page)
	assert.NotEmpty(t, resp.Results)

	genres, src, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, src)
	assert.Len(t, genres.Genres, len(defaultGenres))

	assert.Equal(t, 0, svc.Cache().Len())
	assert.Equal(t, 2, obs.fallbacks)

	// 上游恢复后不会读到演示数据
	up.setHandler(jsonBody(popularBody))
	resp, src, err = svc.PopularMovies(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, SourceUpstream, src)
	assert.Equal(t, "The Matrix", resp.Results[0].Title)
}

func TestUpstreamErrorIsDistinctFromMiss(t *testing.T) {
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	svc, obs := newTestService(t, up.server.URL, false)

	resp, src, err := svc.TopRatedMovies(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, Source(""), src)

	var ce *catalogerrors.CatalogError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, catalogerrors.ErrUpstreamStatus, ce.Code)
	assert.Equal(t, http.StatusNotFound, ce.StatusCode)
	assert.True(t, catalogerrors.IsUpstream(err))

	assert.Equal(t, 0, svc.Cache().Len())
	assert.Equal(t, []string{"top_rated:status_error"}, obs.results)
}

func TestMovieDetailsHasNoFallback(t *testing.T) {
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	svc, obs := newTestService(t, up.server.URL, true)

	_, _, err := svc.MovieDetails(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, catalogerrors.ErrUpstreamStatus, catalogerrors.CodeOf(err))
	assert.Zero(t, obs.fallbacks)
}

func TestDecodeError(t *testing.T) {
	up := newFakeUpstream(t, jsonBody(`{"page":`))
	svc, _ := newTestService(t, up.server.URL, false)

	_, _, err := svc.NowPlayingMovies(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, catalogerrors.ErrUpstreamDecode, catalogerrors.CodeOf(err))
	assert.Equal(t, 0, svc.Cache().Len())
}

func TestUnreachableUpstream(t *testing.T) {
	up := newFakeUpstream(t, jsonBody(popularBody))
	url := up.server.URL
	up.server.Close()

	svc, _ := newTestService(t, url, false)
	_, _, err := svc.PopularMovies(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, catalogerrors.ErrUpstreamRequest, catalogerrors.CodeOf(err))
}

func TestInvalidArguments(t *testing.T) {
	up := newFakeUpstream(t, jsonBody(popularBody))
	svc, _ := newTestService(t, up.server.URL, true)
	ctx := context.Background()

	_, _, err := svc.PopularMovies(ctx, 0)
	assert.Equal(t, catalogerrors.ErrInvalidArgument, catalogerrors.CodeOf(err))

	_, _, err = svc.MoviesByGenre(ctx, 0, 1)
	assert.Equal(t, catalogerrors.ErrInvalidArgument, catalogerrors.CodeOf(err))

	_, _, err = svc.SearchMovies(ctx, "   ", 1)
	assert.Equal(t, catalogerrors.ErrInvalidArgument, catalogerrors.CodeOf(err))

	_, _, err = svc.MovieDetails(ctx, -1)
	assert.Equal(t, catalogerrors.ErrInvalidArgument, catalogerrors.CodeOf(err))

	_, _, err = svc.TopRatedMovies(ctx, maxPage+1)
	assert.Equal(t, catalogerrors.ErrInvalidArgument, catalogerrors.CodeOf(err))

	assert.Zero(t, up.calls.Load())
	assert.Zero(t, svc.Searches().Len())
}

func TestRetryRecoversFromTransientStatus(t *testing.T) {
	var n atomic.Int64
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(popularBody))
	})
	svc, _ := newTestService(t, up.server.URL, false)
	svc.retry = RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	_, src, err := svc.PopularMovies(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, SourceUpstream, src)
	assert.Equal(t, int64(2), up.calls.Load())
}

func TestReadAccessTokenSentAsBearer(t *testing.T) {
	up := newFakeUpstream(t, jsonBody(popularBody))
	svc, _ := newTestService(t, up.server.URL, false)
	svc.readToken = "read-token"

	_, _, err := svc.PopularMovies(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer read-token", up.last().Header.Get("Authorization"))
}

func TestApplyConfigTogglesFallback(t *testing.T) {
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	svc, _ := newTestService(t, up.server.URL, true)

	cfg := config.DefaultConfig()
	cfg.Catalog.Fallback = false
	svc.ApplyConfig(cfg)

	_, _, err := svc.PopularMovies(context.Background(), 1)
	assert.True(t, catalogerrors.IsUpstream(err))
}
