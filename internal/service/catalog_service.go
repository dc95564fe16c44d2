package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"movie-cache/internal/cache"
	"movie-cache/internal/config"
	catalogerrors "movie-cache/internal/errors"
	"movie-cache/internal/metrics"
	"movie-cache/internal/models"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Source 表示一次目录查询的数据来源，对应响应头 X-Cache-Status
type Source string

const (
	SourceCache    Source = "HIT"
	SourceUpstream Source = "MISS"
	SourceFallback Source = "FALLBACK"
)

const (
	maxPage     = 500      // 上游分页上限
	maxBodySize = 10 << 20 // 单个上游响应最大 10MB
)

// Observer 接收上游请求的观测数据，*metrics.Metrics 实现了该接口
type Observer interface {
	ObserveUpstream(endpoint, result string, latency time.Duration)
	ObserveFallback()
}

// TTLs 各类数据的缓存时间，零值表示使用缓存的默认TTL
type TTLs struct {
	Popular time.Duration
	Genre   time.Duration
	Search  time.Duration
	Genres  time.Duration
	List    time.Duration
	Detail  time.Duration
}

// TTLsFromConfig 从配置读取各类数据的缓存时间
func TTLsFromConfig(cfg *config.Config) TTLs {
	return TTLs{
		Popular: config.Seconds(cfg.Cache.PopularTTL),
		Genre:   config.Seconds(cfg.Cache.GenreTTL),
		Search:  config.Seconds(cfg.Cache.SearchTTL),
		Genres:  config.Seconds(cfg.Cache.GenresTTL),
		List:    config.Seconds(cfg.Cache.ListTTL),
		Detail:  config.Seconds(cfg.Cache.DetailTTL),
	}
}

// CatalogOptions 创建 CatalogService 的参数
type CatalogOptions struct {
	BaseURL         string
	APIKey          string
	ReadAccessToken string
	Language        string
	Fallback        bool
	TTLs            TTLs
	Retry           RetryConfig
	Client          *http.Client // 为空时使用 DefaultUpstreamTimeout
	Observer        Observer     // 可为空
}

// DefaultUpstreamTimeout 未指定 Client 时的请求超时
const DefaultUpstreamTimeout = 10 * time.Second

// CatalogService 通过缓存访问上游影片目录API
type CatalogService struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	readToken string
	language  string
	retry     RetryConfig
	observer  Observer

	cache    *cache.Cache[[]byte]
	searches *metrics.SearchTracker

	ttls     atomic.Pointer[TTLs]
	fallback atomic.Bool
}

// NewCatalogService 创建目录服务，缓存和搜索统计由调用方创建并注入
func NewCatalogService(c *cache.Cache[[]byte], searches *metrics.SearchTracker, opts CatalogOptions) *CatalogService {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultUpstreamTimeout}
	}

	s := &CatalogService{
		client:    client,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		apiKey:    opts.APIKey,
		readToken: opts.ReadAccessToken,
		language:  opts.Language,
		retry:     opts.Retry,
		observer:  opts.Observer,
		cache:     c,
		searches:  searches,
	}
	ttls := opts.TTLs
	s.ttls.Store(&ttls)
	s.fallback.Store(opts.Fallback)

	if s.apiKey == "" && s.readToken == "" {
		log.Printf("[Catalog] 未配置 TMDB_API_KEY，上游请求将失败")
	}
	return s
}

// ApplyConfig 应用运行时可修改的配置（缓存时间和演示数据开关）
func (s *CatalogService) ApplyConfig(cfg *config.Config) {
	ttls := TTLsFromConfig(cfg)
	s.ttls.Store(&ttls)
	s.fallback.Store(cfg.Catalog.Fallback)
}

// Cache 返回底层响应缓存
func (s *CatalogService) Cache() *cache.Cache[[]byte] {
	return s.cache
}

// Searches 返回搜索频率统计
func (s *CatalogService) Searches() *metrics.SearchTracker {
	return s.searches
}

// GenresKey 分类列表的缓存键
const GenresKey = "genres"

func PopularKey(page int) string { return fmt.Sprintf("popular_%d", page) }

func GenreKey(genreID int64, page int) string { return fmt.Sprintf("genre_%d_%d", genreID, page) }

// SearchKey 搜索词按统计时的规则归一化，大小写不同的搜索共用缓存
func SearchKey(query string, page int) string {
	return fmt.Sprintf("search_%s_%d", metrics.NormalizeTerm(query), page)
}

func TopRatedKey(page int) string { return fmt.Sprintf("top_rated_%d", page) }

func NowPlayingKey(page int) string { return fmt.Sprintf("now_playing_%d", page) }

func MovieKey(id int64) string { return fmt.Sprintf("movie_%d", id) }

// PopularMovies 热门影片
func (s *CatalogService) PopularMovies(ctx context.Context, page int) (*models.MovieResponse, Source, error) {
	if err := validatePage(page); err != nil {
		return nil, "", err
	}
	return fetchThrough(ctx, s, request{
		endpoint: "popular",
		key:      PopularKey(page),
		path:     "/movie/popular",
		query:    pageQuery(page),
		ttl:      s.ttls.Load().Popular,
	}, func() *models.MovieResponse { return fallbackMovieList(page) })
}

// MoviesByGenre 按分类浏览影片
func (s *CatalogService) MoviesByGenre(ctx context.Context, genreID int64, page int) (*models.MovieResponse, Source, error) {
	if genreID <= 0 {
		return nil, "", catalogerrors.New(catalogerrors.ErrInvalidArgument, "genre id must be positive, got %d", genreID)
	}
	if err := validatePage(page); err != nil {
		return nil, "", err
	}

	q := pageQuery(page)
	q.Set("with_genres", strconv.FormatInt(genreID, 10))
	return fetchThrough(ctx, s, request{
		endpoint: "genre",
		key:      GenreKey(genreID, page),
		path:     "/discover/movie",
		query:    q,
		ttl:      s.ttls.Load().Genre,
	}, func() *models.MovieResponse { return fallbackGenreMovies(genreID, page) })
}

// SearchMovies 搜索影片。无论是否命中缓存都会计入搜索统计。
func (s *CatalogService) SearchMovies(ctx context.Context, query string, page int) (*models.MovieResponse, Source, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, "", catalogerrors.New(catalogerrors.ErrInvalidArgument, "search query must not be empty")
	}
	if err := validatePage(page); err != nil {
		return nil, "", err
	}

	s.searches.RecordSearch(query)

	q := pageQuery(page)
	q.Set("query", query)
	return fetchThrough(ctx, s, request{
		endpoint: "search",
		key:      SearchKey(query, page),
		path:     "/search/movie",
		query:    q,
		ttl:      s.ttls.Load().Search,
	}, func() *models.MovieResponse { return fallbackSearch(query, page) })
}

// Genres 分类列表
func (s *CatalogService) Genres(ctx context.Context) (*models.GenreList, Source, error) {
	return fetchThrough(ctx, s, request{
		endpoint: "genres",
		key:      GenresKey,
		path:     "/genre/movie/list",
		query:    url.Values{},
		ttl:      s.ttls.Load().Genres,
	}, fallbackGenres)
}

// TopRatedMovies 高分影片
func (s *CatalogService) TopRatedMovies(ctx context.Context, page int) (*models.MovieResponse, Source, error) {
	if err := validatePage(page); err != nil {
		return nil, "", err
	}
	return fetchThrough(ctx, s, request{
		endpoint: "top_rated",
		key:      TopRatedKey(page),
		path:     "/movie/top_rated",
		query:    pageQuery(page),
		ttl:      s.ttls.Load().List,
	}, func() *models.MovieResponse { return fallbackMovieList(page) })
}

// NowPlayingMovies 正在上映
func (s *CatalogService) NowPlayingMovies(ctx context.Context, page int) (*models.MovieResponse, Source, error) {
	if err := validatePage(page); err != nil {
		return nil, "", err
	}
	return fetchThrough(ctx, s, request{
		endpoint: "now_playing",
		key:      NowPlayingKey(page),
		path:     "/movie/now_playing",
		query:    pageQuery(page),
		ttl:      s.ttls.Load().List,
	}, func() *models.MovieResponse { return fallbackMovieList(page) })
}

// MovieDetails 影片详情，没有演示数据
func (s *CatalogService) MovieDetails(ctx context.Context, id int64) (*models.MovieDetails, Source, error) {
	if id <= 0 {
		return nil, "", catalogerrors.New(catalogerrors.ErrInvalidArgument, "movie id must be positive, got %d", id)
	}
	return fetchThrough[models.MovieDetails](ctx, s, request{
		endpoint: "details",
		key:      MovieKey(id),
		path:     "/movie/" + strconv.FormatInt(id, 10),
		query:    url.Values{},
		ttl:      s.ttls.Load().Detail,
	}, nil)
}

// TopSearches 返回搜索次数最多的词
func (s *CatalogService) TopSearches(limit int) []metrics.SearchTerm {
	return s.searches.TopTerms(limit)
}

type request struct {
	endpoint string
	key      string
	path     string
	query    url.Values
	ttl      time.Duration
}

// fetchThrough 先查缓存，未命中时请求上游并缓存原始响应体。
// 上游失败时返回 CatalogError，启用演示数据时改为返回 fallback() 的结果，不写缓存。
func fetchThrough[T any](ctx context.Context, s *CatalogService, req request, fallback func() *T) (*T, Source, error) {
	if body, ok := s.cache.Get(req.key); ok {
		var v T
		if err := json.Unmarshal(body, &v); err == nil {
			return &v, SourceCache, nil
		}
		log.Printf("[Catalog] 缓存内容无法解析，重新请求: %s", req.key)
		s.cache.Delete(req.key)
	}

	out := new(T)
	body, err := s.fetch(ctx, req, out)
	if err == nil {
		if setErr := s.cache.Set(req.key, body, req.ttl); setErr != nil {
			log.Printf("[Catalog] 写入缓存失败 %s: %v", req.key, setErr)
		}
		return out, SourceUpstream, nil
	}

	if fallback != nil && s.fallback.Load() && ctx.Err() == nil {
		log.Printf("[Catalog] %s 请求失败，返回演示数据: %v", req.endpoint, err)
		if s.observer != nil {
			s.observer.ObserveFallback()
		}
		return fallback(), SourceFallback, nil
	}
	return nil, "", err
}

// fetch 请求上游并把响应解析到 out，同时返回原始响应体
func (s *CatalogService) fetch(ctx context.Context, r request, out any) ([]byte, error) {
	start := time.Now()
	result := "ok"
	defer func() {
		if s.observer != nil {
			s.observer.ObserveUpstream(r.endpoint, result, time.Since(start))
		}
	}()

	q := r.query
	if s.apiKey != "" {
		q.Set("api_key", s.apiKey)
	}
	if s.language != "" {
		q.Set("language", s.language)
	}
	target := s.baseURL + r.path
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		result = "request_error"
		return nil, catalogerrors.Wrap(catalogerrors.ErrUpstreamRequest, err, "build request %s", r.path)
	}
	httpReq.Header.Set("Accept", "application/json")
	if s.readToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.readToken)
	}

	resp, err := ExecuteWithRetry(s.client, httpReq, s.retry)
	if err != nil {
		result = "request_error"
		return nil, catalogerrors.Wrap(catalogerrors.ErrUpstreamRequest, err, "GET %s", r.path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		result = "request_error"
		return nil, catalogerrors.Wrap(catalogerrors.ErrUpstreamRequest, err, "read %s", r.path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result = "status_error"
		ce := catalogerrors.New(catalogerrors.ErrUpstreamStatus, "GET %s returned %d", r.path, resp.StatusCode)
		ce.StatusCode = resp.StatusCode
		return nil, ce
	}

	if err := json.Unmarshal(body, out); err != nil {
		result = "decode_error"
		return nil, catalogerrors.Wrap(catalogerrors.ErrUpstreamDecode, err, "decode %s", r.path)
	}
	return body, nil
}

func validatePage(page int) error {
	if page < 1 || page > maxPage {
		return catalogerrors.New(catalogerrors.ErrInvalidArgument, "page must be between 1 and %d, got %d", maxPage, page)
	}
	return nil
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return q
}
