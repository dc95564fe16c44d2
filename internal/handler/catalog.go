package handler

import (
	"context"
	"movie-cache/internal/service"
	"net/http"
)

// CatalogHandler 影片目录接口
type CatalogHandler struct {
	svc *service.CatalogService
}

// NewCatalogHandler 创建影片目录处理器
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// servePaged 处理只带 page 参数的列表接口
func servePaged[T any](fetch func(ctx context.Context, page int) (*T, service.Source, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}
		page, err := intParam(r, "page", 1)
		if err != nil {
			writeError(w, r, err)
			return
		}
		v, src, err := fetch(r.Context(), page)
		writeResult(w, r, v, src, err)
	}
}

// writeResult 写入查询结果并设置 X-Cache-Status
func writeResult(w http.ResponseWriter, r *http.Request, v any, src service.Source, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set(CacheStatusHeader, string(src))
	writeJSON(w, http.StatusOK, v)
}

// Popular GET /api/movies/popular?page=
func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	servePaged(h.svc.PopularMovies)(w, r)
}

// TopRated GET /api/movies/top-rated?page=
func (h *CatalogHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	servePaged(h.svc.TopRatedMovies)(w, r)
}

// NowPlaying GET /api/movies/now-playing?page=
func (h *CatalogHandler) NowPlaying(w http.ResponseWriter, r *http.Request) {
	servePaged(h.svc.NowPlayingMovies)(w, r)
}

// ByGenre GET /api/movies/genre?id=&page=
func (h *CatalogHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	genreID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, src, err := h.svc.MoviesByGenre(r.Context(), genreID, page)
	writeResult(w, r, v, src, err)
}

// Details GET /api/movies/detail?id=
func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, src, err := h.svc.MovieDetails(r.Context(), id)
	writeResult(w, r, v, src, err)
}

// Search GET /api/search?q=&page=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, src, err := h.svc.SearchMovies(r.Context(), r.URL.Query().Get("q"), page)
	writeResult(w, r, v, src, err)
}

// Genres GET /api/genres
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	v, src, err := h.svc.Genres(r.Context())
	writeResult(w, r, v, src, err)
}
