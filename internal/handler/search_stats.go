package handler

import (
	"movie-cache/internal/constants"
	catalogerrors "movie-cache/internal/errors"
	"movie-cache/internal/metrics"
	"net/http"
)

// SearchStatsHandler 搜索频率统计接口
type SearchStatsHandler struct {
	tracker *metrics.SearchTracker
}

func NewSearchStatsHandler(tracker *metrics.SearchTracker) *SearchStatsHandler {
	return &SearchStatsHandler{tracker: tracker}
}

// TopSearchesResponse 热门搜索响应
type TopSearchesResponse struct {
	Terms       []metrics.SearchTerm `json:"terms"`
	UniqueTerms int                  `json:"unique_terms"`
	Total       int64                `json:"total_searches"`
}

// GetTopSearches GET /admin/api/search/top?limit=
func (h *SearchStatsHandler) GetTopSearches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	limit, err := intParam(r, "limit", constants.Get().DefaultTopSearches)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit < 0 {
		writeError(w, r, catalogerrors.New(catalogerrors.ErrInvalidArgument, "limit must not be negative"))
		return
	}
	if limit > constants.MaxTopSearches {
		limit = constants.MaxTopSearches
	}

	writeJSON(w, http.StatusOK, TopSearchesResponse{
		Terms:       h.tracker.TopTerms(limit),
		UniqueTerms: h.tracker.Len(),
		Total:       h.tracker.Total(),
	})
}

// ResetSearches POST /admin/api/search/reset
func (h *SearchStatsHandler) ResetSearches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	h.tracker.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"message": "搜索统计已重置"})
}
