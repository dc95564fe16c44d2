package metrics

import (
	"log"
	"sort"
	"strings"
	"sync"
)

// SearchTracker 记录搜索词出现的次数。
// 搜索词去除首尾空白并转为小写后计数，条目不会过期。
type SearchTracker struct {
	mu       sync.Mutex
	terms    map[string]*termStats
	nextSeq  uint64
	maxTerms int
	total    int64 // Reset 清零
	recorded int64 // 累计次数，不受 Reset 影响
}

// NewSearchTracker 创建搜索统计。maxTerms <= 0 表示不限制搜索词数量。
func NewSearchTracker(maxTerms int) *SearchTracker {
	if maxTerms < 0 {
		maxTerms = 0
	}
	return &SearchTracker{
		terms:    make(map[string]*termStats),
		maxTerms: maxTerms,
	}
}

// NormalizeTerm 返回用于计数和缓存键的搜索词形式
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// RecordSearch 记录一次搜索，空搜索词被忽略
func (t *SearchTracker) RecordSearch(term string) {
	term = NormalizeTerm(term)
	if term == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.recorded++
	if stats, ok := t.terms[term]; ok {
		stats.count++
		return
	}

	if t.maxTerms > 0 && len(t.terms) >= t.maxTerms {
		t.dropLeastFrequentLocked()
	}

	t.nextSeq++
	t.terms[term] = &termStats{count: 1, seq: t.nextSeq}
}

// TopTerms 按次数从高到低返回最多 limit 个搜索词。
// 次数相同时先出现的搜索词排在前面。
func (t *SearchTracker) TopTerms(limit int) []SearchTerm {
	if limit <= 0 {
		return []SearchTerm{}
	}

	t.mu.Lock()
	type ranked struct {
		term string
		termStats
	}
	all := make([]ranked, 0, len(t.terms))
	for term, stats := range t.terms {
		all = append(all, ranked{term: term, termStats: *stats})
	}
	t.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].seq < all[j].seq
	})

	if len(all) > limit {
		all = all[:limit]
	}

	result := make([]SearchTerm, len(all))
	for i, r := range all {
		result[i] = SearchTerm{Term: r.term, Count: r.count}
	}
	return result
}

// Len 返回不同搜索词的数量
func (t *SearchTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.terms)
}

// Total 返回记录的搜索总次数
func (t *SearchTracker) Total() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Recorded 返回自创建以来记录的搜索总次数，Reset 不会清零
func (t *SearchTracker) Recorded() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recorded
}

// Reset 清空所有搜索统计
func (t *SearchTracker) Reset() {
	t.mu.Lock()
	t.terms = make(map[string]*termStats)
	t.nextSeq = 0
	t.total = 0
	t.mu.Unlock()

	log.Printf("[Search] 搜索统计已清空")
}

// dropLeastFrequentLocked 删除次数最少的搜索词，次数相同时删除最早出现的
func (t *SearchTracker) dropLeastFrequentLocked() {
	var victim string
	var victimStats *termStats
	for term, stats := range t.terms {
		if victimStats == nil ||
			stats.count < victimStats.count ||
			(stats.count == victimStats.count && stats.seq < victimStats.seq) {
			victim = term
			victimStats = stats
		}
	}
	if victimStats != nil {
		delete(t.terms, victim)
	}
}
