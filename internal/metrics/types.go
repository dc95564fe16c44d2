package metrics

// SearchTerm 搜索词及其次数，用于API返回
type SearchTerm struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// termStats 单个搜索词的统计
type termStats struct {
	count int64
	seq   uint64 // 首次出现的顺序，次数相同时先出现的排前面
}
