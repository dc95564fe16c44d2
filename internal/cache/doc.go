// Package cache 实现进程内的 TTL 缓存，用于保存上游影片目录 API 的响应。
//
// 每个条目在写入时记录创建时间和过期时间。过期条目在 Get 时被删除，
// 同时可以通过 StartCleanup 启动后台协程定期清理。缓存已满时淘汰
// 最早写入的条目（按写入顺序，而不是按访问顺序）。
package cache
