package cache

import (
	"log"
	"time"
)

// StartCleanup 启动后台清理协程，按 interval 定期调用 ClearExpired。
// 已经在运行时重复调用会先停止旧协程。interval <= 0 时不启动。
func (c *Cache[V]) StartCleanup(interval time.Duration) {
	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()

	c.stopLocked()
	if interval <= 0 {
		return
	}

	stop := make(chan struct{})
	c.stopCleanup = stop
	ticker := c.clock.Ticker(interval)

	c.cleanupWg.Add(1)
	go func() {
		defer c.cleanupWg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.ClearExpired()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("[Cache] %s 清理协程已启动, 间隔 %s", c.name, interval)
}

// Stop 停止后台清理协程并等待其退出，可重复调用
func (c *Cache[V]) Stop() {
	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()
	c.stopLocked()
}

func (c *Cache[V]) stopLocked() {
	if c.stopCleanup == nil {
		return
	}
	close(c.stopCleanup)
	c.stopCleanup = nil
	c.cleanupWg.Wait()
}
