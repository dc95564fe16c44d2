package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Uploader 上传对象，*S3Client 实现了该接口
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// uploadTimeout 单次上传的超时时间
const uploadTimeout = 30 * time.Second

// Reporter 定期把统计快照上传到对象存储，只写不读
type Reporter struct {
	uploader Uploader
	prefix   string
	interval time.Duration
	snapshot SnapshotFunc
	clock    clock.Clock

	mu     sync.Mutex
	status ReportStatus

	runMu sync.Mutex
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewReporter 创建报告上传器，clk 为空时使用系统时钟
func NewReporter(uploader Uploader, prefix string, interval time.Duration, snapshot SnapshotFunc, clk clock.Clock) *Reporter {
	if clk == nil {
		clk = clock.New()
	}
	return &Reporter{
		uploader: uploader,
		prefix:   strings.Trim(prefix, "/"),
		interval: interval,
		snapshot: snapshot,
		clock:    clk,
	}
}

// Start 启动定时上传，重复调用无效
func (r *Reporter) Start() {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.stop != nil || r.interval <= 0 {
		return
	}

	stop := make(chan struct{})
	r.stop = stop
	ticker := r.clock.Ticker(r.interval)
	r.setRunning(true)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
				if err := r.UploadNow(ctx); err != nil {
					log.Printf("[Sync] 上传统计报告失败: %v", err)
				}
				cancel()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("[Sync] 统计报告上传已启动, 间隔 %s, 前缀 %s", r.interval, r.prefix)
}

// Stop 停止定时上传并等待协程退出，可重复调用
func (r *Reporter) Stop() {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.stop == nil {
		return
	}
	close(r.stop)
	r.stop = nil
	r.wg.Wait()
	r.setRunning(false)
	log.Printf("[Sync] 统计报告上传已停止")
}

// UploadNow 立即生成并上传一份快照，返回上传失败的错误
func (r *Reporter) UploadNow(ctx context.Context) error {
	now := r.clock.Now().UTC()
	key := r.objectKey(now)

	data, err := json.MarshalIndent(r.snapshot(), "", "  ")
	if err != nil {
		r.recordResult(now, key, err)
		return fmt.Errorf("encode report: %w", err)
	}

	err = r.uploader.Upload(ctx, key, data)
	r.recordResult(now, key, err)
	if err != nil {
		return err
	}

	log.Printf("[Sync] 统计报告已上传: %s (%d bytes)", key, len(data))
	return nil
}

// Status 返回上传状态
func (r *Reporter) Status() ReportStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// objectKey 生成形如 prefix/2006/01/02/150405.json 的对象键
func (r *Reporter) objectKey(t time.Time) string {
	name := t.Format("2006/01/02/150405") + ".json"
	if r.prefix == "" {
		return name
	}
	return r.prefix + "/" + name
}

func (r *Reporter) recordResult(at time.Time, key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.status.Failures++
		r.status.LastError = err.Error()
		return
	}
	r.status.Uploads++
	r.status.LastUpload = at
	r.status.LastKey = key
	r.status.LastError = ""
}

func (r *Reporter) setRunning(running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.IsRunning = running
}
