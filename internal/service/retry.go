package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	MaxRetries   int           // 最大重试次数
	InitialDelay time.Duration // 初始延迟
	MaxDelay     time.Duration // 最大延迟
	Multiplier   float64       // 延迟倍增因子
}

// DefaultRetryConfig 默认重试配置
var DefaultRetryConfig = RetryConfig{
	MaxRetries:   2,                      // 最多重试2次 (总共3次请求)
	InitialDelay: 100 * time.Millisecond, // 初始延迟100ms
	MaxDelay:     2 * time.Second,        // 最大延迟2s
	Multiplier:   2.0,                    // 指数退避因子
}

// isRetriableError 判断错误是否可重试
func isRetriableError(err error) bool {
	if err == nil {
		return false
	}

	// 调用方主动取消的请求不重试
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retriableErrors := []string{
		"timeout",
		"temporary failure",
		"connection reset",
		"connection refused",
		"no such host",
		"eof",
		"broken pipe",
	}

	for _, retryErr := range retriableErrors {
		if strings.Contains(errStr, retryErr) {
			return true
		}
	}

	return false
}

// isRetriableStatusCode 判断HTTP状态码是否可重试
func isRetriableStatusCode(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ExecuteWithRetry 执行带重试的HTTP请求。
// 所有重试都得到可重试状态码时返回最后一次响应，由调用方检查状态码。
func ExecuteWithRetry(client *http.Client, req *http.Request, config RetryConfig) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response
	delay := config.InitialDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}

			log.Printf("[Retry] Attempt %d/%d for %s (delay: %v, last error: %v)",
				attempt+1, config.MaxRetries+1, req.URL.Path, delay, lastErr)

			delay = time.Duration(float64(delay) * config.Multiplier)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		resp, err := client.Do(req.Clone(req.Context()))
		if err == nil {
			if !isRetriableStatusCode(resp.StatusCode) || attempt == config.MaxRetries {
				return resp, nil
			}

			lastResp = resp
			lastErr = fmt.Errorf("retriable status code: %d", resp.StatusCode)
			resp.Body.Close()
			continue
		}

		lastErr = err
		if !isRetriableError(err) {
			log.Printf("[Retry] Non-retriable error for %s: %v", req.URL.Path, err)
			return nil, err
		}
		log.Printf("[Retry] Retriable error for %s: %v", req.URL.Path, err)
	}

	if lastResp != nil {
		// 最后一次响应的 body 已关闭，只能返回错误
		return nil, fmt.Errorf("max retries exceeded: %v", lastErr)
	}

	log.Printf("[Retry] Max retries exceeded for %s: %v", req.URL.Path, lastErr)
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
