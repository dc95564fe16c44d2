package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode int

const (
	ErrInvalidConfig ErrorCode = iota + 1
	ErrInvalidArgument
	ErrUpstreamRequest // 请求上游失败（网络、超时）
	ErrUpstreamStatus  // 上游返回非 2xx
	ErrUpstreamDecode  // 上游响应无法解析
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidConfig:
		return "invalid_config"
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrUpstreamRequest:
		return "upstream_request"
	case ErrUpstreamStatus:
		return "upstream_status"
	case ErrUpstreamDecode:
		return "upstream_decode"
	default:
		return fmt.Sprintf("error_%d", int(c))
	}
}

// CatalogError 影片目录请求的错误。缓存未命中不是错误，不会产生 CatalogError。
type CatalogError struct {
	Code       ErrorCode
	Message    string
	StatusCode int // 上游HTTP状态码，仅 ErrUpstreamStatus 时有效
	Err        error
}

func (e *CatalogError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// New 创建不带底层错误的 CatalogError
func New(code ErrorCode, format string, args ...any) *CatalogError {
	return &CatalogError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 用 CatalogError 包装底层错误
func Wrap(code ErrorCode, err error, format string, args ...any) *CatalogError {
	return &CatalogError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf 返回错误链中 CatalogError 的错误码，没有时返回 0
func CodeOf(err error) ErrorCode {
	var ce *CatalogError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

// IsUpstream 判断是否为上游请求失败
func IsUpstream(err error) bool {
	switch CodeOf(err) {
	case ErrUpstreamRequest, ErrUpstreamStatus, ErrUpstreamDecode:
		return true
	}
	return false
}
