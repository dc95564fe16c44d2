package middleware

import (
	"bufio"
	"io"
	"mime"
	"movie-cache/internal/compression"
	"net/http"
	"strings"
)

const (
	defaultBufferSize = 32 * 1024 // 32KB
)

// compressResponseWriter 在写入响应头时决定是否压缩
type compressResponseWriter struct {
	http.ResponseWriter
	compressor     compression.Compressor
	encoding       compression.CompressionType
	writer         io.WriteCloser
	bufferedWriter *bufio.Writer
	written        bool
	compressed     bool
}

// Compression 按 Accept-Encoding 压缩 JSON/文本响应
func Compression(manager compression.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			compressor, encoding := manager.SelectCompressor(r.Header.Get("Accept-Encoding"))
			if compressor == nil {
				next.ServeHTTP(w, r)
				return
			}

			cw := &compressResponseWriter{
				ResponseWriter: w,
				compressor:     compressor,
				encoding:       encoding,
			}
			w.Header().Add("Vary", "Accept-Encoding")
			defer cw.close()

			next.ServeHTTP(cw, r)
		})
	}
}

func (cw *compressResponseWriter) WriteHeader(statusCode int) {
	if cw.written {
		return
	}
	cw.written = true

	h := cw.Header()
	cw.compressed = shouldCompressForStatus(statusCode) &&
		h.Get("Content-Encoding") == "" &&
		shouldCompressType(h.Get("Content-Type"))

	if cw.compressed {
		h.Set("Content-Encoding", string(cw.encoding))
		h.Del("Content-Length") // 压缩后原长度不再有效
	}
	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if !cw.written {
		if cw.Header().Get("Content-Type") == "" {
			cw.Header().Set("Content-Type", http.DetectContentType(b))
		}
		cw.WriteHeader(http.StatusOK)
	}

	if !cw.compressed {
		return cw.ResponseWriter.Write(b)
	}

	// 延迟初始化压缩写入器
	if cw.writer == nil {
		var err error
		cw.writer, err = cw.compressor.Compress(cw.ResponseWriter)
		if err != nil {
			return 0, err
		}
		cw.bufferedWriter = bufio.NewWriterSize(cw.writer, defaultBufferSize)
	}

	return cw.bufferedWriter.Write(b)
}

// Flush 实现 http.Flusher 接口
func (cw *compressResponseWriter) Flush() {
	if cw.bufferedWriter != nil {
		cw.bufferedWriter.Flush()
	}
	if f, ok := cw.writer.(interface{ Flush() error }); ok {
		f.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap 供 http.ResponseController 使用
func (cw *compressResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

func (cw *compressResponseWriter) close() {
	if cw.writer == nil {
		return
	}
	if cw.bufferedWriter != nil {
		cw.bufferedWriter.Flush()
	}
	cw.writer.Close()
}

// 只压缩成功的响应
func shouldCompressForStatus(status int) bool {
	return status == http.StatusOK ||
		status == http.StatusCreated ||
		status == http.StatusAccepted ||
		status == http.StatusNonAuthoritativeInfo ||
		status == http.StatusPartialContent
}

// 判断是否应该对该内容类型进行压缩
func shouldCompressType(contentType string) bool {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	compressiblePrefixes := []string{
		"text/",
		"application/json",
		"application/javascript",
		"application/xml",
	}
	for _, prefix := range compressiblePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}

	return false
}
