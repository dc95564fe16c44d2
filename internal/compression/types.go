package compression

import "io"

// Compressor 定义压缩器接口
type Compressor interface {
	Compress(w io.Writer) (io.WriteCloser, error)
}

// CompressionType 表示压缩类型，取值与 Content-Encoding 一致
type CompressionType string

const (
	CompressionGzip   CompressionType = "gzip"
	CompressionBrotli CompressionType = "br"
)

// Manager 压缩管理器接口
type Manager interface {
	// SelectCompressor 根据 Accept-Encoding 头选择合适的压缩器，
	// 客户端不接受任何已启用的编码时返回 nil
	SelectCompressor(acceptEncoding string) (Compressor, CompressionType)
}
