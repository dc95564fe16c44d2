package compression

import (
	"compress/gzip"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
)

// resetWriter 可复用的压缩 writer
type resetWriter interface {
	io.WriteCloser
	Reset(w io.Writer)
}

// pooledWriter Close 后把底层 writer 放回池中
type pooledWriter struct {
	resetWriter
	pool *sync.Pool
	once sync.Once
}

func (p *pooledWriter) Close() error {
	err := p.resetWriter.Close()
	p.once.Do(func() {
		p.pool.Put(p.resetWriter)
	})
	return err
}

func acquire(pool *sync.Pool, w io.Writer) io.WriteCloser {
	zw := pool.Get().(resetWriter)
	zw.Reset(w)
	return &pooledWriter{resetWriter: zw, pool: pool}
}

// GzipCompressor 按级别复用 gzip.Writer
type GzipCompressor struct {
	level int
	pool  sync.Pool
}

func NewGzipCompressor(level int) *GzipCompressor {
	if level < gzip.DefaultCompression || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	g := &GzipCompressor{level: level}
	g.pool.New = func() any {
		// level 已校验，不会出错
		zw, _ := gzip.NewWriterLevel(io.Discard, g.level)
		return zw
	}
	return g
}

func (g *GzipCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	return acquire(&g.pool, w), nil
}

// BrotliCompressor 按级别复用 brotli.Writer，级别范围 0-11
type BrotliCompressor struct {
	level int
	pool  sync.Pool
}

func NewBrotliCompressor(level int) *BrotliCompressor {
	if level < brotli.BestSpeed || level > brotli.BestCompression {
		level = brotli.DefaultCompression
	}
	b := &BrotliCompressor{level: level}
	b.pool.New = func() any {
		return brotli.NewWriterLevel(io.Discard, b.level)
	}
	return b
}

func (b *BrotliCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	return acquire(&b.pool, w), nil
}
