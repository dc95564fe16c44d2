package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"movie-cache/internal/config"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bothEnabled() config.CompressionConfig {
	return config.CompressionConfig{
		Gzip:   config.CompressorConfig{Enabled: true, Level: 6},
		Brotli: config.CompressorConfig{Enabled: true, Level: 6},
	}
}

func TestSelectCompressorPrefersBrotli(t *testing.T) {
	m := NewManager(bothEnabled())

	_, enc := m.SelectCompressor("gzip, deflate, br")
	assert.Equal(t, CompressionBrotli, enc)

	_, enc = m.SelectCompressor("gzip")
	assert.Equal(t, CompressionGzip, enc)

	c, enc := m.SelectCompressor("identity")
	assert.Nil(t, c)
	assert.Equal(t, CompressionType(""), enc)
}

func TestSelectCompressorHonorsQZero(t *testing.T) {
	m := NewManager(bothEnabled())

	_, enc := m.SelectCompressor("br;q=0, gzip;q=0.8")
	assert.Equal(t, CompressionGzip, enc)
}

func TestDisabledCompressorIsSkipped(t *testing.T) {
	cfg := bothEnabled()
	cfg.Brotli.Enabled = false
	m := NewManager(cfg)

	_, enc := m.SelectCompressor("br, gzip")
	assert.Equal(t, CompressionGzip, enc)
}

func TestDynamicManagerUpdate(t *testing.T) {
	d := NewDynamicManager(bothEnabled())
	_, enc := d.SelectCompressor("br")
	assert.Equal(t, CompressionBrotli, enc)

	d.Update(config.CompressionConfig{})
	c, _ := d.SelectCompressor("br, gzip")
	assert.Nil(t, c)
}

func TestCompressorsRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"title":"The Matrix"}`), 50)

	var buf bytes.Buffer
	w, err := NewBrotliCompressor(99).Compress(&buf)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := io.ReadAll(brotli.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	buf.Reset()
	w, err = NewGzipCompressor(-5).Compress(&buf)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	gr, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	out, err = io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestGzipCompressorReusesWriters(t *testing.T) {
	c := NewGzipCompressor(gzip.BestSpeed)

	for _, payload := range []string{"first body", "second body"} {
		var buf bytes.Buffer
		w, err := c.Compress(&buf)
		require.NoError(t, err)
		_, err = io.WriteString(w, payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		// 重复 Close 不会把 writer 重复放回池
		_ = w.Close()

		gr, err := gzip.NewReader(&buf)
		require.NoError(t, err)
		out, err := io.ReadAll(gr)
		require.NoError(t, err)
		assert.Equal(t, payload, string(out))
	}
}
