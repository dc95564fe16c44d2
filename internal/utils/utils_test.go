package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 Bytes", FormatBytes(512))
	assert.Equal(t, "1.50 KB", FormatBytes(1536))
	assert.Equal(t, "2.00 MB", FormatBytes(2*1024*1024))
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "45秒", FormatUptime(45*time.Second))
	assert.Equal(t, "2分5秒", FormatUptime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1天2小时0分3秒", FormatUptime(26*time.Hour+3*time.Second))
}

func TestHitRate(t *testing.T) {
	assert.Equal(t, 0.0, HitRate(0, 0))
	assert.Equal(t, 75.0, HitRate(3, 1))
}
