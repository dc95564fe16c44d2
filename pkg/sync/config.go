package sync

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// 统计上传使用的环境变量
const (
	EnvEndpoint     = "SYNC_S3_ENDPOINT"
	EnvBucket       = "SYNC_S3_BUCKET"
	EnvRegion       = "SYNC_S3_REGION"
	EnvAccessKeyID  = "SYNC_S3_ACCESS_KEY_ID"
	EnvSecretKey    = "SYNC_S3_SECRET_ACCESS_KEY"
	EnvUsePathStyle = "SYNC_S3_USE_PATH_STYLE"

	defaultRegion = "us-east-1"
)

// LookupFunc 与 os.LookupEnv 签名一致
type LookupFunc func(key string) (string, bool)

// NewConfigFromEnv 从进程环境变量创建配置
func NewConfigFromEnv() (*Config, error) {
	return NewConfigFromLookup(os.LookupEnv)
}

// NewConfigFromLookup 从 lookup 读取配置并校验
func NewConfigFromLookup(lookup LookupFunc) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Endpoint:        get(EnvEndpoint, ""),
		Bucket:          get(EnvBucket, ""),
		Region:          get(EnvRegion, defaultRegion),
		AccessKeyID:     get(EnvAccessKeyID, ""),
		SecretAccessKey: get(EnvSecretKey, ""),
	}
	if raw := get(EnvUsePathStyle, ""); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvUsePathStyle, raw, err)
		}
		cfg.UsePathStyle = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sync config: %w", err)
	}
	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []error
	if c.Bucket == "" {
		errs = append(errs, errors.New("bucket name is required"))
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		errs = append(errs, errors.New("access key ID and secret access key are required"))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("region is required"))
	}
	return errors.Join(errs...)
}

// IsConfigComplete 检查上传所需的环境变量是否齐全
func IsConfigComplete() bool {
	for _, key := range []string{EnvBucket, EnvAccessKeyID, EnvSecretKey} {
		if v, ok := os.LookupEnv(key); !ok || v == "" {
			return false
		}
	}
	return true
}
