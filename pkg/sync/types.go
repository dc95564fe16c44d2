package sync

import "time"

// Config S3 连接配置
type Config struct {
	Endpoint        string `json:"endpoint"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	AccessKeyID     string `json:"-"`
	SecretAccessKey string `json:"-"`
	UsePathStyle    bool   `json:"use_path_style"`
}

// SnapshotFunc 返回要上传的统计快照，结果会被编码为 JSON
type SnapshotFunc func() any

// ReportStatus 上传状态
type ReportStatus struct {
	LastUpload time.Time `json:"last_upload"`
	LastKey    string    `json:"last_key,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	Uploads    int64     `json:"uploads"`
	Failures   int64     `json:"failures"`
	IsRunning  bool      `json:"is_running"`
}
