package config

import "time"

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	DB      DBConfig      `yaml:"db"`
	Bus     BusConfig     `yaml:"bus"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Paging  PagingConfig  `yaml:"paging"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DBConfig struct {
	DSN string `yaml:"dsn"`
}

type BusConfig struct {
	// URL of the NATS server; empty disables activity publishing.
	URL string `yaml:"url"`
}

type StorageConfig struct {
	// AttachmentBucket is required only when S3 credentials are present.
	AttachmentBucket string `yaml:"attachment_bucket"`
}

type AuthConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type PagingConfig struct {
	PageSize    int `yaml:"page_size"`
	MaxPageSize int `yaml:"max_page_size"`
}
