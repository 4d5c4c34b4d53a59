package config

import "github.com/knadh/koanf/v2"

type StorageConfig interface {
	GetDatabaseURL() string
	GetRedisAddr() string
	GetS3() S3
}

// S3 describes the S3-compatible bucket that receives avatar and cover images.
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string // Base URL objects are served from; defaults to Endpoint/Bucket
}

// Enabled reports whether enough is configured to upload media.
func (s S3) Enabled() bool {
	return s.Bucket != "" && s.Region != ""
}

type Storage struct {
	DatabaseURL string
	RedisAddr   string
	S3          S3
}

var _ StorageConfig = Storage{}

func (s Storage) GetDatabaseURL() string {
	return s.DatabaseURL
}

func (s Storage) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Storage) GetS3() S3 {
	return s.S3
}

func loadStorage(k *koanf.Koanf) Storage {
	return Storage{
		DatabaseURL: k.String(databaseURLVar),
		RedisAddr:   k.String(redisAddrVar),
		S3: S3{
			Bucket:    k.String(s3BucketVar),
			Region:    k.String(s3RegionVar),
			Endpoint:  k.String(s3EndpointVar),
			AccessKey: k.String(s3AccessKeyVar),
			SecretKey: k.String(s3SecretKeyVar),
			PublicURL: k.String(s3PublicURLVar),
		},
	}
}
