package config

import "fmt"

const (
	portEnvVar    = "port"
	appNameVar    = "app_name"
	envVar        = "env"
	logLevelVar   = "log_level"
	corsOriginVar = "cors_origin"

	accessTokenSecretVar  = "access_token_secret"
	accessTokenExpiryVar  = "access_token_expiry"
	refreshTokenSecretVar = "refresh_token_secret"
	refreshTokenExpiryVar = "refresh_token_expiry"

	databaseURLVar = "database_url"
	redisAddrVar   = "redis_addr"
	s3BucketVar    = "s3_bucket"
	s3RegionVar    = "s3_region"
	s3EndpointVar  = "s3_endpoint"
	s3AccessKeyVar = "s3_access_key"
	s3SecretKeyVar = "s3_secret_key"
	s3PublicURLVar = "s3_public_url"

	loginMaxAttemptsVar = "login_max_attempts"
	loginWindowVar      = "login_window"
)

var knownKeys = map[string]struct{}{
	portEnvVar: {}, appNameVar: {}, envVar: {}, logLevelVar: {}, corsOriginVar: {},
	accessTokenSecretVar: {}, accessTokenExpiryVar: {}, refreshTokenSecretVar: {}, refreshTokenExpiryVar: {},
	databaseURLVar: {}, redisAddrVar: {},
	s3BucketVar: {}, s3RegionVar: {}, s3EndpointVar: {}, s3AccessKeyVar: {}, s3SecretKeyVar: {}, s3PublicURLVar: {},
	loginMaxAttemptsVar: {}, loginWindowVar: {},
}

type EnvVars struct {
	Port     string
	AppName  string
	Env      string
	LogLevel string
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}
