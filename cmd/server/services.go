package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vidtube/vidtube-server/auth"
	"github.com/vidtube/vidtube-server/internal/config"
	"github.com/vidtube/vidtube-server/internal/database"
	"github.com/vidtube/vidtube-server/internal/limiter"
	"github.com/vidtube/vidtube-server/media"
	"github.com/vidtube/vidtube-server/server"
	"github.com/vidtube/vidtube-server/token"
	"github.com/vidtube/vidtube-server/users"
	userpostgres "github.com/vidtube/vidtube-server/users/postgres"
	fakeuserrepo "github.com/vidtube/vidtube-server/users/repofake"
	"github.com/vidtube/vidtube-server/videos"
	videopostgres "github.com/vidtube/vidtube-server/videos/postgres"
	fakevideorepo "github.com/vidtube/vidtube-server/videos/repofake"
)

// dependencies holds the wired services and whatever must be closed on exit.
type dependencies struct {
	server.Services
	closers []func() error
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

func buildServices(ctx context.Context, c config.Config) (*dependencies, error) {
	deps := &dependencies{}

	repo, videoRepo, err := newRepos(ctx, c, deps)
	if err != nil {
		deps.Close()
		return nil, err
	}

	tokens, err := token.NewManager(c)
	if err != nil {
		deps.Close()
		return nil, err
	}

	var sessionOpts []auth.SessionServiceOption
	if addr := c.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		deps.closers = append(deps.closers, client.Close)
		sessionOpts = append(sessionOpts, auth.WithLoginLimiter(
			limiter.NewLoginLimiter(client, c.GetLoginMaxAttempts(), c.GetLoginWindow()),
		))
		log.Info().Str("addr", addr).Msg("login limiter enabled")
	}

	sessions, err := auth.NewSessionService(repo, tokens, sessionOpts...)
	if err != nil {
		deps.Close()
		return nil, err
	}

	uploader, err := newUploader(ctx, c, deps)
	if err != nil {
		deps.Close()
		return nil, err
	}

	accounts, err := auth.NewAccountService(repo, uploader)
	if err != nil {
		deps.Close()
		return nil, err
	}

	videoService, err := videos.NewVideoService(videoRepo, uploader)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Sessions = sessions
	deps.Accounts = accounts
	deps.Videos = videoService
	return deps, nil
}

// newRepos connects to Postgres when DATABASE_URL is set and falls back to
// in-memory stores otherwise.
func newRepos(ctx context.Context, c config.Config, deps *dependencies) (users.UserRepo, videos.VideoRepo, error) {
	dsn := c.GetDatabaseURL()
	if dsn == "" {
		log.Warn().Msg("DATABASE_URL not set, users and videos are kept in memory")
		return fakeuserrepo.NewFakeUserRepo(), fakevideorepo.NewFakeVideoRepo(), nil
	}

	db, err := database.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	deps.closers = append(deps.closers, db.Close)
	if err := database.Migrate(ctx, db); err != nil {
		return nil, nil, err
	}
	deps.Health = append(deps.Health, db)
	return userpostgres.NewRepo(db), videopostgres.NewRepo(db), nil
}

// newUploader returns the S3 uploader when a bucket is configured. Otherwise
// uploads are kept in memory and served by this process.
func newUploader(ctx context.Context, c config.Config, deps *dependencies) (media.Uploader, error) {
	if s3 := c.GetS3(); s3.Enabled() {
		return media.NewS3Uploader(ctx, s3)
	}

	baseURL := fmt.Sprintf("http://localhost%s/media", portSuffix(c.GetPort()))
	memory := media.NewMemoryUploader(baseURL)
	deps.Media = memory
	log.Warn().Str("baseURL", baseURL).Msg("S3 not configured, media is kept in memory")
	return memory, nil
}

func portSuffix(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":" + addr
}
