// @title         PolicyX-Ray API
// @version       0.1.0
// @description   Privacy policy risk scoring: regex categories and model clause classification

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"policyxray/internal/adapters/llm"
	"policyxray/internal/core/rulepack"
	"policyxray/internal/modkit/httpkit"
	"policyxray/internal/platform/config"
	"policyxray/internal/platform/logger"
	"policyxray/internal/platform/metrics"
	phttp "policyxray/internal/platform/net/http"
	"policyxray/internal/platform/net/middleware"

	"policyxray/internal/services/api"
)

func main() {
	files := config.LoadDotEnv(".env")

	// XRAY_* for everything service scoped; the server reads XRAY_API_PORT
	root := config.New().Prefix("XRAY_")
	apiCfg := root.Prefix("API_")

	lo := logger.FromEnv()
	if lo.Service == "" {
		lo.Service = "policyxray-api"
	}
	logger.Init(lo)
	l := logger.Get()
	if len(files) > 0 {
		l.Debug().Strs("files", files).Msg("dotenv loaded")
	}

	pack, err := loadPack(root.MayString("RULEPACK_PATH", ""))
	if err != nil {
		l.Panic().Err(err).Msg("rulepack load failed")
	}

	model, err := llm.FromConfig(root.Prefix("MODEL_"), llm.KindNone)
	if err != nil {
		l.Panic().Err(err).Msg("model backend config invalid")
	}

	// enhancement reuses the model backend unless XRAY_ENHANCE_KIND says otherwise
	enhance := model
	if root.MayString("ENHANCE_KIND", "") != "" {
		if enhance, err = llm.New(llm.EnhanceOptionsFrom(root.Prefix("ENHANCE_"), llm.KindNone)); err != nil {
			l.Panic().Err(err).Msg("enhance backend config invalid")
		}
	}

	l.Info().
		Int("categories", len(pack.Categories)).
		Int("patterns", pack.PatternCount()).
		Str("model", backendName(model)).
		Str("enhance", backendName(enhance)).
		Msg("policyxray starting")

	srv := phttp.NewServer(root)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:  config.New(),
			Logger:  l,
			Pack:    pack,
			Model:   model,
			Enhance: enhance,
			Metrics: metrics.New(),
			Stack: httpkit.StackOptions{
				CORS:    middleware.CORSOptions{AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", []string{"*"})},
				Timeout: apiCfg.MayDuration("TIMEOUT", 5*time.Minute),
				Slow:    apiCfg.MayDuration("SLOW", 30*time.Second),
			},
			MaxInFlight:    apiCfg.MayInt("MAX_INFLIGHT", 0),
			Backlog:        apiCfg.MayInt("BACKLOG", 32),
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

func loadPack(path string) (*rulepack.Pack, error) {
	if path == "" {
		return rulepack.Load()
	}
	return rulepack.LoadFile(path)
}

func backendName(b llm.Backend) string {
	if b == nil {
		return llm.KindNone
	}
	return b.Name()
}
