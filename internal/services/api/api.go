// Package api provides the HTTP API for the policyxray service
package api

import (
	"net/http"
	"time"

	"policyxray/internal/adapters/llm"
	"policyxray/internal/core/rulepack"
	"policyxray/internal/platform/config"
	"policyxray/internal/platform/logger"
	"policyxray/internal/platform/metrics"
	phttp "policyxray/internal/platform/net/http"
	"policyxray/internal/platform/net/middleware"

	"policyxray/internal/modkit"
	"policyxray/internal/modkit/httpkit"
	"policyxray/internal/modkit/module"
	"policyxray/internal/modkit/swaggerkit"

	analyzemod "policyxray/internal/services/api/analyze/module"
	metamod "policyxray/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config  config.Conf
	Logger  *logger.Logger
	Pack    *rulepack.Pack
	Model   llm.Backend // optional
	Enhance llm.Backend // optional
	Metrics *metrics.Metrics

	Stack httpkit.StackOptions
	// MaxInFlight caps concurrent analyze requests, 0 is unlimited
	MaxInFlight int
	Backlog     int

	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// budgetSlack covers binding, reduction and encoding around the backend calls
const budgetSlack = 30 * time.Second

// budgeter is implemented by modules whose requests wait on model backends
type budgeter interface {
	Budget() time.Duration
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg:     opt.Config,
		Pack:    opt.Pack,
		Model:   opt.Model,
		Enhance: opt.Enhance,
		Metrics: opt.Metrics,
		Log:     opt.Logger,
	}
	wait := opt.Stack.Timeout
	if wait <= 0 {
		wait = httpkit.DefaultTimeout
	}
	limit := middleware.Limit(opt.MaxInFlight, opt.Backlog, wait)
	builds := []struct {
		build modkit.Builder
		opts  []modkit.Option
	}{
		{metamod.New, nil},
		{analyzemod.New, []modkit.Option{modkit.WithMiddlewares(limit)}},
	}
	mods := make([]modkit.Module, 0, len(builds))
	for _, b := range builds {
		mods = append(mods, b.build(deps, b.opts...))
	}

	// the stack timeout never cuts a module's backend calls short
	stack := opt.Stack
	if t := requestTimeout(stack.Timeout, mods); t != stack.Timeout {
		deps.Logger("api").Info().
			Dur("configured", stack.Timeout).
			Dur("timeout", t).
			Msg("request timeout raised to the backend budget")
		stack.Timeout = t
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(stack), func(api httpkit.Router) {
		if opt.EnableSwagger && opt.Pack != nil {
			swaggerkit.Register(swaggerkit.Categories(opt.Pack.Names()))
		}
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	// root heartbeat for load balancers, outside the versioned stack
	r.Handle("/health", middleware.Heartbeat("/health")(http.NotFoundHandler()))

	if opt.EnableMetrics && opt.Metrics != nil {
		r.Handle("/metrics", opt.Metrics.Handler())
	}
}

// requestTimeout returns base, raised to the largest module budget plus slack
func requestTimeout(base time.Duration, mods []modkit.Module) time.Duration {
	t := base
	for _, m := range mods {
		b, ok := m.(budgeter)
		if !ok || b.Budget() <= 0 {
			continue
		}
		t = max(t, b.Budget()+budgetSlack)
	}
	return t
}
