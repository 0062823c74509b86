// Package api provides the HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pascaldekloe/metrics"
	"github.com/rs/cors"

	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var logger = slothlog.SubLogger("api")

const queryPath = "/graphql"

type Config struct {
	AllowedOrigins []string
	// Zero leaves queries without a deadline of their own.
	QueryTimeout time.Duration
}

// HealthChecks are the dependencies /health checks, by name.
type HealthChecks map[string]func(ctx context.Context) error

// NewHandler serves the query endpoint next to the operational pages.
func NewHandler(query http.Handler, checks HealthChecks, config Config) http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slotherr.NotFoundF("no route %s", r.URL.Path).ReportHTTP(w)
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		logger.ErrorF("Panic serving %s: %v", r.URL.Path, v)
		slotherr.InternalErr("internal error").ReportHTTP(w)
	}

	router.HandlerFunc(http.MethodGet, "/metrics", metrics.ServeHTTP)
	router.HandlerFunc(http.MethodGet, "/debug/timers", timer.ServeHTTP)
	router.HandlerFunc(http.MethodGet, "/health", serveHealth(checks))

	timed := withQueryTimeout(query, config.QueryTimeout)
	router.Handler(http.MethodGet, queryPath, timed)
	router.Handler(http.MethodPost, queryPath, timed)

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	return withRequestID(withAccessLog(c.Handler(router)))
}

var healthTimer = timer.NewMilli("api_health")

func serveHealth(checks HealthChecks) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		defer healthTimer.One()()
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.WarnT(slothlog.Tags(slothlog.Str("check", name), slothlog.Err(err)), "Health check failed")
				report[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		respJSON(w, status, report)
	}
}

func respJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	e := json.NewEncoder(w)
	e.SetIndent("", "\t")
	if err := e.Encode(body); err != nil {
		logger.WarnT(slothlog.Err(err), "Response write failed")
	}
}
