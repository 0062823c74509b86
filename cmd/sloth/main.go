package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/slothpixel/sloth/config"
	"github.com/slothpixel/sloth/internal/api"
	"github.com/slothpixel/sloth/internal/cache"
	"github.com/slothpixel/sloth/internal/db"
	"github.com/slothpixel/sloth/internal/games"
	"github.com/slothpixel/sloth/internal/graphql"
	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/store"
	"github.com/slothpixel/sloth/internal/util/jobs"
	"github.com/slothpixel/sloth/internal/util/slothlog"
)

// Set at link time.
var version = "devel"

var logger = slothlog.SubLogger("main")

func main() {
	slothlog.LogCommandLine()
	c := config.ReadConfig()
	if err := c.Logs.Apply(); err != nil {
		logger.FatalE(err, "Exit on bad logging configuration")
	}

	mainContext := jobs.InitSignals()

	gameNames := games.StandardNames()
	if err := games.Validate(gameNames); err != nil {
		logger.FatalE(err, "Exit on broken game catalog")
	}
	template, err := graphql.LoadTemplate(c.SchemaTemplate)
	if err != nil {
		logger.FatalE(err, "Exit on schema template")
	}
	schema, _, err := graphql.BuildSchema(template, gameNames)
	if err != nil {
		logger.FatalE(err, "Exit on schema assembly")
	}

	setupCtx, cancel := context.WithTimeout(mainContext, 30*time.Second)
	dbObj, err := db.Setup(setupCtx, &c.Postgres)
	if err != nil {
		cancel()
		logger.FatalE(err, "Exit on document store setup")
	}
	defer dbObj.Close()

	cacheClient := cache.New(&c.Redis)
	defer cacheClient.Close()
	if err := cacheClient.Ping(setupCtx); err != nil {
		cancel()
		logger.FatalE(err, "Exit on cache unreachable")
	}
	cancel()

	upstreamTimeout := c.Hypixel.ReadTimeout.WithDefault(10 * time.Second)
	s := &store.Store{
		DB:      dbObj,
		Cache:   cacheClient,
		Hypixel: hypixel.NewClient(c.Hypixel.BaseURL, c.Hypixel.APIKey, upstreamTimeout),
		Mojang:  hypixel.NewMojang(c.Mojang.BaseURL, upstreamTimeout),
		TTL: store.TTL{
			Jobs:     c.CacheLifetime.Jobs.WithDefault(5 * time.Minute),
			UUIDs:    c.CacheLifetime.UUIDs.WithDefault(24 * time.Hour),
			Profiles: c.CacheLifetime.Profiles.WithDefault(time.Hour),
		},
		Version: version,
	}

	sources := s.Sources()
	if err := sources.Check(); err != nil {
		logger.FatalE(err, "Exit on incomplete data sources")
	}
	executable := graphql.NewExecutable(schema, graphql.NewResolver(sources, gameNames))
	if err := executable.CheckBindings(); err != nil {
		logger.FatalE(err, "Exit on schema and resolver mismatch")
	}

	handler := api.NewHandler(
		graphql.NewHandler(executable, c.ComplexityLimit),
		api.HealthChecks{
			"postgres": dbObj.PingContext,
			"redis":    cacheClient.Ping,
		},
		api.Config{
			AllowedOrigins: c.AllowedOrigins,
			QueryTimeout:   c.QueryTimeout.WithDefault(30 * time.Second),
		})

	srv := &http.Server{
		Handler:      handler,
		Addr:         fmt.Sprintf(":%d", c.ListenPort),
		ReadTimeout:  c.ReadTimeout.WithDefault(20 * time.Second),
		WriteTimeout: c.WriteTimeout.WithDefault(40 * time.Second),
	}
	httpJob := jobs.Start("HTTPserver", func() {
		logger.InfoF("Starting HTTP server at port %d", c.ListenPort)
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorE(err, "HTTP stopped")
			jobs.InitiateShutdown()
		}
	})

	jobs.WaitUntilSignal()

	timeout := c.ShutdownTimeout.WithDefault(5 * time.Second)
	logger.InfoF("HTTP shutdown initiated with timeout %s", timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorE(err, "HTTP failed shutdown")
	}
	shutdownCancel()

	jobs.ShutdownWait(timeout, httpJob)
	logger.InfoF("Exit on signal %s", jobs.ExitSignal())
}
