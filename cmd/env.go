package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/starfield-labs/exonamd/internal/pipeline"
	"github.com/starfield-labs/exonamd/internal/store"
	"github.com/starfield-labs/exonamd/pkg/nexsci"
	"github.com/starfield-labs/exonamd/pkg/spright"
)

// pipelineEnv holds the initialized store, clients, and pipeline shared by
// the stage commands. Callers should defer env.Close().
type pipelineEnv struct {
	Store    store.Store
	Archive  nexsci.Client
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, the archive and predictor clients, and
// builds the Pipeline.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	archive := nexsci.New(nexsci.Options{
		BaseURL:   cfg.Archive.BaseURL,
		UserAgent: cfg.Archive.UserAgent,
		Timeout:   time.Duration(cfg.Archive.TimeoutSecs) * time.Second,
		RPS:       cfg.Archive.RPS,
	})
	predictor := spright.New(spright.Options{
		BaseURL: cfg.Spright.BaseURL,
		Timeout: time.Duration(cfg.Spright.TimeoutSecs) * time.Second,
		RPS:     cfg.Spright.RPS,
	})

	p := pipeline.New(cfg, st, archive, predictor)

	return &pipelineEnv{Store: st, Archive: archive, Pipeline: p}, nil
}
