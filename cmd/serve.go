package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/starfield-labs/exonamd/internal/model"
	"github.com/starfield-labs/exonamd/internal/solve"
	"github.com/starfield-labs/exonamd/internal/store"
)

var servePort int

// systemSummary is the list-endpoint projection of one system. NAMD values
// are pointers so undefined results encode as null.
type systemSummary struct {
	Hostname string          `json:"hostname"`
	Planets  int             `json:"planets"`
	NAMDRel  *float64        `json:"namd_rel"`
	NAMDAbs  *float64        `json:"namd_abs"`
	RelMC    model.Quantiles `json:"namd_rel_mc"`
	AbsMC    model.Quantiles `json:"namd_abs_mc"`
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest NAMD snapshot over a read-only JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		planets, snap, err := st.LoadSnapshot(ctx, store.StageNAMD)
		if err != nil {
			return err
		}
		if snap == nil {
			return eris.New("no namd snapshot stored; run the pipeline first")
		}
		idx, err := model.BuildSystemIndex(planets)
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":   "ok",
				"snapshot": snap.ID,
			})
		})

		r.Get("/v1/snapshots", func(w http.ResponseWriter, req *http.Request) {
			snaps, err := st.ListSnapshots(req.Context(), 20)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list snapshots"})
				return
			}
			writeJSON(w, http.StatusOK, snaps)
		})

		r.Get("/v1/systems", func(w http.ResponseWriter, req *http.Request) {
			hosts := idx.Hosts()
			out := make([]systemSummary, 0, len(hosts))
			for _, host := range hosts {
				rows := idx[host]
				first := planets[rows[0]]
				out = append(out, systemSummary{
					Hostname: host,
					Planets:  len(rows),
					NAMDRel:  finite(first.NAMDRel),
					NAMDAbs:  finite(first.NAMDAbs),
					RelMC:    first.NAMDRelMC,
					AbsMC:    first.NAMDAbsMC,
				})
			}
			writeJSON(w, http.StatusOK, out)
		})

		r.Get("/v1/systems/{hostname}", func(w http.ResponseWriter, req *http.Request) {
			host := chi.URLParam(req, "hostname")
			rows, ok := idx[host]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown system"})
				return
			}
			out := make([]model.Planet, 0, len(rows))
			for _, i := range rows {
				out = append(out, planets[i])
			}
			writeJSON(w, http.StatusOK, out)
		})

		r.Get("/v1/systems/{hostname}/mc", func(w http.ResponseWriter, req *http.Request) {
			host := chi.URLParam(req, "hostname")
			rows, ok := idx[host]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown system"})
				return
			}

			kind := solve.Kind(req.URL.Query().Get("kind"))
			if kind == "" {
				kind = solve.KindRelative
			}
			if err := kind.Validate(); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be rel or abs"})
				return
			}

			mcCfg := solve.MCConfig{
				Samples:   cfg.MC.Samples,
				Threshold: cfg.MC.Threshold,
				Seed:      cfg.MC.Seed,
				Full:      req.URL.Query().Get("full") == "true",
			}
			if v := req.URL.Query().Get("samples"); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil || n <= 0 {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "samples must be a positive integer"})
					return
				}
				mcCfg.Samples = n
			}
			if v := req.URL.Query().Get("seed"); v != "" {
				s, err := strconv.ParseUint(v, 10, 64)
				if err != nil {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seed must be an unsigned integer"})
					return
				}
				mcCfg.Seed = s
			}

			system := make([]model.Planet, 0, len(rows))
			for _, i := range rows {
				system = append(system, planets[i])
			}
			res, err := solve.SolveNAMDMC(system, kind, mcCfg)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "monte carlo run failed"})
				return
			}
			writeJSON(w, http.StatusOK, struct {
				Hostname  string          `json:"hostname"`
				Kind      string          `json:"kind"`
				Samples   int             `json:"samples"`
				Quantiles model.Quantiles `json:"quantiles"`
				Raw       []float64       `json:"raw,omitempty"`
			}{host, string(kind), mcCfg.Samples, res.Quantiles, res.Samples})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			drainServer(srv)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("snapshot", snap.ID),
			zap.Int("systems", len(idx)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// drainTimeout bounds how long in-flight requests may run after a
// termination signal.
const drainTimeout = 10 * time.Second

// drainServer shuts the server down on its own context: the signal context
// is already cancelled by the time shutdown starts, and reusing it would
// abort in-flight requests immediately.
func drainServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
