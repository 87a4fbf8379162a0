// Package dirserver exposes the directions pipeline as a small HTTP
// facade: GET /route and POST /match answer with the normalized route
// graph, with the local engine fallback and traffic dumps wired in from
// the configuration file.
package dirserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edgefn/roadbook/internal/config"
	"github.com/edgefn/roadbook/internal/dataset"
	"github.com/edgefn/roadbook/internal/version"
	"github.com/edgefn/roadbook/pkg/directions"
)

// Run loads the configuration, builds the client and serves until the
// listener fails.
func Run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	state, err := BuildState(cfg)
	if err != nil {
		return err
	}
	defer state.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      NewRouter(state),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
	}

	fmt.Printf("[RDB] %s listening on %s (upstream %s)\n",
		version.Short(), cfg.Server.Listen, cfg.Directions.BaseURL)
	return srv.ListenAndServe()
}

// BuildState constructs the shared dependencies from a loaded config.
func BuildState(cfg *config.Config) (*State, error) {
	clientCfg := directions.ClientConfig{
		BaseURL:              cfg.Directions.BaseURL,
		AccessToken:          cfg.Directions.AccessToken,
		ApplicationUserAgent: version.AppUserAgent(),
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.Directions.TimeoutMs) * time.Millisecond,
		},
	}

	var watcher *dataset.Watcher
	if cfg.LocalEngine.DatasetDir != "" {
		w, err := dataset.Watch(cfg.LocalEngine.DatasetDir, func(dir string) (directions.LocalEngine, error) {
			return dataset.OpenSnapshot(dir)
		})
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		watcher = w
		clientCfg.LocalEngine = &directions.LocalEngineConfig{
			Engine:       watcher,
			DatasetPath:  cfg.LocalEngine.DatasetDir,
			SpeechLocale: cfg.LocalEngine.SpeechLocale,
		}
	}

	client, err := directions.NewClient(clientCfg)
	if err != nil {
		if watcher != nil {
			_ = watcher.Close()
		}
		return nil, fmt.Errorf("build client: %w", err)
	}
	return &State{Cfg: cfg, Client: client, Watcher: watcher}, nil
}
