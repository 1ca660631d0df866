package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/OCAP2/panorama/internal/api"
	"github.com/OCAP2/panorama/internal/cache"
	"github.com/OCAP2/panorama/internal/config"
	"github.com/OCAP2/panorama/internal/geo"
	"github.com/OCAP2/panorama/internal/logging"
	"github.com/OCAP2/panorama/internal/metrics"
	"github.com/OCAP2/panorama/internal/storage"
	"github.com/OCAP2/panorama/internal/view"
	"github.com/OCAP2/panorama/pkg/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AppName prefixes log files.
const AppName = "panorama"

// app holds what every subcommand shares once the root command has set up.
type app struct {
	configDir string
	logLevel  string
	logToFile bool
	token     string
	serverURL string
	viewJSON  string
	viewFile  string

	sessionStart time.Time
	logs         *logging.SlogManager
	logger       *slog.Logger
	logFile      *os.File
	metrics      *metrics.Instruments
	backend      storage.Backend
}

func newApp() *app {
	return &app{logs: logging.NewSlogManager()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   AppName,
		Short: "Draw and sync annotations on 360 degree panoramas",
		Long: `Converts shapes drawn on a panorama viewport into camera independent
spherical coordinates, renders stored shapes back through any view and
syncs polygon hotspots with the tour hotspot service.

Examples:
  panorama project '[[0.5,0.5],[0.75,0.25]]' --view '{"hlookat":30,"fov":90}'
  panorama render annotations.json --view-file view.json
  panorama pull https://studio.example.com/editor/ab12/scene/65f0c1d2e3
  panorama push 65f0c1d2e3 --kind box --points '[[0.4,0.4],[0.6,0.6]]' --label door`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", ".", "directory containing "+config.ConfigName)
	flags.StringVar(&a.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	flags.BoolVar(&a.logToFile, "log-file", false, "write logs to a session file in logsDir")
	flags.StringVar(&a.token, "token", "", "bearer token for the hotspot service")
	flags.StringVar(&a.serverURL, "server", "", "hotspot service base URL")
	flags.StringVar(&a.viewJSON, "view", "", `current view as JSON, e.g. {"hlookat":0,"vlookat":0,"fov":90,"width":1920,"height":1080}`)
	flags.StringVar(&a.viewFile, "view-file", "", "file holding the current view as JSON")

	root.AddCommand(
		newProjectCmd(a),
		newUnprojectCmd(a),
		newSimplifyCmd(a),
		newRenderCmd(a),
		newPullCmd(a),
		newPushCmd(a),
		newTypeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.sessionStart = time.Now()
	cfgErr := config.Load(a.configDir)

	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"logLevel":      "log-level",
		"api.token":     "token",
		"api.serverUrl": "server",
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			viper.Set(key, f.Value.String())
		}
	}

	var out io.Writer
	if a.logToFile {
		f, err := logging.OpenLogFile(viper.GetString("logsDir"), AppName, a.sessionStart)
		if err != nil {
			return err
		}
		a.logFile = f
		out = f
	}
	a.logs.Setup(out, viper.GetString("logLevel"))
	a.logs.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.String("command", cmd.Name())}
	})
	a.logger = a.logs.Logger()

	if cfgErr != nil {
		a.logger.Debug("Using default configuration", "error", cfgErr)
	}

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	a.metrics = m
	return nil
}

func (a *app) teardown() error {
	var errs []error
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
		a.backend = nil
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
		a.logFile = nil
	}
	return errors.Join(errs...)
}

// viewDefaults converts the configured neutral view.
func (a *app) viewDefaults() view.Defaults {
	vc := config.GetViewDefaults()
	return view.Defaults{
		FieldOfView:    vc.DefaultFov,
		ViewportWidth:  vc.DefaultWidth,
		ViewportHeight: vc.DefaultHeight,
	}
}

// currentView reads the view from --view-file, then --view, then falls back
// to the neutral view.
func (a *app) currentView() core.ViewState {
	var readers []view.Reader
	if a.viewFile != "" {
		readers = append(readers, view.File{Path: a.viewFile})
	}
	if a.viewJSON != "" {
		readers = append(readers, view.ReaderFunc(func() (core.ViewState, error) {
			var v core.ViewState
			if err := json.Unmarshal([]byte(a.viewJSON), &v); err != nil {
				return core.ViewState{}, fmt.Errorf("failed to parse --view: %w", err)
			}
			return v, nil
		}))
	}
	return view.Capture(view.NewChain(a.viewDefaults(), a.logger, readers...), a.viewDefaults())
}

func (a *app) shapeOptions() geo.Options {
	dc := config.GetDrawConfig()
	opts := geo.DefaultOptions()
	if dc.CircleSegments >= 3 {
		opts.CircleSegments = dc.CircleSegments
	}
	if dc.FreeDrawTarget > 0 {
		opts.FreeDrawTarget = dc.FreeDrawTarget
	}
	return opts
}

func (a *app) client() *api.Client {
	ac := config.GetAPIConfig()
	return api.New(ac.ServerURL, ac.Token,
		api.WithTimeout(ac.Timeout),
		api.WithLogger(a.logger),
		api.WithMetrics(a.metrics),
	)
}

// sceneCache opens the configured storage backend and fronts it with an
// in-process cache over the hotspot client.
func (a *app) sceneCache(client *api.Client) (*cache.SceneCache, error) {
	sc := config.GetStorageConfig()
	if a.backend == nil {
		backend, err := createStorageBackend(sc, a.logger)
		if err != nil {
			return nil, err
		}
		if err := backend.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
		}
		a.backend = backend
	}
	return cache.NewSceneCache(a.backend, client, sc.TTL, a.logger), nil
}

func (a *app) context(cmd *cobra.Command, attrs ...slog.Attr) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithAttrs(ctx, attrs...)
}

// sceneIDFromArg accepts a bare scene id or an editor URL.
func sceneIDFromArg(arg string) (string, error) {
	if id := api.ExtractSceneID(arg); id != "" {
		return id, nil
	}
	if arg == "" || !isHex(arg) {
		return "", fmt.Errorf("no scene id in %q", arg)
	}
	return arg, nil
}

// sceneAttrs tags a command's log records with the scene and, for editor
// URLs, the tour.
func sceneAttrs(arg, sceneID string) []slog.Attr {
	attrs := []slog.Attr{slog.String("sceneId", sceneID)}
	if tourID := api.ExtractTourID(arg); tourID != "" {
		attrs = append(attrs, slog.String("tourId", tourID))
	}
	return attrs
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
