package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/OCAP2/dogfight/internal/api"
	"github.com/OCAP2/dogfight/internal/cache"
	"github.com/OCAP2/dogfight/internal/combat"
	"github.com/OCAP2/dogfight/internal/config"
	"github.com/OCAP2/dogfight/internal/dispatcher"
	"github.com/OCAP2/dogfight/internal/influx"
	"github.com/OCAP2/dogfight/internal/logging"
	"github.com/OCAP2/dogfight/internal/monitor"
	intOtel "github.com/OCAP2/dogfight/internal/otel"
	"github.com/OCAP2/dogfight/internal/recorder"
	"github.com/OCAP2/dogfight/internal/session"
	"github.com/OCAP2/dogfight/internal/storage"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "dogfight"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// DBLogger is handed to the database and influx managers
	DBLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionContext = session.NewContext()
	EntityCache    = cache.NewEntityCache()

	LogFile *os.File
)

// options are the command line flags.
type options struct {
	ConfigDir string
	Name      string
	Tag       string
	Seed      int64
	Duration  time.Duration
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.StringVarP(&o.ConfigDir, "config", "c", ".", "directory containing "+config.FileName)
	fs.StringVarP(&o.Name, "name", "n", "", "session name")
	fs.StringVarP(&o.Tag, "tag", "t", "", "session tag (default from config)")
	fs.Int64Var(&o.Seed, "seed", 0, "RNG seed, 0 picks one (overrides sim.seed)")
	fs.DurationVarP(&o.Duration, "duration", "d", 0, "stop after this long (overrides sim.duration)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		if Logger != nil {
			Logger.Error("Exiting", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	start := time.Now()

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(opts.ConfigDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", opts.ConfigDir)
	}
	if opts.Seed != 0 {
		viper.Set("sim.seed", opts.Seed)
	}
	if opts.Duration > 0 {
		viper.Set("sim.duration", opts.Duration.String())
	}

	setupLogging(start)
	defer shutdownLogging()

	simCfg := config.GetSimConfig()
	sess := session.New(opts.Name, firstNonEmpty(opts.Tag, viper.GetString("defaultTag")), start)
	sess.Version = CurrentVersion
	sess.Build = BuildDate

	// Storage
	storageCfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		LogManager: SlogManager,
		DBLogger:   DBLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)
	defer func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	// Recorder
	eventDispatcher, err := dispatcher.New(logging.NewDispatcherLogger(DBLogger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	rec := recorder.New(recorder.Dependencies{
		Backend:     backend,
		EntityCache: EntityCache,
		Session:     SessionContext,
		LogManager:  SlogManager,
		StateEvery:  simCfg.StateEvery,
	})
	rec.RegisterHandlers(eventDispatcher)

	loop := combat.NewLoop(loopConfig(simCfg, start))
	sess.Seed = loop.Context().Seed()
	sess.TickRate = simCfg.TickHz
	sess.Origin = origin(simCfg)
	sess.Environment = weather(simCfg)

	if err := rec.Start(sess); err != nil {
		return err
	}
	Logger.Info("Session started", "name", sess.Name, "id", sess.ID, "seed", sess.Seed)

	// Monitor
	influxManager := connectInflux(ctx, start)
	if influxManager != nil {
		defer func() {
			if err := influxManager.Close(); err != nil {
				Logger.Error("Failed to close InfluxDB manager", "error", err)
			}
		}()
	}
	perf, _ := backend.(storage.PerformanceRecorder)
	monitorService := monitor.NewService(monitor.Dependencies{
		LogManager: SlogManager,
		Session:    SessionContext,
		Influx:     influxManager,
		Recorder:   perf,
		StatusFile: logging.StatusFilePath(viper.GetString("logsDir")),
	})
	if err := monitorService.Start(); err != nil {
		return err
	}

	runCtx := ctx
	if simCfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, simCfg.Duration)
		defer cancel()
	}

	env := combat.StaticEnvironment(simEnvironment(simCfg))
	err = loop.Run(runCtx, NewAutopilot(), env, simCfg.TickHz, func(f combat.Frame) {
		rec.Frame(eventDispatcher, f)
		monitorService.Observe(f)
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		Logger.Error("Simulation loop stopped", "error", err)
	}

	monitorService.Stop()
	eventDispatcher.Close()

	summary, err := rec.End(time.Now())
	if err != nil {
		return err
	}
	stats := rec.Stats()
	Logger.Info("Session complete",
		"ticks", summary.Ticks,
		"score", summary.Score,
		"kills", summary.Kills,
		"crashes", summary.Crashes,
		"maxLevel", summary.MaxLevel,
		"states", stats.States,
		"events", stats.Events,
		"dropped", stats.Dropped,
		"aircraft", stats.Aircraft)

	if up, ok := backend.(storage.Uploadable); ok {
		// The run context is usually done by now; the upload still goes out.
		uploadRecording(context.WithoutCancel(ctx), up)
	}
	return nil
}

func setupLogging(start time.Time) {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	logPath := logging.LogFilePath(logsDir, AppName, start)
	if _, err := os.Stat(logPath); err == nil {
		_ = os.Rename(logPath, logPath+".old")
	}
	var err error
	LogFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", logPath)
		LogFile = nil
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var otelOut io.Writer = os.Stdout
		if LogFile != nil {
			otelOut = LogFile
		}
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			ServiceVersion: CurrentVersion,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      otelOut,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		w, err := logging.NewGraylogWriter(graylogCfg.Address)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			SlogManager.WithGraylog(w)
		}
	}

	SlogManager.WithContext(logging.SessionContext(func() logging.SessionInfo {
		return logging.SessionInfo{
			SessionID: SessionContext.GetSession().ID,
			Tick:      SessionContext.Tick(),
			Level:     SessionContext.Level(),
		}
	}))

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	var file io.Writer
	if LogFile != nil {
		file = LogFile
	}
	SlogManager.Setup(file, viper.GetString("logLevel"), otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", logPath, "version", CurrentVersion, "build", BuildDate)

	DBLogger = newDBLogger(file, viper.GetString("logLevel"))
}

// newDBLogger mirrors slog output for the zerolog-based managers: console
// format on stdout and, without colors, in the log file.
func newDBLogger(file io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}}
	if file != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().Timestamp().Logger().
		Hook(zerolog.HookFunc(func(e *zerolog.Event, level zerolog.Level, msg string) {
			if s := SessionContext.GetSession(); s.ID != "" {
				e.Str("session", s.ID).Uint64("tick", SessionContext.Tick())
			}
		}))
}

func shutdownLogging() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Error("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "failed to shut down OTel provider:", err)
		}
	}
	if LogFile != nil {
		_ = LogFile.Close()
	}
}

// connectInflux returns nil when influx is disabled.
func connectInflux(ctx context.Context, start time.Time) *influx.Manager {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return nil
	}
	backupPath := logging.InfluxBackupPath(viper.GetString("logsDir"), start)
	m := influx.NewManager(cfg, DBLogger, backupPath)
	if err := m.Connect(ctx); err != nil {
		Logger.Error("Failed to set up InfluxDB", "error", err)
		return nil
	}
	return m
}

func uploadRecording(ctx context.Context, up storage.Uploadable) {
	apiCfg := config.GetAPIConfig()
	path := up.GetExportedFilePath()
	if !apiCfg.Upload || path == "" {
		return
	}

	client := api.New(apiCfg.ServerURL, apiCfg.APIKey)
	if err := client.Healthcheck(ctx); err != nil {
		Logger.Warn("Recording server is offline, keeping local export", "path", path, "error", err)
		return
	}
	if err := client.Upload(ctx, path, up.GetExportMetadata()); err != nil {
		Logger.Error("Failed to upload recording", "path", path, "error", err)
		return
	}
	Logger.Info("Uploaded recording", "path", path, "server", apiCfg.ServerURL)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
