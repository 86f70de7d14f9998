// Package main provides the TuneTime CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tunetime/internal/appservice"
	"tunetime/internal/core"
	"tunetime/internal/desktop"
	httpserver "tunetime/internal/http"
	"tunetime/internal/i18n"
	"tunetime/internal/notify"
	"tunetime/internal/spotify"
	"tunetime/internal/store"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunetime",
	Short: "TuneTime - playback orchestration across Spotify and local players",
	Long: `TuneTime is a service that routes playback commands across the Spotify web API,
the Spotify desktop app and the local media player, and keeps a reconciled view
of the running track, playlists and liked songs.`,
	RunE: runTuneTime,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("language", "en", "message language (en, ch_be)")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("spotify-redirect-url", "", "Spotify OAuth redirect URL")
	rootCmd.PersistentFlags().String("spotify-token-path", "", "Spotify token file path")
	rootCmd.PersistentFlags().String("app-service-url", "", "companion app service base URL")
	rootCmd.PersistentFlags().String("app-service-token", "", "companion app service bearer token")
	rootCmd.PersistentFlags().String("server-host", "127.0.0.1", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 5280, "HTTP server port")
	rootCmd.PersistentFlags().String("db-path", "./tunetime.db", "settings database path")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("TUNETIME")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	if url := viper.GetString("spotify-redirect-url"); url != "" {
		cfg.Spotify.RedirectURL = url
	}
	if path := viper.GetString("spotify-token-path"); path != "" {
		cfg.Spotify.TokenPath = path
	}

	cfg.AppService.BaseURL = viper.GetString("app-service-url")
	cfg.AppService.Token = viper.GetString("app-service-token")

	if host := viper.GetString("server-host"); host != "" {
		cfg.Server.Host = host
	}
	if port := viper.GetInt("server-port"); port != 0 {
		cfg.Server.Port = port
	}

	if path := viper.GetString("db-path"); path != "" {
		cfg.Store.DBPath = path
	}

	if lang := viper.GetString("language"); lang != "" {
		cfg.Language = lang
	}
	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

// launchPolicy answers launch prompts without an interactive UI: prefer the
// desktop app where OS scripting is available, the web player otherwise.
type launchPolicy struct {
	desktopCapable bool
}

func (p launchPolicy) ConfirmLaunch(context.Context) core.LaunchChoice {
	if p.desktopCapable {
		return core.LaunchDesktop
	}
	return core.LaunchWeb
}

func runTuneTime(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	desktopCapable := desktop.Capable()

	logger.Info("Starting TuneTime",
		zap.String("version", "1.0.0"),
		zap.Bool("desktop_capable", desktopCapable),
		zap.String("language", config.Language))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	loc := i18n.NewLocalizer(config.Language)

	settings, err := store.OpenSettings(config.Store.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer settings.Close()

	cache := store.NewTrackCache(config.Store.TrackCacheSize, config.Store.LikedCapacity)

	spotifyClient := spotify.NewClient(&config.Spotify, desktop.OpenURL, logger)
	if err := spotifyClient.Authenticate(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	localLibrary := desktop.NewLibrary(logger)
	players := map[core.BackendKind]core.Player{
		core.BackendCloudWeb:     spotifyClient,
		core.BackendCloudDesktop: desktop.NewCloudPlayer(logger),
		core.BackendLocalDesktop: desktop.NewLocalPlayer(logger),
	}

	appClient := appservice.NewClient(config.AppService, logger)

	metrics := httpserver.NewMetrics()
	hub := httpserver.NewHub(logger)
	notifier := notify.NewNotifier(hub, logger)

	state := core.NewStateStore()
	state.SetConnected(spotifyClient.Connected())
	if premium, err := spotifyClient.IsPremium(ctx); err == nil {
		state.SetPremium(premium)
	} else {
		logger.Warn("failed to query account product", zap.Error(err))
	}

	dispatcher := core.NewCommandDispatcher(
		config, state, players, spotifyClient, notifier, loc, logger, desktopCapable)

	reconciler := core.NewReconciler(config.Reconcile, state, spotifyClient, notifier, logger)
	dispatcher.SetReconciler(reconciler)

	builder := core.NewPlaylistCacheBuilder(
		state, spotifyClient, localLibrary, cache, settings, notifier, loc, logger)

	retrier := core.NewDeviceDiscoveryRetrier(
		config.Discovery, state, spotifyClient, notifier, loc, logger, desktopCapable)

	orchestrator := core.NewOrchestrator(
		config,
		state,
		dispatcher,
		core.NewLikedSongsNavigator(state),
		builder,
		retrier,
		spotifyClient,
		appClient,
		cache,
		settings,
		launchPolicy{desktopCapable: desktopCapable},
		notifier,
		loc,
		logger,
	)

	orchestrator.SetReconciler(reconciler)

	server := httpserver.NewServer(&config.Server, state, orchestrator, hub, metrics, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gCtx)
	})

	g.Go(func() error {
		return reconciler.Run(gCtx)
	})

	g.Go(func() error {
		builder.Refresh(gCtx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				metrics.CachedPlaylists.Set(float64(cache.PlaylistCount()))
				metrics.LikedIndexSize.Set(float64(cache.LikedCount()))
			}
		}
	})

	logger.Info("TuneTime started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("TuneTime stopped with error", zap.Error(err))
		return err
	}

	logger.Info("TuneTime stopped gracefully")
	return nil
}

func validateConfig() error {
	if config.Spotify.ClientID == "" {
		return fmt.Errorf("spotify client ID is required")
	}

	if config.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client secret is required")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	return nil
}
