package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lingocards/lingocards/internal/bootstrap"
	"github.com/lingocards/lingocards/internal/config"
	"github.com/lingocards/lingocards/internal/database"
	"github.com/lingocards/lingocards/internal/flashcard"
	"github.com/lingocards/lingocards/internal/generation"
	"github.com/lingocards/lingocards/internal/inference/openai"
	"github.com/lingocards/lingocards/internal/server"
	"github.com/lingocards/lingocards/internal/settings"
	"github.com/lingocards/lingocards/internal/speech"
	"github.com/lingocards/lingocards/schemas"
)

const shutdownTimeout = 15 * time.Second

type logFormat string

const (
	logFormatText logFormat = "text"
	logFormatJSON logFormat = "json"
)

var _ pflag.Value = (*logFormat)(nil)

func (f *logFormat) Set(val string) error {
	switch logFormat(val) {
	case logFormatText, logFormatJSON:
		*f = logFormat(val)
		return nil
	}
	return fmt.Errorf("must be one of %q or %q", logFormatText, logFormatJSON)
}

func (f *logFormat) String() string {
	return string(*f)
}

func (f *logFormat) Type() string {
	return "format"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	var debug bool
	format := logFormatText

	command := &cobra.Command{
		Use:           "lingocards-server",
		Short:         "Flashcard API server with AI content generation and speech synthesis",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debug, format)
			return serve(cmd.Context(), configFile)
		},
	}

	command.PersistentFlags().StringVar(&configFile, "config", "", "Path to the configuration file")
	command.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	command.PersistentFlags().Var(&format, "log-format", "Log output format (text or json)")

	command.AddCommand(newConfigCommand(&configFile))
	command.AddCommand(newMigrateCommand(&configFile, &debug, &format))

	return command
}

func setupLogger(debug bool, format logFormat) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, options)
	if format == logFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	slog.SetDefault(slog.New(handler))
}

func serve(ctx context.Context, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	app := bootstrap.New(shutdownTimeout)

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Connect() > %w", err)
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return db.Close()
	})

	inferenceClient := openai.NewClient()
	app.AddShutdownHook(func(ctx context.Context) error {
		return inferenceClient.Close()
	})

	settingsService := settings.NewService(settings.NewDBRepository(db), inferenceClient, cfg.OpenAI.APIKey)
	flashcardRepo := flashcard.NewDBRepository(db)
	generationService := generation.NewService(
		settingsService,
		flashcardRepo,
		inferenceClient,
		cfg.OpenAI.APIKey,
		cfg.OpenAI.ChatModel,
		cfg.OpenAI.TargetLanguage,
	)
	speechService := speech.NewService(
		settingsService,
		speech.NewOpenAISynthesizer(),
		speech.NewCache(cfg.Speech.CacheCapacity),
		cfg.OpenAI.APIKey,
	)

	apiServer := server.New(
		generationService,
		speechService,
		settingsService,
		flashcardRepo,
		time.Duration(cfg.Speech.RequestTimeoutSeconds)*time.Second,
		cfg.Server.CORS.AllowedOrigins,
	)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiServer.Handler(),
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return httpServer.Shutdown(ctx)
	})

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server",
			"addr", httpServer.Addr,
			"hasSystemKey", cfg.OpenAI.APIKey != "",
		)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer.ListenAndServe() > %w", err)
		}
		return nil
	})
}

func newConfigCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Load and validate the configuration, then print the effective values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				color.Red("Configuration is invalid:")
				color.Red("  %v", err)
				return err
			}

			color.Green("Configuration is valid.")
			fmt.Printf("  server port:        %d\n", cfg.Server.Port)
			fmt.Printf("  allowed origins:    %v\n", cfg.Server.CORS.AllowedOrigins)
			fmt.Printf("  database:           %s@%s:%d/%s\n",
				cfg.Database.Username, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
			fmt.Printf("  chat model:         %s\n", cfg.OpenAI.ChatModel)
			fmt.Printf("  target language:    %s\n", cfg.OpenAI.TargetLanguage)
			fmt.Printf("  audio cache size:   %d\n", cfg.Speech.CacheCapacity)
			fmt.Printf("  speech timeout:     %ds\n", cfg.Speech.RequestTimeoutSeconds)
			if cfg.OpenAI.APIKey != "" {
				color.Green("  system OpenAI key:  configured")
			} else {
				color.Yellow("  system OpenAI key:  not set (users must bring their own key)")
			}
			return nil
		},
	}
}

func newMigrateCommand(configFile *string, debug *bool, format *logFormat) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL schema to the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(*debug, *format)
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}

			db, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Connect() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			applied, err := database.ApplyMigrations(cmd.Context(), db, schemas.Migrations)
			if err != nil {
				color.Red("Migration failed: %v", err)
				return err
			}
			color.Green("Applied %d migration file(s).", applied)
			return nil
		},
	}
}

func loadConfig(configFile string) (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
