package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"multiparty-params/internal/app"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "MULTIPARTY_PARAMS"

// RootConfig holds the persistent flags. Every value can also come from a
// MULTIPARTY_PARAMS_* variable or from multiparty-params.yaml in the
// working directory or the user config dir.
type RootConfig struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:          "multiparty-params",
		Short:        "Resolve multi-party job declarations into per-party parameters",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			return setupLogging(viper.GetString("log_level"), viper.GetString("log_format"))
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", logFormatConsole, "Log format (console, json)")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newCatalogCommand())
	cmd.AddCommand(newWatchCommand())
	return cmd
}

// initConfig reads an explicit --config file, or else the first
// multiparty-params.yaml found. A missing default file is fine; a broken
// one is not.
func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("multiparty-params")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "multiparty-params"))
		}
	}

	err := viper.ReadInConfig()
	if err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("config loaded")
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if configFile == "" && errors.As(err, &notFound) {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("failed to read config file").
		WithCause(err)
}

const (
	logFormatConsole = "console"
	logFormatJSON    = "json"
)

// setupLogging routes logs to stderr so stdout stays free for command
// output, and makes the global logger the default for log.Ctx.
func setupLogging(level string, format string) error {
	parsed := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		var err error
		parsed, err = zerolog.ParseLevel(strings.TrimSpace(level))
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown log level: " + level).
				WithCause(err)
		}
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", logFormatConsole:
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			With().Timestamp().Logger()
	case logFormatJSON:
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown log format: " + format)
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}

func newAppService() app.Service {
	return app.NewService()
}

// exitCodeForError maps failures to stable exit codes:
// 2 invalid declaration or parameters, 3 topology failure,
// 5 missing input or I/O failure, 1 anything else.
func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	message := errorMessage(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition, errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound:
		return 5
	case errbuilder.CodeInternal:
		if strings.HasPrefix(message, "resolution interrupted") {
			return 1
		}
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
