package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ALT-F4-LLC/lintdeck/internal/api"
	"github.com/ALT-F4-LLC/lintdeck/internal/config"
	"github.com/ALT-F4-LLC/lintdeck/internal/db"
	"github.com/ALT-F4-LLC/lintdeck/internal/output"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const (
	dbKey     contextKey = "db"
	cfgKey    contextKey = "cfg"
	clientKey contextKey = "client"
	loggerKey contextKey = "logger"
	logKey    contextKey = "log"
)

// CmdError wraps an error with a machine-readable error code for structured output.
type CmdError struct {
	Err  error
	Code output.ErrorCode
}

func (e *CmdError) Error() string { return e.Err.Error() }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

// serverErr wraps a failed server call, classified by its HTTP status.
func serverErr(action string, err error) *CmdError {
	return cmdErr(fmt.Errorf("%s: %w", action, err), output.CodeForStatus(api.StatusCode(err)))
}

var rootCmd = &cobra.Command{
	Use:     "lintdeck",
	Short:   "Browse and triage code quality issues from the terminal",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve()
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		if server, _ := cmd.Flags().GetString("server"); server != "" {
			cfg.Server = server
		}
		if token, _ := cmd.Flags().GetString("token"); token != "" {
			cfg.Token = token
		}

		ctx := context.WithValue(cmd.Context(), cfgKey, cfg)

		if _, ok := cmd.Annotations["skipDB"]; ok {
			cmd.SetContext(ctx)
			return nil
		}

		logPath, _ := cmd.Flags().GetString("log-file")
		logger, logFile, err := openLogger(cfg, logPath)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		slog.SetDefault(logger)
		ctx = context.WithValue(ctx, loggerKey, logger)
		ctx = context.WithValue(ctx, logKey, logFile)

		if err := cfg.EnsureDir(); err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		conn, err := db.OpenAndMigrate(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		ctx = context.WithValue(ctx, dbKey, conn)

		if _, ok := cmd.Annotations["skipClient"]; !ok {
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			ctx = context.WithValue(ctx, clientKey, client)
		}

		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		var errs []error
		if conn, ok := cmd.Context().Value(dbKey).(*sql.DB); ok && conn != nil {
			errs = append(errs, conn.Close())
		}
		if f, ok := cmd.Context().Value(logKey).(io.Closer); ok && f != nil {
			errs = append(errs, f.Close())
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().String("server", "", "Issue server URL (overrides LINTDECK_URL and config)")
	rootCmd.PersistentFlags().String("token", "", "Access token (overrides LINTDECK_TOKEN and config)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (default: lintdeck.log in the config directory)")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

// openLogger opens the append-only log file. The terminal belongs to the
// command output and the browser, so nothing is logged to it.
func openLogger(cfg *config.Config, path string) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		path = cfg.LogPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func newClient(cfg *config.Config) (*api.Client, error) {
	u, err := api.ParseServerURL(cfg.Server)
	if err != nil {
		return nil, cmdErr(err, output.ErrValidation)
	}
	auth, method := api.ResolveAuth(cfg.Token, cfg.Login, cfg.Password)
	slog.Debug("api client", "server", u.Redacted(), "auth", method)
	return api.NewClient(u, auth, cfg.Timeout, cfg.InsecureSkipVerify), nil
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return output.New(jsonMode, quietMode)
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

func getDB(cmd *cobra.Command) *sql.DB {
	conn, _ := cmd.Context().Value(dbKey).(*sql.DB)
	return conn
}

func getClient(cmd *cobra.Command) *api.Client {
	client, _ := cmd.Context().Value(clientKey).(*api.Client)
	return client
}

func getLogger(cmd *cobra.Command) *slog.Logger {
	if logger, ok := cmd.Context().Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		jsonMode, _ := rootCmd.PersistentFlags().GetBool("json")
		quietMode, _ := rootCmd.PersistentFlags().GetBool("quiet")
		w := output.New(jsonMode, quietMode)

		var ce *CmdError
		if errors.As(err, &ce) {
			return w.Error(ce.Err, ce.Code)
		}
		return w.Error(err, output.ErrGeneral)
	}
	return 0
}
