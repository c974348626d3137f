package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/lintdeck/internal/api"
	"github.com/ALT-F4-LLC/lintdeck/internal/config"
	"github.com/ALT-F4-LLC/lintdeck/internal/db"
	"github.com/ALT-F4-LLC/lintdeck/internal/output"
	"github.com/spf13/cobra"
)

type configInfo struct {
	Dir             string `json:"dir"`
	ConfigFile      string `json:"config_file"`
	DBPath          string `json:"db_path"`
	DBSizeBytes     int64  `json:"db_size_bytes"`
	SchemaVersion   int    `json:"schema_version"`
	LogPath         string `json:"log_path"`
	Server          string `json:"server"`
	Auth            string `json:"auth"`
	Token           string `json:"token,omitempty"`
	Login           string `json:"login,omitempty"`
	Timeout         string `json:"timeout"`
	PageSize        int    `json:"page_size"`
	LogLevel        string `json:"log_level"`
	LintdeckPathEnv string `json:"lintdeck_path_env"`
	LintdeckPathSet bool   `json:"lintdeck_path_set"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Display lintdeck configuration",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		_, method := api.ResolveAuth(cfg.Token, cfg.Login, cfg.Password)
		logLevel := cfg.LogLevel
		if logLevel == "" {
			logLevel = "info"
		}
		info := configInfo{
			Dir:             cfg.Dir,
			ConfigFile:      cfg.File,
			DBPath:          cfg.DBPath,
			LogPath:         cfg.LogPath,
			Server:          cfg.Server,
			Auth:            method,
			Token:           config.Redacted(cfg.Token),
			Login:           cfg.Login,
			Timeout:         cfg.Timeout.String(),
			PageSize:        cfg.PageSize,
			LogLevel:        logLevel,
			LintdeckPathEnv: os.Getenv("LINTDECK_PATH"),
			LintdeckPathSet: cfg.EnvVarSet,
		}

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking database: %w", err), output.ErrGeneral)
		}
		if exists {
			conn, err := db.Open(cfg.DBPath)
			if err != nil {
				return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
			}
			defer conn.Close()

			info.SchemaVersion, err = db.SchemaVersion(conn)
			if err != nil {
				return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
			}
			stat, err := os.Stat(cfg.DBPath)
			if err != nil {
				return cmdErr(fmt.Errorf("reading database file: %w", err), output.ErrGeneral)
			}
			info.DBSizeBytes = stat.Size()
		}

		w.Success(info, formatConfigHuman(info, !exists))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:         "set [key] [value]",
	Short:       "Change a setting in config.yaml",
	Long:        "Change a setting in config.yaml. Keys: " + strings.Join(config.Keys, ", ") + ".",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		// Environment overrides must not end up in the file.
		cfg, err := config.Load()
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		key, value := args[0], args[1]
		if err := cfg.Set(key, value); err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		if key == "server" {
			if _, err := api.ParseServerURL(cfg.Server); err != nil {
				return cmdErr(err, output.ErrValidation)
			}
		}
		if err := cfg.Save(); err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		shown := value
		if key == "token" || key == "password" {
			shown = config.Redacted(value)
		}
		w.Success(map[string]string{"key": key, "value": shown}, fmt.Sprintf("Set %s = %s in %s", key, shown, cfg.File))
		return nil
	},
}

func formatEnvValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func formatConfigHuman(info configInfo, notFound bool) string {
	dbPath := info.DBPath
	if notFound {
		dbPath = fmt.Sprintf("%s (not created yet)", info.DBPath)
	}

	lines := fmt.Sprintf("Config file:     %s\n", info.ConfigFile)
	lines += fmt.Sprintf("Database path:   %s\n", dbPath)
	if !notFound {
		lines += fmt.Sprintf("Database size:   %s\n", humanize.IBytes(uint64(info.DBSizeBytes)))
		lines += fmt.Sprintf("Schema version:  %d\n", info.SchemaVersion)
	}
	lines += fmt.Sprintf("Log file:        %s (level %s)\n", info.LogPath, info.LogLevel)
	lines += fmt.Sprintf("Server:          %s\n", info.Server)
	lines += fmt.Sprintf("Auth:            %s\n", info.Auth)
	if info.Token != "" {
		lines += fmt.Sprintf("Token:           %s\n", info.Token)
	}
	if info.Login != "" {
		lines += fmt.Sprintf("Login:           %s\n", info.Login)
	}
	lines += fmt.Sprintf("Timeout:         %s\n", info.Timeout)
	lines += fmt.Sprintf("Page size:       %d\n", info.PageSize)
	lines += fmt.Sprintf("LINTDECK_PATH:   %s", formatEnvValue(info.LintdeckPathEnv))

	return lines
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
