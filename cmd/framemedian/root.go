package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"framemedian/internal/logging"
	"framemedian/pkg/config"
)

const defaultConfigPath = "framemedian.yaml"

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(*c.configFlag)
		if path == "" {
			path = defaultConfigPath
		}
		c.config, c.configErr = config.LoadConfig(path)
	})
	return c.config, c.configErr
}

// logger builds the job logger; flags override the logging section
func (c *commandContext) logger(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	level, format := cfg.Logging.Level, cfg.Logging.Format
	if v := strings.TrimSpace(*c.logLevelFlag); v != "" {
		level = v
	}
	if v := strings.TrimSpace(*c.logFormatFlag); v != "" {
		format = v
	}
	return logging.New(logging.Options{Level: level, Format: format, Output: out})
}

func newRootCommand() *cobra.Command {
	var configFlag, logLevelFlag, logFormatFlag string
	ctx := &commandContext{
		configFlag:    &configFlag,
		logLevelFlag:  &logLevelFlag,
		logFormatFlag: &logFormatFlag,
	}

	rootCmd := &cobra.Command{
		Use:           "framemedian",
		Short:         "Per-pixel median and trimmed-mean filtering of frame sequences",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Job configuration file (default "+defaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: console or json")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newCompareCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
