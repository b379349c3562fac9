package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recipeq/internal/app"
	"github.com/kailas-cloud/recipeq/internal/config"
	logpkg "github.com/kailas-cloud/recipeq/internal/logger"
	"github.com/kailas-cloud/recipeq/internal/version"
)

var (
	env     string
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "recipectl",
	Short: "recipectl - command line access to the recipe store",
	Long: `recipectl evaluates recipe queries and moves recipes in and out of
the configured document store.

It reads the same YAML configuration as the recipeq server, selected by
--env (or the ENV variable) or given directly with --config.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", config.GetEnv(), "config environment (local, docker, prod)")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (overrides --env)")
}

// openApp builds the services for a command. Replaced in tests.
var openApp = func(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	a, err := app.New(logpkg.ContextWithLogger(ctx, logger), cfg, logger.With(zap.String("cmd", "recipectl")))
	if err != nil {
		return nil, err
	}
	return a, nil
}

func loadConfig() (config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load(env)
}
