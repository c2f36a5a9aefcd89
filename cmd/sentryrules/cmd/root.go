// Package cmd contains the sentryrules command line interface implementation.
package cmd

import (
	"fmt"
	"strings"

	"github.com/els0r/telemetry/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nrescobar/sentryrules/cmd/sentryrules/config"
	"github.com/nrescobar/sentryrules/pkg/conf"
	"github.com/nrescobar/sentryrules/pkg/version"
)

// Execute runs the sentryrules root command.
func Execute() error {
	rootCmd, err := newRootCmd()
	if err != nil {
		return err
	}

	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd.Execute()
}

func newRootCmd() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   "sentryrules",
		Short: "sentryrules compiles and serves address-set expressions",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return initLogging()
		},
	}

	if err := conf.RegisterFlags(rootCmd); err != nil {
		return nil, fmt.Errorf("failed to register flags: %w", err)
	}

	return rootCmd, nil
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initConfig() error {
	path := viper.GetString(conf.ConfigFile)
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "__"))
	viper.AutomaticEnv()
	return nil
}

func initLogging() error {
	var opts []logging.Option
	if dst := viper.GetString(conf.LogDestination); dst != "" {
		opts = append(opts, logging.WithFileOutput(dst))
	}
	opts = append(opts, logging.WithVersion(version.Version()))

	return logging.Init(
		logging.LevelFromString(viper.GetString(conf.LogLevel)),
		logging.Encoding(viper.GetString(conf.LogEncoding)),
		opts...,
	)
}

