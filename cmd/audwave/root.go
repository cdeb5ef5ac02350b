// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ik5/audwave/internal/config"
)

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	v := config.New()
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "audwave",
		Short:         "Extract RMS waveforms from audio files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(extractCommand(v, &configFile))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return bindFlags(v, cmd)
	}

	return rootCmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := config.BindFlags(v, cmd.InheritedFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
