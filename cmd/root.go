/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/deduce/internal/config"
	"github.com/substantialcattle5/deduce/internal/logger"
)

// fileCfg holds the defaults loaded from the user's config file. Flags
// always win over these.
var fileCfg = &config.FileConfig{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deduce",
	Short: "Deduce - find and clean up duplicate files",
	Long: `Deduce finds files with identical content across directory trees and
lets you delete them, move them aside, or just report on the wasted space.

Detection is two-phase: files are bucketed by exact size, then equal-sized
files are compared by a fast content fingerprint. Fingerprints are cached
between runs, so re-scanning an unchanged tree does no hashing at all.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadFileConfig(configPath)
		if err != nil {
			return err
		}
		fileCfg = cfg

		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		logFile, _ := cmd.Flags().GetString("log-file")
		if logFile == "" {
			logFile = fileCfg.LogFile
		}

		level := "info"
		if quiet {
			level = "error"
		}
		if verbose {
			level = "debug"
		}
		return logger.Init(level, logFile)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Disable progress bars and reduce output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is ~/.config/deduce/config.yaml)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")
}
