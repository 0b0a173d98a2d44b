// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the isa-docset CLI, which converts
// instruction-set reference PDF manuals into an offline docset bundle.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is shared by every subcommand; its level follows --log-level.
var logger = logrus.New()

// rootCmd is the base command for the isa-docset CLI.
var rootCmd = &cobra.Command{
	Use:   "isa-docset",
	Short: "Build an offline docset from instruction-set reference PDFs",
	Long: `isa-docset converts vendor instruction-set reference manuals (PDF) into a
docset bundle: one HTML page and one cropped page image per instruction
group, plus a searchable index.

The instruction reference section is located through the PDF bookmark tree.
Pages are rasterized with Ghostscript.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./isa-docset.yaml or ~/.config/isa-docset/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("docset-dir", "intel-isa.docset", "docset bundle directory")

	mustBind(rootCmd.PersistentFlags(), map[string]string{
		"log_level":  "log-level",
		"docset_dir": "docset-dir",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("isa-docset")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "isa-docset"))
		}
	}

	viper.SetEnvPrefix("ISA_DOCSET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// mustBind binds viper keys to the named flags of fs.
func mustBind(fs *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding %s: %v", key, err))
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
