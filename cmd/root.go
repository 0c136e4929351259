// Package cmd defines and implements the CLI commands for the
// llmstxt-crawler executable.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llmstxt-crawler",
		Short: "Crawl a documentation site into llms.txt artifacts",
		Long: `llmstxt-crawler walks a documentation website restricted to a URL
pattern, extracts each page's primary content, and writes an llms.txt
navigation index plus an llms-full.txt content dump following the
llms.txt convention.`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; flags and LLMSTXT_* env vars work without one)")

	cmd.AddCommand(newCrawlCmd())
	return cmd
}

// initConfig wires env overrides and the optional config file into the
// global viper instance before any command runs.
func initConfig() {
	v := viper.GetViper()
	v.SetEnvPrefix("LLMSTXT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "read config %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
	}
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
