package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/mdblog"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mdblog",
	Short: "An offline-first markdown blog built with Go, Echo, and templ",
	Long: `mdblog serves markdown posts with a front-matter header. Every read goes
through a caching router that keeps the site usable when the origin is
unreachable.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "mdblog.yaml", "config file path")
}

func loadConfig() (mdblog.SiteConfig, error) {
	return mdblog.LoadConfig(cfgFile)
}
