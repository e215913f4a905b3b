package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/mdblog/worker"
)

var cacheVersionCmd = &cobra.Command{
	Use:   "cache-version",
	Short: "Stamp a new cache version so clients drop their old partitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		old := cfg.Worker.Version
		cfg.Worker.Version = worker.NewVersion(time.Now())
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cache version %s -> %s\n", old, cfg.Worker.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheVersionCmd)
}
