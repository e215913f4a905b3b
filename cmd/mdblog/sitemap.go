package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eringen/mdblog"
	"github.com/eringen/mdblog/content"
)

var sitemapOut string

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Write sitemap.xml and robots.txt for the posts on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		slugs := cfg.Posts
		if len(slugs) == 0 {
			if slugs, err = (content.DirStore{Dir: cfg.ContentDir}).Slugs(); err != nil {
				return fmt.Errorf("listing posts: %w", err)
			}
		}
		if err := writeSitemap(sitemapOut, cfg, slugs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote sitemap with %d posts to %s\n", len(slugs), sitemapOut)
		return nil
	},
}

func writeSitemap(dir string, cfg mdblog.SiteConfig, slugs []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "sitemap.xml"))
	if err != nil {
		return err
	}
	if err := mdblog.WriteSitemap(f, cfg.URL, cfg.Categories, slugs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "robots.txt"), []byte(mdblog.Robots(cfg.URL)), 0o644)
}

func init() {
	sitemapCmd.Flags().StringVarP(&sitemapOut, "out", "o", "public", "output directory")
	rootCmd.AddCommand(sitemapCmd)
}
