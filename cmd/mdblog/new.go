package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/mdblog"
	"github.com/eringen/mdblog/post"
	"github.com/eringen/mdblog/scaffold"
)

var (
	newCategory string
	newSummary  string
	newTags     []string
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a markdown post skeleton in the content directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := createPost(cfg.ContentDir, strings.Join(args, " "), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func createPost(dir, title string, now time.Time) (string, error) {
	slug := mdblog.Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no usable characters for a slug", title)
	}
	path := filepath.Join(dir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("post %q already exists", path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	err = scaffold.WritePost(f, scaffold.PostData{
		Title:    title,
		Date:     now.Format(post.DateLayout),
		Summary:  newSummary,
		Category: newCategory,
		Tags:     mdblog.FilterEmpty(newTags),
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func init() {
	newCmd.Flags().StringVar(&newCategory, "category", "", "post category")
	newCmd.Flags().StringVar(&newSummary, "summary", "", "one-line summary")
	newCmd.Flags().StringSliceVar(&newTags, "tags", nil, "comma-separated tags")
	rootCmd.AddCommand(newCmd)
}
