package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

var indexTitle string

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Index plain-text documents",
	Long: `Reads the given plain-text files, splits them into chunks, embeds
the chunks and adds them to the local index. Re-running index on a
file creates a new document each time; use 'askdocs document delete'
to drop old ones.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexTitle, "title", "t", "", "document title (single file only, default: file name)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}
	if indexTitle != "" && len(args) > 1 {
		return errors.New("--title can only be used with a single file")
	}

	ctx := context.Background()

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if !utf8.Valid(content) {
			return fmt.Errorf("%s is not plain text", path)
		}

		title := indexTitle
		if title == "" {
			title = titleFromPath(path)
		}

		doc := &domain.Document{
			ID:        uuid.NewString(),
			OwnerID:   owner(),
			Title:     title,
			Content:   string(content),
			CreatedAt: time.Now().UTC(),
		}

		stats, err := indexingService.Index(ctx, doc)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyDocument) {
				return fmt.Errorf("%s contains no indexable text", path)
			}
			return fmt.Errorf("index %s: %w", path, err)
		}

		cmd.Printf("Indexed %s as %s (%d parents, %d children)\n",
			path, doc.ID, stats.Parents, stats.Children)
		if stats.Degraded {
			printWarning(cmd, "embedding quota exhausted; some chunks use fallback vectors")
		}
	}

	return nil
}

// titleFromPath derives a readable title from the file name.
func titleFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
