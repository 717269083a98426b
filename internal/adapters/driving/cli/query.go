package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

var (
	queryTopK int
	queryDocs []string
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about your indexed documents",
	Long: `Answers a question using retrieval-augmented generation: the most
relevant chunks are retrieved from the index, reranked, and passed to
the generation model as grounding context. The answer cites its
sources.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages to use (default 5)")
	queryCmd.Flags().StringSliceVar(&queryDocs, "doc", nil, "restrict to specific document IDs (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	ctx := context.Background()
	answer, err := queryService.Query(ctx, args[0], owner(), domain.QueryOptions{
		TopK:        queryTopK,
		DocumentIDs: queryDocs,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println(color.New(color.Bold).Sprint("Sources:"))
		for i, src := range answer.Sources {
			title := src.Title
			if title == "" {
				title = src.ParentID
			}
			cmd.Printf("  [%d] %s\n", i+1, title)
			if src.Excerpt != "" {
				cmd.Printf("      %s\n", src.Excerpt)
			}
		}
	}

	if answer.Degraded {
		cmd.Println()
		printWarning(cmd, "answer is degraded: one or more pipeline stages fell back")
	}

	return nil
}

// printWarning writes a coloured warning line to the command's stderr.
func printWarning(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.YellowString("warning:"), msg)
}
