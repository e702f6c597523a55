// cmd/storefront/ingest.go
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront/internal/catalog/pipeline"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest [source files...]",
	Short: "Parse, enrich and index catalog exports",
	Long: `Parses every catalog source, enriches the products with images and embeddings
and upserts them into the search index in one batch.
Without arguments every .csv, .tsv and .xlsx file in the source directory is used.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "source directory (default catalog.source_dir)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, upserter, cleanup, err := a.newPipeline(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := upserter.EnsureIndex(ctx); err != nil {
		return err
	}

	var result *pipeline.Result
	if len(args) > 0 {
		result, err = p.Run(ctx, args)
	} else {
		result, err = p.RunDir(ctx, ingestDir)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
