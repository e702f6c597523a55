// cmd/storefront/seed.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <products.json>",
	Short: "Upload an already normalized product file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	result, err := p.Seed(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
