// cmd/storefront/index.go
package main

import (
	"context"

	"github.com/spf13/cobra"

	"storefront/internal/common/config"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Create the product index with its facet and vector mapping",
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := config.ValidateForIngest(a.cfg); err != nil {
		return err
	}

	ctx := context.Background()
	es, err := a.connectElasticsearch(ctx)
	if err != nil {
		return err
	}
	upserter, err := a.newUpserter(es)
	if err != nil {
		return err
	}

	created, err := upserter.EnsureIndex(ctx)
	if err != nil {
		return err
	}
	if created {
		cmd.Printf("Index %s created.\n", a.cfg.Index.Name)
	} else {
		cmd.Printf("Index %s already exists.\n", a.cfg.Index.Name)
	}
	return nil
}
