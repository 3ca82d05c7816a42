/*
Copyright © 2025 timewise-app
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/database"
)

// initSchemaCmd represents the init-schema command
var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Drop and recreate the Weaviate corpus classes",
	Long: `Deletes the SupportDocument and SupportImage classes in Weaviate and
recreates them empty. Only meaningful with the weaviate corpus driver.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.Corpus.Driver != config.CorpusDriverWeaviate {
			log.Fatalf("init-schema requires the weaviate corpus driver, got %q", cfg.Corpus.Driver)
		}

		store, err := database.NewWeaviateCorpusStore(cfg.Corpus.Weaviate)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate: %v", err)
		}
		if err := store.ReInit(context.Background()); err != nil {
			log.Fatalf("Failed to reinitialize schema: %v", err)
		}
		log.Println("Weaviate schema reinitialized")
	},
}

func init() {
	rootCmd.AddCommand(initSchemaCmd)
}
