/*
Copyright © 2025 timewise-app
*/
package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
)

// corpusFile is the shape of a scraper export file.
type corpusFile struct {
	Documents []types.Document   `json:"documents"`
	Images    []types.ImageAsset `json:"images"`
}

var ingestDir string

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load scraped documentation into the corpus store",
	Long: `Reads scraper export files (JSON with "documents" and "images" arrays)
from a directory and inserts their contents into the configured corpus store.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()
		corpus, err := newCorpusStore(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to corpus store: %v", err)
		}
		defer corpus.Close(ctx)

		entries, err := os.ReadDir(ingestDir)
		if err != nil {
			log.Fatalf("Failed to read ingest directory: %v", err)
		}

		var docTotal, imageTotal int
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
				continue
			}
			path := filepath.Join(ingestDir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				log.Fatalf("Failed to read %s: %v", path, err)
			}
			var file corpusFile
			if err := json.Unmarshal(data, &file); err != nil {
				log.Fatalf("Failed to parse %s: %v", path, err)
			}
			if len(file.Documents) > 0 {
				if err := corpus.InsertDocuments(ctx, file.Documents); err != nil {
					log.Fatalf("Failed to insert documents from %s: %v", path, err)
				}
				docTotal += len(file.Documents)
			}
			if len(file.Images) > 0 {
				if err := corpus.InsertImages(ctx, file.Images); err != nil {
					log.Fatalf("Failed to insert images from %s: %v", path, err)
				}
				imageTotal += len(file.Images)
			}
			log.Printf("Ingested %s: %d documents, %d images", entry.Name(), len(file.Documents), len(file.Images))
		}
		log.Printf("Ingest complete: %d documents, %d images", docTotal, imageTotal)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "data", "directory of scraper export files")
}
