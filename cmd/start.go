/*
Copyright © 2025 timewise-app
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/database"
	"github.com/timewise-app/support-be/handler"
	"github.com/timewise-app/support-be/service"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the support server",
	Long:  `Starts the HTTP and WebSocket server that answers Timewise support questions`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		corpus, err := newCorpusStore(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to connect to corpus store: %v", err)
		}
		defer corpus.Close(context.Background())

		ai, err := newAIService(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize AI service: %v", err)
		}

		supportService := service.NewSupportService(corpus, ai, cfg)
		wsService := service.NewWebSocketService(supportService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		askHandler := handler.NewAskHandler(supportService)
		searchHandler := handler.NewSearchHandler(supportService)
		statsHandler := handler.NewStatsHandler(supportService)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/health", statsHandler.HandleHealth)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/ask", askHandler.HandleAsk)
			apiV1.GET("/documents/search", searchHandler.HandleSearch)
			apiV1.GET("/stats", statsHandler.HandleStats)
		}

		router.GET("/ws/ask", func(c *gin.Context) {
			wsService.HandleAsk(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func newCorpusStore(ctx context.Context, cfg *config.Config) (database.CorpusStore, error) {
	switch cfg.Corpus.Driver {
	case config.CorpusDriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.Corpus.MongoURI)
		if err != nil {
			return nil, err
		}
		return database.NewMongoCorpusStore(client, cfg.Corpus.MongoDatabase), nil
	case config.CorpusDriverWeaviate:
		return database.NewWeaviateCorpusStore(cfg.Corpus.Weaviate)
	default:
		return nil, fmt.Errorf("unknown corpus driver %q", cfg.Corpus.Driver)
	}
}

func newAIService(cfg *config.Config) (service.AIService, error) {
	switch cfg.AI.Provider {
	case config.AIProviderOpenAI:
		return service.NewOpenAIService(cfg.AI.Endpoint, cfg.AI.OpenAIAPIKey, cfg.AI.Model), nil
	case config.AIProviderGemini:
		return service.NewGeminiService(cfg.AI.GeminiAPIKeys, cfg.AI.Model)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
