package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/smart-album/server/internal/album/embedding"
	"github.com/smart-album/server/internal/album/filter"
	"github.com/smart-album/server/internal/album/retrieval"
	"github.com/smart-album/server/internal/album/store"
	"github.com/smart-album/server/internal/agent/fallback"
	"github.com/smart-album/server/internal/agent/graph"
	"github.com/smart-album/server/internal/agent/model"
	"github.com/smart-album/server/internal/agent/repo"
	"github.com/smart-album/server/internal/agent/router"
	"github.com/smart-album/server/internal/agent/session"
	"github.com/smart-album/server/internal/agent/tools"
	"github.com/smart-album/server/internal/core"
	logx "github.com/smart-album/server/pkg/logger"
	pkgredis "github.com/smart-album/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the album agent,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis  pkgredis.Config
	Qdrant store.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Planner       model.PlannerModelConfig
	FallbackModel model.FallbackModelConfig
	Embedding     embedding.Config
	Prompt        model.PromptConfig
	Conversation  model.ConversationConfig
	Policy        model.PolicyConfig

	Timezone string `envconfig:"ALBUM_TIMEZONE" default:"Asia/Shanghai"`
	SeedDemo bool   `envconfig:"SEED_DEMO_ALBUM" default:"true"`
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: envCfg.Environment})

	loc, err := time.LoadLocation(envCfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid ALBUM_TIMEZONE '%s': %v", envCfg.Timezone, err)
	}

	// ==================== Infrastructure ====================
	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	photoStore, err := envCfg.Qdrant.New()
	if err != nil {
		log.Fatalf("Failed to initialise photo store: %v", err)
	}
	if err := photoStore.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure photo collection: %v", err)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  envCfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if envCfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = envCfg.BaseURL
	}
	genaiClient, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	// ==================== Retrieval stack ====================
	embedder := embedding.NewProvider(genaiClient, envCfg.Embedding.Model)
	builder := filter.NewBuilder(photoStore, loc)
	orchestrator := retrieval.NewOrchestrator(embedder, photoStore)
	registry := tools.NewRegistry(orchestrator, builder, photoStore)

	if envCfg.SeedDemo {
		if err := seedAlbum(ctx, photoStore, embedder, loc); err != nil {
			log.Fatalf("Failed to seed demo album: %v", err)
		}
	}

	// ==================== Agent ====================
	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}
	conversationRepo := repo.NewRedisConversationRepository(rdb, ttl)

	planner, err := graph.BuildPlanningGraph(ctx, graph.Config{
		Client:           genaiClient,
		Planner:          envCfg.Planner,
		Prompt:           envCfg.Prompt,
		Conversation:     envCfg.Conversation,
		ConversationRepo: conversationRepo,
		Registry:         registry,
	})
	if err != nil {
		log.Fatalf("Failed to build planning graph: %v", err)
	}

	degraded, err := fallback.New(envCfg.FallbackModel, envCfg.Prompt, envCfg.Conversation, registry, conversationRepo)
	if err != nil {
		log.Fatalf("Failed to build fallback executor: %v", err)
	}

	agent := router.New(planner, degraded, session.NewManager(), envCfg.Policy)

	// ==================== Scripted conversation ====================
	turns := []struct {
		description string
		query       string
	}{
		{
			description: "Combined date and content query",
			query:       "1.18 海边",
		},
		{
			description: "Exact date query",
			query:       "2026-01-17 的照片",
		},
		{
			description: "Pure content query",
			query:       "有没有日落的照片",
		},
		{
			description: "Album introspection",
			query:       "我的相册里都记录了什么信息？",
		},
	}

	sessionID := session.NewSessionID()

	for i, turn := range turns {
		fmt.Printf("\nTurn %d: %s\n", i+1, turn.description)
		fmt.Printf("Query: %q\n", turn.query)

		res := agent.RunTurn(ctx, model.QueryInput{
			SessionID: sessionID,
			Query:     turn.query,
		})

		fmt.Printf("[%s] %s\n", res.Path, res.Answer)
		for _, p := range res.Photos {
			fmt.Printf("  - %s (score %.3f) %s\n", p.PhotoID, p.Score, p.Meta.Caption)
		}
		for _, s := range res.Suggestions {
			fmt.Printf("  suggestion: %s\n", s)
		}

		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("\nConversation finished.")
}

// seedAlbum upserts a small demo album so the scripted conversation has
// something to find. Idempotent: photo IDs are fixed.
func seedAlbum(ctx context.Context, photoStore *store.PhotoStore, embedder *embedding.Provider, loc *time.Location) error {
	photos := []struct {
		id      string
		taken   time.Time
		caption string
		tags    []string
	}{
		{"photo-0001", time.Date(2026, 1, 18, 15, 20, 0, 0, loc), "海边的全家福，阳光很好", []string{"family", "beach"}},
		{"photo-0002", time.Date(2026, 1, 18, 17, 5, 0, 0, loc), "海边日落，天空橙红色", []string{"beach", "sunset"}},
		{"photo-0003", time.Date(2026, 1, 17, 12, 40, 0, 0, loc), "朋友聚餐的合影", []string{"friends", "food"}},
		{"photo-0004", time.Date(2025, 1, 18, 9, 10, 0, 0, loc), "去年今天在山顶看雪", []string{"travel", "snow"}},
		{"photo-0005", time.Date(2026, 2, 2, 18, 45, 0, 0, loc), "城市上空的日落", []string{"city", "sunset"}},
	}

	batch := make([]store.Photo, 0, len(photos))
	for _, p := range photos {
		vector, err := embedder.Embed(ctx, p.caption)
		if err != nil {
			return fmt.Errorf("embed caption for %s: %w", p.id, err)
		}
		batch = append(batch, store.Photo{
			Meta: store.PhotoMeta{
				PhotoID:     p.id,
				TakenAt:     p.taken.Unix(),
				Tags:        p.tags,
				Caption:     p.caption,
				PreviewPath: fmt.Sprintf("previews/%s.jpg", p.id),
			},
			Vector: vector,
		})
	}

	if err := photoStore.Upsert(ctx, batch); err != nil {
		return fmt.Errorf("upsert demo photos: %w", err)
	}

	logx.Info().Int("photos", len(batch)).Msg("Demo album seeded")
	return nil
}
