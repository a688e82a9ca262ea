// Command orchestra wires the full pipeline and answers queries from
// stdin. With ANTHROPIC_API_KEY set it generates answers through Claude;
// otherwise it falls back to the deterministic canned generator.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"

	"github.com/maravaman/intent-orchestra-nexus/engine"
	"github.com/maravaman/intent-orchestra-nexus/generator"
	anthropicgen "github.com/maravaman/intent-orchestra-nexus/generator/anthropic"
	"github.com/maravaman/intent-orchestra-nexus/generator/static"
	"github.com/maravaman/intent-orchestra-nexus/logger"
	"github.com/maravaman/intent-orchestra-nexus/memory"
	sqlitestore "github.com/maravaman/intent-orchestra-nexus/memory/store/sqlite"
	"github.com/maravaman/intent-orchestra-nexus/responder"
	"github.com/maravaman/intent-orchestra-nexus/router"
	"github.com/maravaman/intent-orchestra-nexus/users"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbPath := os.Getenv("ORCHESTRA_DB")
	if dbPath == "" {
		dbPath = "orchestra.db"
	}

	store, err := sqlitestore.Open(dbPath, nil, log)
	if err != nil {
		log.Fatal("open store", "error", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := memory.NewSweeper(store, time.Hour, log)
	sweeper.Start(ctx)

	var gen generator.Generator
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		client := sdk.NewClient(option.WithAPIKey(key))
		gen = anthropicgen.New(&client, anthropicgen.Config{Model: os.Getenv("ANTHROPIC_MODEL")})
		log.Info("content generator: anthropic")
	} else {
		gen = static.New()
		log.Info("content generator: static (set ANTHROPIC_API_KEY for live answers)")
	}

	registry := responder.NewRegistry()
	for _, r := range []responder.Responder{
		responder.NewScenic(gen, log),
		responder.NewRiver(gen, log),
		responder.NewPark(gen, log),
		responder.NewHistorySearch(store, log),
	} {
		if err := registry.Register(r); err != nil {
			log.Fatal("register responder", "error", err)
		}
	}

	rt := router.New(registry, router.Config{
		HistoryResponderID: responder.HistoryID,
		DefaultResponderID: responder.ScenicID,
	}, log)

	guard, err := engine.NewRateLimiter(30, time.Minute)
	if err != nil {
		log.Fatal("rate limiter", "error", err)
	}
	defer guard.Close()

	userReg := users.NewRegistry()
	user := userReg.Create("local")

	eng := engine.New(rt, store,
		engine.WithUsers(userReg),
		engine.WithGuardrails(guard),
		engine.WithLogger(log),
	)

	fmt.Println("Ask about scenic spots, rivers, parks, or your past queries. :stats for memory stats, :quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case ":quit", ":q":
			return
		case ":stats":
			printStats(ctx, store, user.ID)
			continue
		}

		result, err := eng.ProcessQuery(ctx, line, user.ID, user.SessionID)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		for i, a := range result.Responses {
			fmt.Printf("\n%d. %s (rank %d, confidence %.2f)\n%s\n",
				i+1, a.ResponderName, a.RelevanceScore, a.Confidence, a.Text)
			if a.Error != "" {
				fmt.Println("   degraded:", a.Error)
			}
		}
		fmt.Printf("\n[%d ms]\n", result.TotalExecutionTimeMs)
	}
}

func printStats(ctx context.Context, store *sqlitestore.Store, userID string) {
	stats, err := store.Stats(ctx, userID)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("short-term: %d entries, long-term: %d entries, conversations: %d (avg %.0f ms, %.1f responders/query)\n",
		stats.ShortTerm.Count, stats.LongTerm.Count,
		stats.Conversations, stats.AvgExecutionTimeMs, stats.AvgRespondersPerQuery)
}
