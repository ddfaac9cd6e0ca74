package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/clinref/medguide/api"
	"github.com/clinref/medguide/config"
	"github.com/clinref/medguide/conversation"
	"github.com/clinref/medguide/database"
	"github.com/clinref/medguide/guidelines"
	"github.com/clinref/medguide/llm"
	"github.com/clinref/medguide/notes"
	"github.com/clinref/medguide/patient"
	"github.com/clinref/medguide/retrieval"
	"github.com/clinref/medguide/search"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "chat":
		chatCmd(cfg, logger, os.Args[2:])
	case "note":
		noteCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "search":
		searchCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", ":8080", "listen address")
	storeKind := flags.String("store", "memory", "document store backend: memory or postgres")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, cleanup, err := openStore(ctx, cfg, *storeKind, logger)
	if err != nil {
		logger.Fatalf("store setup: %v", err)
	}
	defer cleanup()

	server, err := api.New(cfg, store, logger)
	if err != nil {
		logger.Fatalf("server setup: %v", err)
	}

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s (%s store, %s llm)", *addr, *storeKind, cfg.LLM.Provider)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}

func chatCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("chat", flag.ExitOnError)
	patientID := flags.String("patient", "p001", "patient id to chat about")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse chat flags: %v", err)
	}

	p, ok := patient.SampleByID(*patientID)
	if !ok {
		logger.Fatalf("unknown patient id: %s", *patientID)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backend, err := llm.NewBackend(cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	retrievalEngine := retrieval.NewEngine(backend, cfg.RequestTimeout, logger)
	noteEngine := notes.NewEngine(backend, cfg.RequestTimeout, logger)
	controller := conversation.NewController(retrievalEngine, noteEngine, logger)
	session := controller.NewSessionFor(p)

	fmt.Printf("Chatting about %s (%s). Ctrl-D to exit.\n\n", p.Name, p.Diagnosis)
	for _, turn := range session.Turns() {
		printTurn(turn)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}

		delta, err := controller.Submit(ctx, session, utterance)
		if err != nil {
			logger.Printf("submit failed: %v", err)
			continue
		}
		for _, turn := range delta {
			if turn.Role != conversation.RoleUser {
				printTurn(turn)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Fatalf("read input: %v", err)
	}
}

func noteCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("note", flag.ExitOnError)
	patientID := flags.String("patient", "p001", "patient id")
	category := flags.String("category", "", "condition category (default: derived from diagnosis)")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse note flags: %v", err)
	}

	p, ok := patient.SampleByID(*patientID)
	if !ok {
		logger.Fatalf("unknown patient id: %s", *patientID)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backend, err := llm.NewBackend(cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	conditionCategory := *category
	if conditionCategory == "" {
		conditionCategory = conversation.CategoryForDiagnosis(p.Diagnosis)
	}

	note := notes.NewEngine(backend, cfg.RequestTimeout, logger).Generate(ctx, p, conditionCategory)
	fmt.Println(note.Title)
	fmt.Println()
	fmt.Println(note.Content)
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	dataDir := flags.String("dir", cfg.DataDir, "path to directory containing markdown guideline documents")
	seed := flags.Bool("seed", false, "also register the curated guideline set")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, cleanup, err := openStore(ctx, cfg, "postgres", logger)
	if err != nil {
		logger.Fatalf("store setup: %v", err)
	}
	defer cleanup()

	if *seed {
		for _, doc := range guidelines.CuratedDocuments() {
			if err := store.Put(ctx, doc); err != nil {
				logger.Fatalf("seed curated document %s: %v", doc.ID, err)
			}
		}
		logger.Printf("seeded curated guideline set")
	}

	if err := guidelines.IngestDirectory(ctx, store, *dataDir, logger); err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}
}

func searchCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("search", flag.ExitOnError)
	query := flags.String("query", "", "search query")
	patientID := flags.String("patient", "", "optional patient id for context")
	limit := flags.Int("limit", cfg.Search.MaxResults, "maximum number of results")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse search flags: %v", err)
	}

	if strings.TrimSpace(*query) == "" {
		logger.Fatalf("search requires -query")
	}

	var p patient.Context
	if *patientID != "" {
		found, ok := patient.SampleByID(*patientID)
		if !ok {
			logger.Fatalf("unknown patient id: %s", *patientID)
		}
		p = found
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := search.NewClient(cfg)
	if err != nil {
		logger.Fatalf("search setup: %v", err)
	}

	results, err := client.Search(ctx, *query, p, *limit)
	if err != nil {
		logger.Fatalf("search failed: %v", err)
	}

	for idx, result := range results {
		fmt.Printf("%d. %s (%s)\n", idx+1, result.Title, result.Source)
		fmt.Printf("   %s\n", result.Snippet)
		fmt.Printf("   %s\n", result.URL)
	}
}

func openStore(ctx context.Context, cfg config.Config, kind string, logger *log.Logger) (guidelines.Store, func(), error) {
	switch kind {
	case "memory":
		return guidelines.NewCuratedStore(), func() {}, nil
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connection: %w", err)
		}
		if err := database.EnsureGuidelineSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Printf("using postgres document store")
		return guidelines.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind: %s", kind)
	}
}

func printTurn(turn conversation.Turn) {
	fmt.Println(turn.Content)
	if turn.Note != nil {
		fmt.Println()
		fmt.Println(turn.Note.Title)
		fmt.Println(turn.Note.Content)
	}
	if turn.SourceCitation != "" {
		fmt.Printf("[%s]\n", turn.SourceCitation)
	}
	fmt.Println()
}

func printUsage() {
	fmt.Println("Usage: medguide <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Run the HTTP API for the UI shell")
	fmt.Println("  chat     Chat about a patient from the terminal")
	fmt.Println("  note     Generate an assessment and plan note")
	fmt.Println("  ingest   Ingest markdown guideline documents into Postgres (use --dir to override data directory)")
	fmt.Println("  search   Search the web for guideline material")
}
