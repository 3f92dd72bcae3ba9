package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gradient/internal/api"
	"gradient/internal/config"
	"gradient/internal/embedder"
	"gradient/internal/pagetext"
	"gradient/internal/pipeline"
	"gradient/internal/report"
	"gradient/internal/segmenter"
	"gradient/internal/summary"
	"gradient/internal/tokenizer"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API instead of batch corpus processing")
	flag.Parse()

	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *serve && cfg.APIKey == "" {
		log.Error("GRADIENT_API_KEY is required in serve mode")
		os.Exit(1)
	}

	seg, err := segmenter.New(cfg.Segmenter(), tokenizer.Count)
	if err != nil {
		log.Error("build segmenter", "error", err)
		os.Exit(1)
	}

	opts := pagetext.Options{
		CharsPerPage:      cfg.CharsPerPage,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
	}

	emb, stats := newEmbedder(cfg)
	if emb != nil {
		defer emb.Close()
	}

	if *serve {
		runServe(seg, opts, emb, stats, log, cfg)
		return
	}
	runBatch(seg, opts, emb, log, cfg)
}

// newEmbedder builds the configured provider, or nil when embedding is off.
func newEmbedder(cfg config.Config) (embedder.Embedder, *embedder.Stats) {
	stats := embedder.NewStats(time.Hour)
	var e embedder.Embedder
	switch cfg.EmbedProvider {
	case "ollama":
		e = embedder.NewOllama(cfg.OllamaURL, cfg.OllamaModel, stats)
	case "openai":
		e = embedder.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, stats)
	default:
		return nil, nil
	}
	return embedder.WithCache(e, cfg.EmbedCacheSize), stats
}

func runBatch(seg *segmenter.Segmenter, opts pagetext.Options, emb embedder.Embedder, log *slog.Logger, cfg config.Config) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := pipeline.New(seg, opts, emb, cfg.EmbedBatchSize, cfg.Workers, log)

	log.Info("processing corpus", "input", cfg.InputDir, "output", cfg.OutputDir, "workers", cfg.Workers)
	results, err := p.Run(ctx, cfg.InputDir)
	if err != nil {
		log.Error("corpus run failed", "error", err)
		os.Exit(1)
	}

	var chunks []segmenter.Chunk
	var sums []summary.Summary
	for _, r := range results {
		chunks = append(chunks, r.Chunks...)
		sums = append(sums, r.Summary)
	}
	fails := pipeline.Failures(results)

	if err := report.WriteAll(cfg.OutputDir, chunks, sums, fails); err != nil {
		log.Error("write reports", "error", err)
		os.Exit(1)
	}
	log.Info("corpus processed",
		"documents", len(results),
		"chunks", len(chunks),
		"failures", len(fails),
	)
	if len(fails) > 0 {
		os.Exit(2)
	}
}

func runServe(seg *segmenter.Segmenter, opts pagetext.Options, emb embedder.Embedder, stats *embedder.Stats, log *slog.Logger, cfg config.Config) {
	srv := api.NewServer(seg, opts, emb, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting gradient api", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
