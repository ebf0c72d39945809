// Package main is the ragpipe CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/ragpipe/internal/backend"
	"github.com/hyperjump/ragpipe/internal/cli"
	"github.com/hyperjump/ragpipe/internal/config"
	"github.com/hyperjump/ragpipe/internal/extract"
	"github.com/hyperjump/ragpipe/internal/models"
	"github.com/hyperjump/ragpipe/internal/normalize"
	"github.com/hyperjump/ragpipe/internal/rag"
	"github.com/hyperjump/ragpipe/internal/server"
	"github.com/hyperjump/ragpipe/internal/store"
	"github.com/hyperjump/ragpipe/internal/watcher"
	"github.com/hyperjump/ragpipe/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath    = "config.yaml"
	defaultProcessedName = "processed.txt"
)

// loadConfig loads .env into the environment, then the YAML config at path
// (defaults when the file is absent), then applies environment overrides.
func loadConfig(path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)
	return cfg, nil
}

func newLogger(cfg *config.Config, debug bool) (*zap.Logger, error) {
	return utils.NewLoggerWithFile(cfg.Debug || debug, utils.LogFileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}

// setup loads config and builds the logger, exiting on failure.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := newLogger(cfg, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "ask":
		runAsk()
	case "extract":
		runExtract()
	case "embed":
		runEmbed()
	case "query":
		runQuery()
	case "server":
		runServer()
	case "version", "--version", "-v":
		fmt.Printf("ragpipe version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so flag.Parse sees them.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinArgs joins positional args so quoted and unquoted queries behave the same.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// processedOutputPath returns out, or the default file in outputDir when out is empty.
func processedOutputPath(out, outputDir string) string {
	if out != "" {
		return out
	}
	if outputDir == "" {
		outputDir = "."
	}
	return filepath.Join(outputDir, defaultProcessedName)
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: ragpipe ask [flags] <question>\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Without --server, the document given by --pdf (or --text) is ingested into a
fresh session first; asking with nothing ingested fails.

Examples:
  ragpipe ask --pdf report.pdf --out bin/processed.txt "what was the revenue?"
  ragpipe ask --text "Michael Harditya is a student." "who is Michael?"
  ragpipe ask --server http://localhost:8080 "who is Michael?"
`)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	pdfPath := fs.String("pdf", "", "PDF (or .txt/.md/.xlsx) file to ingest before asking")
	outPath := fs.String("out", "", "processed text output path (default <watch.output_dir>/processed.txt)")
	text := fs.String("text", "", "raw text to ingest before asking")
	docID := fs.String("id", "1", "document id for --text")
	serverURL := fs.String("server", "", "ask a running server instead of a local session")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := joinArgs(fs.Args())
	if query == "" {
		printAskUsage(fs)
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	if *serverURL != "" {
		resp, err := askViaHTTP(*serverURL, &models.AskRequest{Query: query})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnswer(os.Stdout, resp, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	pipeline, err := rag.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}
	ctx := context.Background()
	if *text != "" {
		if _, err := pipeline.AddDocument(ctx, *docID, *text); err != nil {
			fmt.Fprintf(os.Stderr, "Add document failed: %v\n", err)
			os.Exit(1)
		}
	}
	if *pdfPath != "" {
		in := models.PDFInput{PDFPath: *pdfPath, OutputPath: processedOutputPath(*outPath, cfg.Watch.OutputDir)}
		if _, err := pipeline.AddPDFDocument(ctx, in); err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
	}

	resp, err := pipeline.Ask(ctx, &models.AskRequest{Query: query})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, req *models.AskRequest) (*models.AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	outPath := fs.String("out", "", "processed text output path (default <watch.output_dir>/processed.txt)")
	remote := fs.Bool("remote", false, "extract through the backend's /extract-pdf endpoint")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: ragpipe extract [--out path] [--remote] <file.pdf>")
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	var extractor extract.Extractor = extract.NewLocal()
	if *remote || cfg.Extract.Mode == config.ExtractRemote {
		extractor = extract.NewRemote(newBackendClient(cfg, logger))
	}
	raw, err := extractor.Extract(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	text := normalize.Text(raw)
	out := processedOutputPath(*outPath, cfg.Watch.OutputDir)
	if err := store.WriteProcessedText(out, text); err != nil {
		fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Extracted %d characters to %s\n", len([]rune(text)), out)
}

func runEmbed() {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	content := joinArgs(fs.Args())
	if content == "" {
		fmt.Fprintln(os.Stderr, "Usage: ragpipe embed [--output json] <text>")
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	emb, err := newBackendClient(cfg, logger).GenerateEmbedding(context.Background(), content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteEmbedding(os.Stdout, emb, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	query := joinArgs(fs.Args())
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: ragpipe query <text>")
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	pipeline, err := rag.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}
	result, err := pipeline.RemoteQuery(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if result == "" {
		fmt.Println(rag.NoContextMessage)
		return
	}
	fmt.Println(result)
}

func newBackendClient(cfg *config.Config, logger *zap.Logger) *backend.Client {
	return backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey,
		backend.WithTimeout(time.Duration(cfg.Backend.TimeoutSeconds)*time.Second),
		backend.WithLogger(logger))
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, watcher events, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", *configPath),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("chat_provider", cfg.Chat.Provider),
		zap.String("chat_model", cfg.Chat.Model))

	pipeline, err := rag.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watchSvc server.WatchService
	if len(cfg.Watch.Directories) > 0 {
		w := watcher.New(cfg.Watch, pipeline, watcher.WithLogger(logger))
		if err := w.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
		go w.SyncExisting(ctx)
		watchSvc = w
	}

	srv := server.NewServer(pipeline, cfg, watchSvc, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func printUsage() {
	fmt.Println(`ragpipe - keyword-window retrieval-augmented question answering

Usage:
  ragpipe <command> [flags]

Commands:
  ask       Ingest a document and ask a question about it
  extract   Extract and normalize text from a PDF into a processed text file
  embed     Generate an embedding through the context backend
  query     Send a query to the context backend's /query endpoint
  server    Start the HTTP API (and watch folders, if configured)
  version   Print version
  help      Show this help

Configuration is read from config.yaml (override with --config); a .env file
and RAGPIPE_* environment variables override backend and chat settings.`)
}
