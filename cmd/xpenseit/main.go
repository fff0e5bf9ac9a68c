package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/CMCFame/Xpenseit/internal/expense"
	"github.com/CMCFame/Xpenseit/internal/extraction"
	"github.com/CMCFame/Xpenseit/internal/rates"
	"github.com/CMCFame/Xpenseit/internal/web"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("xpenseit")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		extractorType = fs.StringLong("extractor", "gemini", "Extractor type: 'gemini' or 'ollama'")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		ratesURL      = fs.StringLong("rates-url", rates.DefaultEndpoint, "Exchange rate API endpoint")
		ratesCache    = fs.StringLong("rates-cache", "", "Rate cache file path (empty disables caching)")
		logoPath      = fs.StringLong("logo", "", "Logo image path for the report header (PNG or JPEG)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("XPENSEIT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize extractor based on type
	var extractor extraction.Extractor
	var err error
	switch *extractorType {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini extractor...", "model", *geminiModel)
		extractor, err = extraction.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama extractor...", "url", *ollamaURL, "model", *ollamaModel)
		extractor, err = extraction.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid extractor type", "type", *extractorType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer extractor.Close()

	// Initialize the rate cache if configured
	var cache *rates.Cache
	if *ratesCache != "" {
		slog.Info("Initializing rate cache...", "path", *ratesCache)
		cache, err = rates.NewCache(*ratesCache)
		if err != nil {
			slog.Error("Failed to initialize rate cache", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
	}
	ratesClient := rates.NewClient(*ratesURL, cache)

	// Load the report logo if configured
	var logo []byte
	if *logoPath != "" {
		logo, err = os.ReadFile(*logoPath)
		if err != nil {
			slog.Error("Failed to read logo", "path", *logoPath, "error", err)
			os.Exit(1)
		}
	}

	// Initialize the session working set and service
	store := expense.NewMemoryStore()
	service := expense.NewService(store, extractor)

	// Initialize server
	basicAuth := web.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := web.NewServer(service, ratesClient, logo, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
