package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"draftdesk/internal/auth"
	"draftdesk/internal/config"
	"draftdesk/internal/gateway"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

// run wires the client and returns the process exit code, so deferred
// cleanup always happens.
func run() int {
	var (
		envFile   = flag.String("env", ".env", "dotenv file to load before reading the environment")
		baseURL   = flag.String("base-url", "", "backend base URL (overrides DRAFTDESK_API_BASE_URL)")
		quiet     = flag.Bool("quiet", false, "log to the log file only")
		noLogFile = flag.Bool("no-log-file", false, "do not write a log file")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: draftdesk [flags] [command [args...]]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Without a command an interactive session starts.\n\nflags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load(*envFile)

	cfg := config.Load()
	if *baseURL != "" {
		cfg.APIBaseURL = *baseURL
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s❌ Invalid configuration: %v%s\n", colorRed, err, colorReset)
		return 2
	}

	var console io.Writer = os.Stderr
	if *quiet {
		console = nil
	}
	var logFile *os.File
	if !*noLogFile {
		f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s⚠ Logging to console only: %v%s\n", colorYellow, err, colorReset)
		} else {
			logFile = f
			defer logFile.Close()
		}
	}
	var fileWriter io.Writer
	if logFile != nil {
		fileWriter = logFile
	}
	logger := config.NewLogger(console, fileWriter, cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("draftdesk starting",
		"environment", cfg.Environment,
		"api_base_url", cfg.APIBaseURL,
		"poll_interval", cfg.PollInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var verifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			logger.Error("failed to create JWT verifier", "error", err)
			return 1
		}
		verifier = v
		defer v.Close()
	}

	sessions := auth.NewSessionManager(auth.NewFileStore(cfg.SessionFile), verifier, logger)
	client := gateway.New(cfg.APIBaseURL, logger.With("component", "gateway"),
		gateway.WithTimeout(cfg.HTTPTimeout),
		gateway.WithCredentials(sessions),
		gateway.WithRateLimit(cfg.RequestsPerSecond, int(cfg.RequestsPerSecond)+1),
	)

	cli := newCLI(ctx, cfg, client, sessions, os.Stdout, logger)
	defer cli.close()

	if args := flag.Args(); len(args) > 0 {
		if err := cli.start(); err != nil {
			return 1
		}
		if !cli.exec(strings.Join(quoteArgs(args), " ")) {
			return 1
		}
		return 0
	}

	cli.run(bufio.NewScanner(os.Stdin))
	return 0
}

// quoteArgs re-quotes shell arguments that contain spaces so the command
// parser sees them as single words.
func quoteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		out[i] = a
	}
	return out
}
