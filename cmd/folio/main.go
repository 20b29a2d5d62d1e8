package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/eringen/folio"
	"github.com/eringen/folio/headmeta"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "meta":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: folio meta <path>")
			os.Exit(1)
		}
		err = runMeta(os.Args[2])
	case "version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe() error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := folio.LoadConfig(os.Getenv("FOLIO_CONFIG"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := folio.New(cfg, folio.WithLogger(logger))
	if err := app.Start(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

// runMeta resolves path against the configured metadata source and prints
// the tags that would be applied.
func runMeta(path string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := folio.LoadConfig(os.Getenv("FOLIO_CONFIG"))
	if err != nil {
		return err
	}
	var store headmeta.Store
	switch cfg.MetaSource {
	case folio.MetaSourceHTTP:
		store = headmeta.NewHTTPStore(cfg.MetaBaseURL, nil)
	default:
		dir := cfg.PublicDir
		if dir == "" {
			dir = "public"
		}
		store = headmeta.NewFSStore(os.DirFS(dir + "/" + headmeta.MetaDir))
	}

	res := headmeta.NewResolver(store, logger).Resolve(context.Background(), path)
	fmt.Printf("key:    %q\nstatus: %s\n", res.Key, res.Status)
	if !res.Found() {
		return nil
	}
	fmt.Printf("title:  %s\n", res.Document.Title)
	for _, t := range res.Document.Tags() {
		fmt.Printf("%s=%s: %s\n", t.Attr, t.Key, t.Content)
	}
	return nil
}

func printUsage() {
	fmt.Println(`folio - a personal website with per-route page metadata

Usage:
  folio [command] [arguments]

Commands:
  serve         Run the web server (default)
  meta <path>   Resolve the metadata document for a path
  version       Print the folio version
  help          Show this help message

Configuration is read from the YAML file named by FOLIO_CONFIG and from the
environment (a .env file in the working directory is loaded first).`)
}
