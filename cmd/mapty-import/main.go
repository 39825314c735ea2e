package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/meltforce/mapty/internal/importer"
	"github.com/meltforce/mapty/internal/mcp"
	"github.com/meltforce/mapty/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", os.Getenv("MAPTY_URL"), "mapty server URL (e.g. https://mapty.tail1234.ts.net)")
	file := flag.String("file", "", "workout log to import (kind;lat;lng;distance;duration;extra per line)")
	dryRun := flag.Bool("dry-run", false, "parse and validate but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("mapty-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *file == "" {
		fmt.Fprintf(os.Stderr, "Usage: mapty-import -server <URL> -file <workouts.txt> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Error("failed to open import file", "error", err)
		os.Exit(1)
	}
	entries, err := importer.Parse(f)
	f.Close()
	if err != nil {
		log.Error("failed to parse import file", "error", err)
		os.Exit(1)
	}
	log.Info("parsed import file", "path", *file, "workouts", len(entries))

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := storage.OpenSQLite(filepath.Join(homeDir, ".mapty-import"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil-safe in dry-run mode)
	var client importer.Logger
	if !*dryRun {
		client = mcp.NewHTTPClient(*serverURL)
	} else {
		log.Info("DRY RUN mode: entries are parsed but not sent")
	}

	stats, err := importer.New(client, state, *dryRun, log).Run(context.Background(), entries)
	printStats(stats)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(stats *importer.Stats) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Workouts total:   %d\n", stats.Total)
	fmt.Printf("  Imported:         %d\n", stats.Imported)
	fmt.Printf("  Skipped:          %d (already imported)\n", stats.Skipped)
	fmt.Printf("  Rejected:         %d\n", stats.Rejected)
	fmt.Println()
}
