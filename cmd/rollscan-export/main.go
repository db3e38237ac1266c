// Command rollscan-export dumps every committed table into an xlsx workbook
// or a zip of CSV files without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/amoghv/rollscan/internal/config"
	"github.com/amoghv/rollscan/internal/export"
	"github.com/amoghv/rollscan/internal/infrastructure/repository/sqlite"
)

func main() {
	_ = godotenv.Load()

	format := flag.String("format", "xlsx", "output format: xlsx or csv")
	out := flag.String("out", "", "output file path (default rollscan-export.<ext>)")
	flag.Parse()

	if *format != "xlsx" && *format != "csv" {
		log.Fatalf("unknown format %q, want xlsx or csv", *format)
	}
	path := *out
	if path == "" {
		ext := *format
		if ext == "csv" {
			ext = "zip"
		}
		path = "rollscan-export." + ext
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	dumps, err := sqlite.NewRollRepository(db).DumpTables(ctx)
	if err != nil {
		log.Fatalf("dump tables: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if *format == "csv" {
		err = export.WriteCSVArchive(f, dumps)
	} else {
		err = export.WriteWorkbook(f, dumps)
	}
	if err != nil {
		log.Fatalf("write export: %v", err)
	}

	fmt.Printf("wrote %s (%d tables)\n", path, len(dumps))
}
