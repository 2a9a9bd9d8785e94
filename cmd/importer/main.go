// Package main loads residents from a CSV file into the configured database.
// Database settings come from the same CIVIC_* environment as the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"civic/internal/platform/config"
	"civic/internal/platform/database"
	"civic/internal/platform/logger"
	"civic/internal/platform/tracer"
	"civic/internal/residents/importer"
	"civic/internal/residents/store"
	"civic/migrations"
)

func main() {
	file := flag.String("file", "-", "CSV file to import, or - for stdin")
	dryRun := flag.Bool("dry-run", false, "Validate rows without writing")
	asJSON := flag.Bool("json", false, "Print the summary as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-file residents.csv] [-dry-run] [-json]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*file, *dryRun, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, "import failed:", err)
		os.Exit(1)
	}
}

func run(path string, dryRun, asJSON bool) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, closeInput, err := openInput(path)
	if err != nil {
		return err
	}
	defer closeInput()

	pool, err := database.New(ctx, cfg.Database())
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := pool.Migrate(ctx, migrations.FS); err != nil {
		return err
	}

	dialect, err := store.DialectFor(pool.Driver())
	if err != nil {
		return err
	}
	imp := importer.New(store.NewSQL(pool.DB(), dialect), log,
		importer.WithDryRun(dryRun),
		importer.WithTracer(tracer.NewOTel(
			tracer.WithBaseAttributes(tracer.String(tracer.AttrDBSystem, dialect.String())),
		)),
	)

	summary, err := imp.Import(ctx, in)
	if err != nil {
		return err
	}
	return printSummary(os.Stdout, summary, asJSON)
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func printSummary(w io.Writer, summary importer.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Fprintf(w, "imported: %d\nskipped:  %d\n", summary.Imported, summary.Skipped)
	for _, skip := range summary.Skips {
		fmt.Fprintf(w, "  line %d: %s\n", skip.Line, skip.Reason)
	}
	return nil
}
