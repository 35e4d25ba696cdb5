package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/cleaning"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/loader"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/service"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
	"github.com/FACorreiaa/finance-intelligence/pkg/config"
)

// errBatchRejected signals an invalid import batch; its diagnostics are already on stdout.
var errBatchRejected = errors.New("import batch rejected")

func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := fs.String("file", "", "Path to a csv, txt, xlsx or xls file")
	_ = fs.Parse(args)

	if *file == "" {
		return errors.New("-file is required")
	}

	deps, err := InitDependencies(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := deps.Service.AnalyzeFile(ctx, filepath.Base(*file), f)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, result)
}

func runImport(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "Path to a csv, txt, xlsx or xls file")
	mappingJSON := fs.String("mapping", "", `Field mapping as JSON, e.g. {"value":"Valor","date":"Data"}`)
	owner := fs.String("owner", "", "Owner UUID")
	persist := fs.Bool("persist", false, "Save a valid batch to the database")
	nullStrategy := fs.String("null-strategy", string(cleaning.NullDrop), "Null handling: drop or fill")
	fillValue := fs.String("fill-value", "0", "Replacement for nulls when -null-strategy=fill")
	keepDuplicates := fs.Bool("keep-duplicates", false, "Do not remove duplicate rows")
	_ = fs.Parse(args)

	if *file == "" {
		return errors.New("-file is required")
	}
	ownerID, err := parseOwner(*owner)
	if err != nil {
		return err
	}
	rawMapping, err := parseMapping(*mappingJSON)
	if err != nil {
		return err
	}

	deps, err := InitDependencies(ctx, cfg, logger, *persist)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	loaded, err := deps.Service.LoadFile(ctx, filepath.Base(*file), f)
	if err != nil {
		return err
	}

	result, err := deps.Service.Import(ctx, service.ImportRequest{
		Dataset: loaded.Dataset,
		Mapping: rawMapping,
		Cleaning: cleaning.Config{
			RemoveDuplicates: !*keepDuplicates,
			NullStrategy:     cleaning.NullStrategy(*nullStrategy),
			FillValue:        *fillValue,
		},
		OwnerID: ownerID,
		Persist: *persist,
	})
	if err != nil {
		return err
	}
	if err := writeJSON(os.Stdout, result); err != nil {
		return err
	}
	if !result.Validation.Valid {
		return errBatchRejected
	}
	return nil
}

func runSynthesize(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("synthesize", flag.ExitOnError)
	count := fs.Int("count", 100, "Number of records to generate")
	owner := fs.String("owner", "", "Owner UUID")
	seed := fs.Int64("seed", 0, "Random seed; 0 picks one")
	noPatterns := fs.Bool("no-patterns", false, "Ignore history and use built-in distributions")
	historyFile := fs.String("history", "", "Canonical CSV of existing transactions to learn from")
	fromDB := fs.Bool("from-db", false, "Learn from the owner's stored transactions")
	out := fs.String("out", "", "Write records as canonical CSV to this path instead of JSON")
	_ = fs.Parse(args)

	ownerID, err := parseOwner(*owner)
	if err != nil {
		return err
	}

	deps, err := InitDependencies(ctx, cfg, logger, *fromDB)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	req := service.SynthesizeRequest{
		Count:          *count,
		OwnerID:        ownerID,
		IgnorePatterns: *noPatterns,
		Seed:           *seed,
	}
	if *historyFile != "" {
		history, err := readHistory(*historyFile)
		if err != nil {
			return err
		}
		req.History = history
	}

	result, err := deps.Service.Synthesize(ctx, req)
	if err != nil {
		return err
	}

	if *out == "" {
		return writeJSON(os.Stdout, result)
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := transaction.WriteCSV(f, result.Records); err != nil {
		return err
	}
	return writeJSON(os.Stdout, map[string]any{
		"out":            *out,
		"count":          len(result.Records),
		"profile":        result.Profile,
		"profile_source": result.ProfileSource,
	})
}

func runSIOGSample(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("siog-sample", flag.ExitOnError)
	count := fs.Int("count", 50, "Number of rows")
	seed := fs.Int64("seed", 0, "Random seed; 0 picks one")
	out := fs.String("out", "", "Output path (.csv or .xlsx)")
	_ = fs.Parse(args)

	if *out == "" {
		return errors.New("-out is required")
	}

	deps, err := InitDependencies(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	ds, err := deps.Service.SIOGSample(ctx, *count, *seed)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := loader.Write(filepath.Base(*out), f, ds); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	logger.Info("siog sample written", "out", *out, "rows", ds.RowCount())
	return nil
}

func parseOwner(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid -owner: %w", err)
	}
	return id, nil
}

func parseMapping(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("invalid -mapping: %w", err)
	}
	return m, nil
}

func readHistory(path string) ([]transaction.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	txs, err := transaction.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", path, err)
	}
	return txs, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
