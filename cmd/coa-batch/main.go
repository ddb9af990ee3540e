// coa-batch walks a directory of COA reports, runs field extraction on each
// one, prints a summary table, and optionally persists the results.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/terplab/coa-extractor/internal/coa"
	"github.com/terplab/coa-extractor/internal/store"
	"github.com/terplab/coa-extractor/internal/textsource"
)

func main() {
	var (
		dir          = pflag.String("dir", ".", "Directory containing COA report files")
		storePath    = pflag.String("store", "", "Path to the SQLite record database (empty disables persistence)")
		synonymsPath = pflag.String("synonyms", "", "Path to a JSON file of extra terpene synonyms")
		maxFileSize  = pflag.Int64("maxfilesize", 100*1024*1024, "Maximum report file size in bytes")
		verbose      = pflag.Bool("verbose", false, "Log every file as it is processed")
	)
	pflag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if err := run(*dir, *storePath, *synonymsPath, *maxFileSize, logger); err != nil {
		logger.Error().Err(err).Msg("batch extraction failed")
		os.Exit(1)
	}
}

func run(dir, storePath, synonymsPath string, maxFileSize int64, logger zerolog.Logger) error {
	ctx := context.Background()

	var opts []coa.ExtractorOption
	if synonymsPath != "" {
		synonyms, err := coa.LoadSynonyms(synonymsPath)
		if err != nil {
			return fmt.Errorf("failed to load synonyms: %w", err)
		}
		opts = append(opts, coa.WithDictionary(coa.NewDictionaryWithSynonyms(synonyms)))
	}
	engine := coa.NewExtractor(opts...)

	docs, err := textsource.NewService(dir, maxFileSize, 30*time.Second)
	if err != nil {
		return fmt.Errorf("failed to create document service: %w", err)
	}

	var records *store.Store
	if storePath != "" {
		records, err = store.Open(ctx, storePath)
		if err != nil {
			return fmt.Errorf("failed to open record store: %w", err)
		}
		defer records.Close()
	}

	result, err := docs.SearchDirectory(dir, "")
	if err != nil {
		return fmt.Errorf("failed to scan directory: %w", err)
	}
	if result.TotalCount == 0 {
		fmt.Printf("No report files found in %s\n", result.Directory)
		return nil
	}

	fmt.Printf("Processing %d report file(s) from %s\n\n", result.TotalCount, result.Directory)

	processed, failed := 0, 0
	for _, file := range result.Files {
		doc, err := docs.Resolve(ctx, file.Path)
		if err != nil {
			logger.Warn().Err(err).Str("file", file.Path).Msg("skipping unreadable report")
			failed++
			continue
		}

		extraction := engine.ExtractFromSource(doc.Text, file.Path)
		logger.Debug().Str("file", file.Name).Str("kind", doc.Kind).Msg("extracted report")

		if records != nil {
			if _, err := records.Save(ctx, file.Path, extraction); err != nil {
				logger.Warn().Err(err).Str("file", file.Path).Msg("failed to store extraction record")
			}
		}

		printRow(file.Name, extraction)
		processed++
	}

	fmt.Printf("\nDone: %d processed, %d failed\n", processed, failed)
	if records != nil {
		if count, err := records.Count(ctx); err == nil {
			fmt.Printf("Record store now holds %d record(s)\n", count)
		}
	}
	return nil
}

func printRow(name string, result *coa.ExtractionResult) {
	strain := result.StrainName
	if strain == "" {
		strain = "-"
	}
	productType := result.Type
	if productType == "" {
		productType = "-"
	}

	terpenes := "-"
	if result.DominantTerpene != "" {
		terpenes = result.DominantTerpene
		if len(result.OtherTerpenes) > 0 {
			terpenes += " (+" + strings.Join(result.OtherTerpenes, ", ") + ")"
		}
	}

	thc := "-"
	if result.Thc.TotalPercent != nil {
		thc = fmt.Sprintf("%.2f%% [%s]", *result.Thc.TotalPercent, result.Thc.Source)
	}

	fmt.Printf("%-32s strain=%-24s type=%-8s thc=%-18s terpenes=%s\n",
		name, strain, productType, thc, terpenes)
}
