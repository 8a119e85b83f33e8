package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"irdbclean/internal/config"
	"irdbclean/internal/irdb"
	"irdbclean/internal/pipeline"
	"irdbclean/internal/rules"
	"irdbclean/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		original := fs.String("original", "", "original .ir file")
		decoded := fs.String("decoded", "", "decoded .ir file (overwritten with rebuilt content)")
		rel := fs.String("rel", "", "relative path used for category matching (defaults to original's base name)")
		rulesPath := fs.String("rules", cfg.RulesPath, "rule set file")
		strict := fs.Bool("strict", cfg.StrictDecoded, "reject decoded records missing required fields")
		_ = fs.Parse(os.Args[2:])
		if *original == "" || *decoded == "" {
			must(fmt.Errorf("--original and --decoded are required"))
		}

		relPath := *rel
		if relPath == "" {
			relPath = filepath.Base(*original)
		}
		engine := pipeline.NewEngine(loadRules(*rulesPath), *strict)
		report, err := engine.CleanPair(*original, *decoded, relPath)
		must(err)
		fmt.Printf("cleaned %s: ratio=%.2f lost_comments=%d duplicates=%d renamed=%d\n",
			*decoded, report.DifferenceRatio, report.LostComments, report.DuplicatesRemoved, report.ButtonsRenamed)

	case "batch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		originalDir := fs.String("original-dir", "", "original IRDB directory")
		decodedDir := fs.String("decoded-dir", "", "decoded IRDB directory")
		threshold := fs.Float64("threshold", cfg.DiffThreshold, "difference ratio threshold")
		limit := fs.Int("limit", cfg.FileLimit, "max files to process (0 = all)")
		out := fs.String("out", "", "summary report path")
		rulesPath := fs.String("rules", cfg.RulesPath, "rule set file")
		strict := fs.Bool("strict", cfg.StrictDecoded, "reject decoded records missing required fields")
		_ = fs.Parse(os.Args[2:])
		if *originalDir == "" || *decodedDir == "" {
			must(fmt.Errorf("--original-dir and --decoded-dir are required"))
		}

		engine := pipeline.NewEngine(loadRules(*rulesPath), *strict)
		batch, err := engine.RunBatch(*originalDir, *decodedDir, *threshold, *limit)
		must(err)

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		runID, err := db.SaveBatch(*originalDir, *decodedDir, *threshold, batch)
		must(err)

		fmt.Printf("batch done run=%d processed=%d significant=%d skipped=%d\n",
			runID, batch.Processed, len(batch.Results), len(batch.Skipped))
		for i, result := range batch.Results {
			if i >= 10 {
				fmt.Printf("... and %d more files\n", len(batch.Results)-10)
				break
			}
			fmt.Printf("  %s ratio=%.2f lost_comments=%d\n",
				result.File, result.Report.DifferenceRatio, result.Report.LostComments)
		}
		if *out != "" {
			must(pipeline.WriteSummary(*out, batch))
			fmt.Printf("summary written to %s\n", *out)
		}

	case "rules:check":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		rulesPath := fs.String("rules", cfg.RulesPath, "rule set file")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*rulesPath) == "" {
			must(fmt.Errorf("--rules is required"))
		}
		_, err := rules.Load(*rulesPath)
		must(err)
		fmt.Printf("rule set %s compiles\n", *rulesPath)

	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.Int64("runId", 0, "batch run id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *runID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--runId and --out are required"))
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		rows, err := db.GetExportRows(*runID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no report rows for runId=%d", *runID))
		}
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)

	case "stats:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		url := fs.String("url", cfg.IRDBRepoURL, "repository archive URL")
		out := fs.String("out", filepath.Join(cfg.OutputDir, "irdb_stats.json"), "stats output path")
		_ = fs.Parse(os.Args[2:])

		archive, err := irdb.FetchArchive(context.Background(), *url)
		must(err)
		stats, err := irdb.CollectStats(archive)
		must(err)
		must(irdb.WriteStats(*out, stats))
		fmt.Printf("stats written to %s: total=%d device_types=%d brands=%d\n",
			*out, stats.Total, len(stats.ByDeviceType), len(stats.ByBrand))

	default:
		usage()
		os.Exit(1)
	}
}

// loadRules compiles the rule set before any file is touched; a corrupt rule
// set must never silently mis-normalize a batch.
func loadRules(path string) *rules.RuleSet {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	ruleSet, err := rules.Load(path)
	must(err)
	return ruleSet
}

func usage() {
	fmt.Println(`usage: irdbclean <command> [flags]

commands:
  clean        reconcile one original/decoded file pair
  batch        reconcile two directory trees
  rules:check  compile a rule set and report errors
  export:xlsx  export a stored batch run to a spreadsheet
  stats:fetch  download the IRDB archive and collect stats`)
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
