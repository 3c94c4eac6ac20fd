package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samijaber1/alcometer/internal/bac"
	"github.com/samijaber1/alcometer/internal/level"
	"github.com/samijaber1/alcometer/internal/scenario"
	"github.com/samijaber1/alcometer/internal/storage"
	"github.com/samijaber1/alcometer/internal/storage/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "estimate":
		os.Exit(runEstimate(args, os.Stdout, os.Stderr))
	case "options":
		os.Exit(runOptions(os.Stdout))
	case "validate":
		os.Exit(runValidate(args, os.Stdout, os.Stderr))
	case "run":
		os.Exit(runScenarios(args, os.Stdout, os.Stderr))
	case "history":
		os.Exit(runHistory(args, os.Stdout, os.Stderr))
	default:
		printUsage(os.Stdout)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: alcometer <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  estimate --sex <male|female> --weight <kg> --bottles <n> --hours <n> [--db <path>]")
	fmt.Fprintln(w, "                           Estimate blood alcohol concentration")
	fmt.Fprintln(w, "  options                  List the selectable bottles and hours")
	fmt.Fprintln(w, "  validate --dir <path>    Validate scenario YAML files in a directory")
	fmt.Fprintln(w, "  run --dir <path>         Run scenario files and check their expectations")
	fmt.Fprintln(w, "  history --db <path>      Show recorded estimations")
	fmt.Fprintln(w)
}

// runEstimate prints the raw estimate. Weight, bottles and hours are taken as
// text and coerced the same way the interactive form does.
func runEstimate(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("estimate", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	sexFlag := cmd.String("sex", string(bac.Male), "sex (male|female)")
	weight := cmd.String("weight", "", "body weight in kg")
	bottles := cmd.String("bottles", "0", "number of 0.33 l bottles (0-10)")
	hours := cmd.String("hours", "1", "hours since drinking started (1-24)")
	dbPath := cmd.String("db", "", "SQLite database to record the estimation in")
	verbose := cmd.Bool("v", false, "print the level classification as well")
	if err := cmd.Parse(args); err != nil {
		return 1
	}

	sex, err := bac.ParseSex(*sexFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	form := bac.Form{
		WeightText: *weight,
		Sex:        sex,
		Bottles:    bac.ParseBottles(*bottles),
		Hours:      bac.ParseHours(*hours),
	}
	if err := form.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	engine, err := level.NewEngine(level.DefaultThresholds())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	in := form.Input()
	result := bac.Estimate(in)
	classification := engine.Classify(result)

	fmt.Fprintln(stdout, result.String())
	if *verbose {
		fmt.Fprintf(stdout, "level: %s\n", classification.Level)
		for _, reason := range classification.Reasons {
			fmt.Fprintf(stdout, "  %s\n", reason)
		}
	}

	if *dbPath != "" {
		store, err := sqlite.NewStore(*dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer store.Close()

		record := storage.NewRecord(storage.SourceCLI, in, result, classification, time.Now())
		if err := store.StoreEstimation(record); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	return 0
}

func runOptions(stdout io.Writer) int {
	defaults := bac.DefaultForm()

	fmt.Fprintf(stdout, "sex:     %s (default %s)\n", joinValues(bac.Sexes()), defaults.Sex)
	fmt.Fprintf(stdout, "bottles: %s (default %d)\n", joinValues(bac.BottleChoices()), defaults.Bottles)
	fmt.Fprintf(stdout, "hours:   %s (default %d)\n", joinValues(bac.HourChoices()), defaults.Hours)
	return 0
}

func joinValues[T any](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

// loadScenarios validates dirPath and prints grouped errors. ok is false when
// any file failed validation.
func loadScenarios(dirPath string, stderr io.Writer) (scenarios []scenario.ScenarioWithFile, ok bool) {
	validator, err := scenario.NewValidator()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize validator: %v\n", err)
		return nil, false
	}

	scenarios, errors := validator.ValidateDirectory(dirPath)
	if len(errors) == 0 {
		return scenarios, true
	}

	errorsByFile := make(map[string][]scenario.ValidationError)
	for _, err := range errors {
		errorsByFile[err.File] = append(errorsByFile[err.File], err)
	}

	var files []string
	for file := range errorsByFile {
		files = append(files, file)
	}
	sort.Strings(files)

	fmt.Fprintf(stderr, "✗ Validation failed with %d error(s):\n\n", len(errors))
	for _, file := range files {
		for _, err := range errorsByFile[file] {
			if err.Path != "" {
				fmt.Fprintf(stderr, "%s: %s: %s\n", filepath.Base(err.File), err.Path, err.Message)
			} else {
				fmt.Fprintf(stderr, "%s: %s\n", filepath.Base(err.File), err.Message)
			}
		}
	}

	return nil, false
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	dir := cmd.String("dir", "", "directory containing scenario YAML files")
	if err := cmd.Parse(args); err != nil {
		return 1
	}
	if *dir == "" {
		fmt.Fprintln(stderr, "Error: --dir flag is required")
		cmd.Usage()
		return 1
	}

	scenarios, ok := loadScenarios(*dir, stderr)
	if !ok {
		return 1
	}

	fmt.Fprintf(stdout, "✓ All %d scenario files are valid\n", len(scenarios))
	return 0
}

func runScenarios(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("run", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	dir := cmd.String("dir", "", "directory containing scenario YAML files")
	dbPath := cmd.String("db", "", "SQLite database to record the estimations in")
	concurrency := cmd.Int("concurrency", 4, "scenarios evaluated at once")
	limit := cmd.Float64("limit", level.DefaultThresholds().Limit, "BAC at which the OVER_LIMIT level starts")
	severe := cmd.Float64("severe", level.DefaultThresholds().Severe, "BAC at which the SEVERE level starts")
	if err := cmd.Parse(args); err != nil {
		return 1
	}
	if *dir == "" {
		fmt.Fprintln(stderr, "Error: --dir flag is required")
		cmd.Usage()
		return 1
	}

	engine, err := level.NewEngine(level.Thresholds{Limit: *limit, Severe: *severe})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	scenarios, ok := loadScenarios(*dir, stderr)
	if !ok {
		return 1
	}

	results, err := scenario.Run(context.Background(), scenarios, engine, *concurrency)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var store *sqlite.Store
	if *dbPath != "" {
		store, err = sqlite.NewStore(*dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer store.Close()
	}

	failed := 0
	for _, res := range results {
		status := "PASS"
		if !res.Passed() {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(stdout, "%s  %-24s %-12s %s\n", status, res.ID, res.Result.String(), res.Classification.Level)
		for _, failure := range res.Failures {
			fmt.Fprintf(stdout, "      %s\n", failure)
		}

		if store != nil {
			record := storage.NewRecord(storage.SourceScenario, res.Input, res.Result, res.Classification, time.Now())
			if err := store.StoreEstimation(record); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
		}
	}

	fmt.Fprintf(stdout, "\n%d passed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func runHistory(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("history", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	dbPath := cmd.String("db", "", "SQLite database path")
	limit := cmd.Int("limit", storage.DefaultLimit, "maximum records to show")
	source := cmd.String("source", "", "only show records from this source (cli|api|batch|scenario)")
	if err := cmd.Parse(args); err != nil {
		return 1
	}
	if *dbPath == "" {
		fmt.Fprintln(stderr, "Error: --db flag is required")
		cmd.Usage()
		return 1
	}

	store, err := sqlite.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	records, err := store.QueryHistory(storage.HistoryFilter{
		Source: storage.Source(*source),
		Limit:  *limit,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSOURCE\tSEX\tWEIGHT\tBOTTLES\tHOURS\tBAC\tLEVEL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime),
			r.Source,
			r.Input.Sex,
			r.Input.WeightKg,
			r.Input.DrinkCount,
			r.Input.ElapsedHours,
			r.Display,
			r.Level,
		)
	}
	tw.Flush()

	return 0
}
