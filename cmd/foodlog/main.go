package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cognicore/foodlog/internal/envconfig"
	"github.com/cognicore/foodlog/pkg/foodlog"
	"github.com/cognicore/foodlog/pkg/foodlog/analytics"
	"github.com/cognicore/foodlog/pkg/foodlog/config"
	"github.com/cognicore/foodlog/pkg/foodlog/dataset"
	"github.com/cognicore/foodlog/pkg/foodlog/store"
	"github.com/cognicore/foodlog/pkg/foodlog/store/badgerstore"
	"github.com/cognicore/foodlog/pkg/foodlog/store/memstore"
	"github.com/cognicore/foodlog/pkg/foodlog/store/sqlite"
)

// outputs controls what happens to each parsed log.
type outputs struct {
	out      string // "", a path, or "auto"
	save     bool
	verbose  bool
	analyzer *analytics.Analyzer // collects unmatched mentions when set
}

func main() {
	env, err := envconfig.Load()
	if err != nil {
		log.Fatal(err)
	}

	var (
		datasetPath  = flag.String("dataset", env.Dataset, "Reference CSV file")
		dbPath       = flag.String("db", env.DB, "SQLite database with an imported foods table; also the sqlite journal")
		tablesPath   = flag.String("tables", env.Tables, "Parsing tables YAML (optional)")
		stoplistPath = flag.String("stoplist", env.Stoplist, "Stoplist file (optional)")
		lexiconPath  = flag.String("lexicon", env.Lexicon, "Dialect lexicon file (optional)")
		storeKind    = flag.String("store", env.Store, "Journal backend: none, memory, sqlite or badger")
		badgerDir    = flag.String("badger-dir", env.BadgerDir, "Badger journal directory")
		logLevel     = flag.String("log-level", env.LogLevel, "Log level (trace, debug, info, warn, error)")
		query        = flag.String("query", "", "One-shot sentence (non-interactive mode)")
		outPath      = flag.String("out", "", `Write each log as JSON to this file ("auto" for a timestamped name)`)
		save         = flag.Bool("save", false, "Save each log to the journal")
		verbose      = flag.Bool("v", false, "Print how each mention was matched")
		history      = flag.Int("history", 0, "List the N most recent journal entries and exit")
		summary      = flag.Int("summary", 0, "Total the foods of the N most recent journal entries and exit")
	)
	flag.Parse()

	logger, err := newLogger(os.Stderr, *logLevel)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	journal, err := openJournal(ctx, *storeKind, *dbPath, *badgerDir, logger)
	if err != nil {
		log.Fatal(err)
	}
	if journal != nil {
		defer journal.Close()
	}

	if *history > 0 || *summary > 0 {
		if journal == nil {
			log.Fatal("--history and --summary need a journal (--store)")
		}
		if *history > 0 {
			err = printHistory(ctx, os.Stdout, journal, *history)
		} else {
			err = printSummary(ctx, os.Stdout, journal, *summary)
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	loader := config.Loader{
		TablesPath:   *tablesPath,
		StoplistPath: *stoplistPath,
		LexiconPath:  *lexiconPath,
	}
	parser, err := buildParser(ctx, loader, *datasetPath, *dbPath, logger)
	if err != nil {
		log.Fatal(err)
	}

	outs := outputs{out: *outPath, save: *save, verbose: *verbose}
	if outs.save && journal == nil {
		log.Fatal("--save needs a journal (--store)")
	}

	// One-shot mode
	if *query != "" {
		if err := processSentence(ctx, os.Stdout, parser, journal, *query, outs); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  Food Log Parser")
	fmt.Println("  Separate foods with '/'")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("What did you eat? (Ctrl+D to exit):")
	fmt.Println()

	outs.analyzer = analytics.NewAnalyzer()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		sentence := strings.TrimSpace(scanner.Text())
		if sentence == "" {
			continue
		}

		if err := processSentence(ctx, os.Stdout, parser, journal, sentence, outs); err != nil {
			fmt.Println("Error:", err)
		}
	}

	printUnmatched(os.Stdout, outs.analyzer.Snapshot())
	fmt.Println("\nGoodbye!")
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level %q: %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger(), nil
}

// buildParser loads the tables and the reference dataset, from the CSV when
// given and otherwise from the foods table in dbPath.
func buildParser(ctx context.Context, loader config.Loader, datasetPath, dbPath string, logger zerolog.Logger) (*foodlog.Parser, error) {
	components, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	ds, err := loadDataset(ctx, datasetPath, dbPath, components.Columns)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("rows", ds.Len()).Msg("reference dataset loaded")

	return foodlog.New(foodlog.Options{
		Pipeline:  components.Pipeline,
		Matcher:   components.Matcher(ds),
		Converter: components.Converter,
		Logger:    &logger,
	})
}

func loadDataset(ctx context.Context, datasetPath, dbPath string, cols dataset.Columns) (*dataset.Dataset, error) {
	switch {
	case datasetPath != "":
		ds, err := dataset.LoadCSV(datasetPath, cols)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		return ds, nil
	case dbPath != "":
		st, err := sqlite.OpenSQLite(ctx, dbPath)
		if err != nil {
			return nil, fmt.Errorf("open foods database: %w", err)
		}
		defer st.Close()
		ds, err := st.LoadFoods(ctx)
		if err != nil {
			return nil, fmt.Errorf("load foods: %w", err)
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("--dataset or --db required")
	}
}

// openJournal returns nil for the "none" backend.
func openJournal(ctx context.Context, kind, dbPath, badgerDir string, logger zerolog.Logger) (store.Store, error) {
	switch kind {
	case "", envconfig.StoreNone:
		return nil, nil
	case envconfig.StoreMemory:
		return memstore.New(), nil
	case envconfig.StoreSQLite:
		if dbPath == "" {
			return nil, fmt.Errorf("sqlite journal needs --db")
		}
		st, err := sqlite.OpenSQLite(ctx, dbPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		return st, nil
	case envconfig.StoreBadger:
		st, err := badgerstore.Open(badgerDir, logger)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown journal backend %q", kind)
	}
}

func processSentence(ctx context.Context, w io.Writer, parser *foodlog.Parser, journal store.Store, sentence string, outs outputs) error {
	results, foodLog, err := parser.ParseDetailed(sentence)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if outs.verbose {
		printTrace(w, results)
	}
	if outs.analyzer != nil {
		for _, r := range results {
			if r.Skipped == foodlog.SkipNoMatch {
				outs.analyzer.ProcessUnmatched(r.Mention.Description)
			}
		}
	}

	data, err := json.MarshalIndent(foodLog, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))

	if len(foodLog) == 0 {
		fmt.Fprintln(w, "No foods recognized.")
	}

	if outs.out != "" {
		path := outs.out
		if path == "auto" {
			path = autoLogName(time.Now())
		}
		if err := writeLog(path, foodLog); err != nil {
			return err
		}
		fmt.Fprintf(w, "Log written to %s\n", path)
	}

	if outs.save {
		id, err := journal.SaveLog(ctx, toEntry(sentence, foodLog))
		if err != nil {
			return fmt.Errorf("save log: %w", err)
		}
		fmt.Fprintf(w, "Saved as %s\n", id)
	}

	return nil
}

func printTrace(w io.Writer, results []foodlog.MentionResult) {
	for _, r := range results {
		m := r.Mention
		fmt.Fprintf(w, "- %q -> %q (%g %s)\n", m.Raw, m.Description, m.Quantity, m.Unit)
		if r.Match.Record != nil {
			fmt.Fprintf(w, "    matched %s [%s %.2f] = %.1f g\n",
				r.Match.Record.Description, r.Match.Kind, r.Match.Score, r.Grams)
		}
		if r.Skipped != "" {
			fmt.Fprintf(w, "    skipped: %s\n", r.Skipped)
		}
	}
}

// autoLogName is the default file name for -out auto.
func autoLogName(now time.Time) string {
	return fmt.Sprintf("nutrition_log_%s.json", now.Format("20060102_150405"))
}

func writeLog(path string, foodLog foodlog.Log) error {
	data, err := json.MarshalIndent(foodLog, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func toEntry(sentence string, foodLog foodlog.Log) store.LogEntry {
	items := make(map[string]store.Item, len(foodLog))
	for k, e := range foodLog {
		items[k] = store.Item{AmountGrams: e.AmountGrams, Description: e.Description}
	}
	return store.LogEntry{Input: sentence, Items: items}
}

func printHistory(ctx context.Context, w io.Writer, journal store.Store, limit int) error {
	entries, err := journal.ListLogs(ctx, limit)
	if err != nil {
		return fmt.Errorf("list logs: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "Journal is empty.")
		return nil
	}
	for _, e := range entries {
		total := 0.0
		for _, it := range e.Items {
			total += it.AmountGrams
		}
		fmt.Fprintf(w, "%s  %s  %q  %d foods, %.1f g\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Input, len(e.Items), total)
	}
	return nil
}

func printSummary(ctx context.Context, w io.Writer, journal store.Store, limit int) error {
	entries, err := journal.ListLogs(ctx, limit)
	if err != nil {
		return fmt.Errorf("list logs: %w", err)
	}

	analyzer := analytics.NewAnalyzer()
	for _, e := range entries {
		analyzer.ProcessEntry(e)
	}
	stats := analyzer.Snapshot()

	fmt.Fprintf(w, "%d entries, %d foods\n", stats.TotalEntries, len(stats.Foods))
	for _, f := range stats.TopFoods(20) {
		fmt.Fprintf(w, "%8.1f g  %3dx  %s (%s)\n", f.TotalGrams, f.Entries, f.Description, f.Key)
	}
	return nil
}

func printUnmatched(w io.Writer, stats analytics.Stats) {
	if len(stats.Unmatched) == 0 {
		return
	}
	fmt.Fprintln(w, "\nNot recognized this session (candidates for the dialect table):")
	for _, u := range stats.Unmatched {
		fmt.Fprintf(w, "  %3dx  %s\n", u.Count, u.Description)
	}
}
