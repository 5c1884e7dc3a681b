package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/foodlog/internal/envconfig"
	"github.com/cognicore/foodlog/pkg/foodlog/config"
	"github.com/cognicore/foodlog/pkg/foodlog/dataset"
	"github.com/cognicore/foodlog/pkg/foodlog/store/sqlite"
)

func main() {
	env, err := envconfig.Load()
	if err != nil {
		log.Fatal(err)
	}

	var (
		datasetPath = flag.String("dataset", env.Dataset, "Reference CSV file (required)")
		dbPath      = flag.String("db", env.DB, "SQLite database path (required)")
		tablesPath  = flag.String("tables", env.Tables, "Parsing tables YAML, for dataset column names (optional)")
	)
	flag.Parse()

	if *datasetPath == "" {
		log.Fatal("--dataset required")
	}
	if *dbPath == "" {
		log.Fatal("--db required")
	}

	n, err := importFoods(context.Background(), *datasetPath, *dbPath, *tablesPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Imported %d foods into %s", n, *dbPath)
}

// importFoods replaces the foods table in dbPath with the rows of the CSV.
func importFoods(ctx context.Context, datasetPath, dbPath, tablesPath string) (int, error) {
	cols := dataset.DefaultColumns()
	if tablesPath != "" {
		tables, err := config.LoadTables(tablesPath)
		if err != nil {
			return 0, fmt.Errorf("load tables: %w", err)
		}
		cols = tables.Dataset
	}

	ds, err := dataset.LoadCSV(datasetPath, cols)
	if err != nil {
		return 0, fmt.Errorf("load dataset: %w", err)
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.ReplaceFoods(ctx, ds); err != nil {
		return 0, fmt.Errorf("replace foods: %w", err)
	}
	return ds.Len(), nil
}
