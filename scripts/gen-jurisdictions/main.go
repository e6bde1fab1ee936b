package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/shopspring/decimal"
)

// Writes sample jurisdiction tables for local runs:
//
//	us-baseline.jsonl.gz  national baseline
//	us-ca-patch.jsonl.gz  regional file that overrides US-CA from the baseline
//
// Load them in that order with JURISDICTION_FILES so the patch wins.
func main() {
	dataDir := "data/jurisdictions"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	tables := map[string][]model.TaxJurisdiction{
		"us-baseline.jsonl.gz": {
			{Code: "US-CA", Name: "California", Rate: rate("0.0725")},
			{Code: "US-NY", Name: "New York", Rate: rate("0.04")},
			{Code: "US-TX", Name: "Texas", Rate: rate("0.0625")},
			{Code: "US-OR", Name: "Oregon", Rate: rate("0")},
		},
		"us-ca-patch.jsonl.gz": {
			{
				Code: "US-CA",
				Name: "California (San Francisco)",
				Rate: rate("0.08625"),
				Components: []model.TaxComponent{
					{Code: "state", Name: "State", Rate: rate("0.0725")},
					{Code: "county", Name: "County", Rate: rate("0.01")},
					{Code: "district", Name: "District", Rate: rate("0.00375")},
				},
			},
		},
	}

	for filename, entries := range tables {
		filePath := filepath.Join(dataDir, filename)

		if err := writeTable(filePath, entries); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d jurisdictions\n", filePath, len(entries))
	}

	fmt.Println("\nSet JURISDICTION_FILES=us-baseline.jsonl.gz,us-ca-patch.jsonl.gz")
}

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func writeTable(filePath string, entries []model.TaxJurisdiction) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	if _, err := fmt.Fprintln(gzipWriter, "# code, name, rate, components"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	enc := json.NewEncoder(gzipWriter)
	for _, j := range entries {
		if err := enc.Encode(j); err != nil {
			return fmt.Errorf("failed to write %s: %w", j.Code, err)
		}
	}

	return nil
}
