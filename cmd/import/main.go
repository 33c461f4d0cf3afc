package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anveshk/osintdex/config"
	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/anveshk/osintdex/services/ingest"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "osintdex-import",
	Short: "Import OSINT records from a spreadsheet or delimited file into the search index",
	Long: `Import OSINT records from a spreadsheet or delimited file into the search index.

The dataset must carry 'type' and 'value' columns; 'source' and
'additional_info' are optional. Exits non-zero when any document fails
to index.

Examples:
  osintdex-import --file ./records.xlsx
  osintdex-import -f ./records.csv`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		return runImport(filePath)
	},
}

func init() {
	rootCmd.Flags().StringP("file", "f", "", "path to the dataset file")
	rootCmd.MarkFlagRequired("file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runImport(filePath string) error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("could not read dataset file: %w", err)
	}

	store, err := searchdb.New(log, cfg)
	if err != nil {
		return fmt.Errorf("could not open search index: %w", err)
	}
	defer store.Close()

	log.Info("starting data import", "file", filePath)

	indexed, failed, err := ingest.Import(log, store, data, filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	log.Info("import completed", "indexed", indexed, "failed", failed)
	fmt.Fprintf(os.Stdout, "imported %d documents, %d failed\n", indexed, failed)

	if failed > 0 {
		return fmt.Errorf("%d documents failed to index", failed)
	}

	return nil
}
