package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vintagevault/pricing-service/internal/comps"
	"github.com/vintagevault/pricing-service/internal/database"
)

var (
	compsSource string
	compsSheet  string
)

var compsCmd = &cobra.Command{
	Use:   "comps",
	Short: "Manage comparable sale data",
}

var compsImportCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "Import an auction-house result sheet",
	Long: `Parses an XLSX workbook of auction results and stores the rows as
comparable sales. Rows that fail to parse are reported and skipped;
the rest are imported.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompsImport,
}

func init() {
	compsImportCmd.Flags().StringVar(&compsSource, "source", "", "source label for the imported rows (required)")
	compsImportCmd.Flags().StringVar(&compsSheet, "sheet", "", "worksheet name (default first sheet)")
	compsImportCmd.MarkFlagRequired("source")

	compsCmd.AddCommand(compsImportCmd)
	rootCmd.AddCommand(compsCmd)
}

func runCompsImport(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}

	parser := comps.NewParser(comps.ParserOptions{SheetName: compsSheet})
	result, err := parser.Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse workbook: %w", err)
	}

	for _, rowErr := range result.Errors {
		logger.Warn().Int("row", rowErr.RowNumber).Str("reason", rowErr.Message).Msg("Skipped row")
	}

	store := comps.NewStore(database.Pool())
	imported, err := store.Import(context.Background(), result.Comps, compsSource)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	logger.Info().
		Str("source", compsSource).
		Int("imported", imported).
		Int("total_rows", result.TotalRows).
		Int("skipped", len(result.Errors)).
		Msg("Comp sheet imported")
	return nil
}
