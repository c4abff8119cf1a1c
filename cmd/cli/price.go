package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vintagevault/pricing-service/internal/pricing"
)

var priceInputFile string

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price an item from a JSON description",
	Long: `Runs the pricing engine over an item description read from a JSON
file (or stdin when no file is given) and prints the full result,
including the per-source breakdown and confidence factors.

The input document mirrors the /internal/pricing/calculate request:

  {
    "productTitle": "Victorian Mahogany Writing Desk",
    "category": "Furniture",
    "condition": "GOOD",
    "rarity": "UNCOMMON",
    "estimatedAge": "1880",
    "aiPrice": 1200,
    "aiConfidence": 70,
    "historicalComps": [950, 1100, 1400]
  }`,
	RunE: runPrice,
}

func init() {
	priceCmd.Flags().StringVarP(&priceInputFile, "input", "i", "", "JSON file describing the item (default stdin)")
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	var raw []byte
	var err error
	if priceInputFile != "" {
		raw, err = os.ReadFile(priceInputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
	} else {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	var input pricing.Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("invalid input document: %w", err)
	}

	result, err := pricing.CalculatePriceWithConfidence(&input)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
