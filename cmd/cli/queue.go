package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vintagevault/pricing-service/internal/approval"
	"github.com/vintagevault/pricing-service/internal/database"
)

var (
	queueStatus string
	queuePage   int
	queueLimit  int
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the listing review queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts awaiting review",
	RunE:  runQueueList,
}

func init() {
	queueListCmd.Flags().StringVar(&queueStatus, "status", "PENDING", "filter by status (PENDING, APPROVED, REJECTED, empty for all)")
	queueListCmd.Flags().IntVar(&queuePage, "page", 1, "page number")
	queueListCmd.Flags().IntVar(&queueLimit, "limit", 20, "drafts per page")

	queueCmd.AddCommand(queueListCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, args []string) error {
	store := approval.NewStore(database.Pool())

	drafts, total, err := store.List(context.Background(), queueStatus, queuePage, queueLimit)
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}

	if len(drafts) == 0 {
		fmt.Println("No drafts found")
		return nil
	}

	fmt.Printf("%-38s %-10s %10s %6s  %s\n", "ID", "STATUS", "PRICE", "CONF", "TITLE")
	for _, d := range drafts {
		title := d.Title
		if len(title) > 48 {
			title = title[:45] + "..."
		}
		fmt.Printf("%-38s %-10s %10.2f %5d%%  %s\n", d.ID, d.Status, d.SuggestedPrice, d.Confidence, title)
	}
	fmt.Printf("\n%d of %d drafts (page %d)\n", len(drafts), total, queuePage)
	return nil
}
