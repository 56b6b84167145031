package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comodofi/perps/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Work with activity journals",
	Long: `Query and export activity journal records.

Subcommands:
  export - Export a SQLite activity journal to CSV

Example:
  perps journal export -d ./activity-SESSION.db -o activity.csv`,
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a SQLite activity journal to CSV",
	Args:  cobra.NoArgs,
	RunE:  runJournalExport,
}

var (
	journalDBPath  string
	journalOutPath string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalExportCmd)

	journalExportCmd.Flags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (required)")
	journalExportCmd.Flags().StringVarP(&journalOutPath, "out", "o", "activity.csv", "output CSV path")
	journalExportCmd.MarkFlagRequired("db")
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.All()
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	f, err := os.Create(journalOutPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := journal.WriteCSV(f, recs); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("✓ Exported %d records to %s\n", len(recs), journalOutPath)
	return nil
}
