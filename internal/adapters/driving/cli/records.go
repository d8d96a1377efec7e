package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

var recordsIncludeDeleted bool

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage captured customer and vehicle records",
	RunE:  runRecordsList,
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured records, newest first",
	RunE:  runRecordsList,
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <chassis>",
	Short: "Show one captured record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsShow,
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <chassis>",
	Short: "Mark a record as deleted",
	Long: `Soft-deletes the record with the given chassis number. It no longer appears
in listings but is kept until purged. Capturing the same chassis again
restores it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsDelete,
}

var recordsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently remove deleted records",
	RunE:  runRecordsPurge,
}

func init() {
	recordsCmd.PersistentFlags().BoolVarP(&recordsIncludeDeleted, "all", "a", false, "include deleted records")
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
	recordsCmd.AddCommand(recordsPurgeCmd)
	rootCmd.AddCommand(recordsCmd)
}

func runRecordsList(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	records, err := recordService.List(cmd.Context(), recordsIncludeDeleted)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No captured records.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CHASSIS", "NAME", "CNIC", "PHONE", "MODEL", "UPDATED")
	if recordsIncludeDeleted {
		t.Headers("CHASSIS", "NAME", "CNIC", "PHONE", "MODEL", "UPDATED", "DELETED")
	}

	for i := range records {
		r := &records[i]
		row := []string{
			r.ChassisNumber,
			r.Name,
			r.CNIC,
			r.Phone,
			r.Model,
			r.UpdatedAt.Local().Format("2006-01-02 15:04"),
		}
		if recordsIncludeDeleted {
			row = append(row, strconv.FormatBool(r.Deleted))
		}
		t.Row(row...)
	}

	cmd.Println(t.String())
	cmd.Printf("%d records\n", len(records))
	return nil
}

func runRecordsShow(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	rec, err := recordService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no record for chassis %s", args[0])
		}
		return fmt.Errorf("failed to get record: %w", err)
	}

	cmd.Printf("Chassis:     %s\n", rec.ChassisNumber)
	cmd.Printf("Engine:      %s\n", rec.EngineNumber)
	cmd.Printf("Model:       %s\n", rec.Model)
	cmd.Printf("Color:       %s\n", rec.Color)
	cmd.Printf("Name:        %s\n", rec.Name)
	cmd.Printf("Father:      %s\n", rec.FatherName)
	cmd.Printf("CNIC:        %s\n", rec.CNIC)
	cmd.Printf("Phone:       %s\n", rec.Phone)
	cmd.Printf("Address:     %s\n", rec.Address)
	cmd.Printf("Captured:    %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Printf("Updated:     %s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if rec.Deleted {
		cmd.Println("Status:      deleted")
	}
	return nil
}

func runRecordsDelete(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	if err := recordService.SoftDelete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no record for chassis %s", args[0])
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}

	cmd.Printf("Deleted record %s\n", args[0])
	return nil
}

func runRecordsPurge(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	n, err := recordService.Purge(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to purge records: %w", err)
	}

	cmd.Printf("Purged %d deleted records\n", n)
	return nil
}
