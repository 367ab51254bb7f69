package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

var (
	dedupeAttendanceCmd = &cobra.Command{
		Use:   "dedupe-attendance",
		Short: "remove same-day duplicate attendance records, keeping the earliest",
		RunE:  runDedupeAttendance,
	}
	dedupeDryRun bool

	rolloverLeaveCmd = &cobra.Command{
		Use:   "rollover-leave",
		Short: "open next year's leave balances with carried forward days",
		RunE:  runRolloverLeave,
	}
	rolloverFromYear int
)

func init() {
	dedupeAttendanceCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "only report what would be removed")
	rolloverLeaveCmd.Flags().IntVar(&rolloverFromYear, "from-year", time.Now().Year()-1, "year whose balances are carried forward")
}

func runDedupeAttendance(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.attendance.Dedupe(cmd.Context(), dedupeDryRun)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func runRolloverLeave(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.balances.Rollover(cmd.Context(), rolloverFromYear)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
