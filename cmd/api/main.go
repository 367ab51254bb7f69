package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "v1.0.0"

var rootCmd = &cobra.Command{
	Use:   "hrms",
	Short: "HRMS core backend",
	Long:  `Attendance, leave and salary management API.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(dedupeAttendanceCmd)
	rootCmd.AddCommand(rolloverLeaveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
