package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Inspect or clear the pending hazard alert",
}

var alertShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the pending alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		pending, err := rt.store.PendingAlert()
		if err != nil {
			return err
		}
		if pending == nil {
			return fmt.Errorf("no pending alert")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pending)
	},
}

var alertClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the pending alert without acknowledging it",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		if err := rt.store.ClearPendingAlert(); err != nil {
			return err
		}
		fmt.Println("pending alert cleared")
		return nil
	},
}

func init() {
	alertCmd.AddCommand(alertShowCmd)
	alertCmd.AddCommand(alertClearCmd)
}
