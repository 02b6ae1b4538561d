package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ospreycove/hazmon/internal/domain"
)

var ackCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge the pending hazard alert",
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
		if pending.Acknowledged() {
			fmt.Printf("alert %s already acknowledged at %s\n", pending.ID, pending.AcknowledgedAt.Format("15:04:05"))
			return nil
		}

		if err := pending.Acknowledge(domain.Now().UTC()); err != nil {
			return err
		}
		if err := rt.store.SavePendingAlert(pending); err != nil {
			return err
		}
		fmt.Printf("acknowledged alert %s (%s)\n", pending.ID, pending.Summary)
		return nil
	},
}
