package main

import (
	"encoding/json"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ospreycove/hazmon/internal/escalate"
)

var escalationCmd = &cobra.Command{
	Use:   "escalation",
	Short: "Print the current escalation decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		poller := escalate.NewPoller(rt.store, rt.cfg.Escalation.Threshold.Std(), rt.cfg.Escalation.Contact, clockwork.NewRealClock())

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(poller.CheckEscalation())
	},
}
