package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ospreycove/hazmon/internal/domain"
)

var (
	overrideScenario string
	overrideFile     string
	overrideTTL      time.Duration
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage test overrides for drills",
	Long:  "override substitutes canned check results for selected sources so alerting and escalation can be exercised without a real hazard.",
}

var overrideSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Install an override from a substitutes JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(overrideFile)
		if err != nil {
			return fmt.Errorf("read substitutes: %w", err)
		}

		var substitutes map[domain.Source]domain.CheckResult
		if err := json.Unmarshal(data, &substitutes); err != nil {
			return fmt.Errorf("parse substitutes: %w", err)
		}
		if len(substitutes) == 0 {
			return fmt.Errorf("substitutes file names no sources")
		}
		for src := range substitutes {
			if !src.Valid() {
				return fmt.Errorf("unknown source %q", src)
			}
		}

		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		o := domain.NewTestOverride(overrideScenario, substitutes, overrideTTL)
		if err := rt.store.SaveOverride(o); err != nil {
			return err
		}
		fmt.Printf("override %q active until %s (%d sources)\n",
			o.Scenario, o.ExpiresAt.Format("15:04:05"), len(o.Substitutes))
		return nil
	},
}

var overrideClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove any installed override",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		if err := rt.store.ClearOverride(); err != nil {
			return err
		}
		fmt.Println("override cleared")
		return nil
	},
}

var overrideShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the installed override",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		o, err := rt.store.Override()
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("no override installed")
		}
		if !o.Active(domain.Now()) {
			fmt.Fprintf(os.Stderr, "note: override expired at %s\n", o.ExpiresAt.Format("15:04:05"))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	},
}

var overrideSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a sample substitutes file for a drill",
	RunE: func(cmd *cobra.Command, args []string) error {
		sample := map[domain.Source]domain.CheckResult{
			domain.SourceWeather: {
				Source: domain.SourceWeather,
				Clear:  false,
				Alerts: []domain.HazardAlert{{
					Source:   domain.SourceWeather,
					Severity: domain.SeverityWarning,
					Weather: &domain.WeatherAlert{
						Event:    "Severe Thunderstorm Warning",
						Headline: "Severe Thunderstorm Warning until 6 PM for the monitored area",
					},
				}},
			},
			domain.SourceSeismic: {
				Source: domain.SourceSeismic,
				Clear:  true,
			},
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sample)
	},
}

func init() {
	overrideSetCmd.Flags().StringVar(&overrideScenario, "scenario", "", "Scenario name (defaults to a generated ID)")
	overrideSetCmd.Flags().StringVar(&overrideFile, "file", "", "Path to substitutes JSON (see 'override sample')")
	overrideSetCmd.Flags().DurationVar(&overrideTTL, "ttl", 30*time.Minute, "How long the override stays active")
	_ = overrideSetCmd.MarkFlagRequired("file")

	overrideCmd.AddCommand(overrideSetCmd)
	overrideCmd.AddCommand(overrideClearCmd)
	overrideCmd.AddCommand(overrideShowCmd)
	overrideCmd.AddCommand(overrideSampleCmd)
}
