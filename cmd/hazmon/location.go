package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ospreycove/hazmon/internal/domain"
)

var locationAccuracy float64

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage the monitored location",
}

var locationSetCmd = &cobra.Command{
	Use:   "set <lat> <lon>",
	Short: "Record a new location fix",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q", args[1])
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return fmt.Errorf("lat/lon out of range")
		}

		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		loc := domain.Location{
			Lat:        lat,
			Lon:        lon,
			Accuracy:   locationAccuracy,
			CapturedAt: domain.Now().UTC(),
		}
		if err := rt.store.SetLocation(loc); err != nil {
			return err
		}
		fmt.Printf("location set to (%.4f, %.4f)\n", lat, lon)
		return nil
	},
}

var locationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current location fix",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		loc, ok, err := rt.store.Location()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no location on file")
		}
		fmt.Printf("(%.4f, %.4f) captured %s\n", loc.Lat, loc.Lon, loc.CapturedAt.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

func init() {
	locationSetCmd.Flags().Float64Var(&locationAccuracy, "accuracy", 0, "Fix accuracy in meters")
	locationCmd.AddCommand(locationSetCmd)
	locationCmd.AddCommand(locationShowCmd)
}
