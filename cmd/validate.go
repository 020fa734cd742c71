package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfleet/dispatchsim/config"
	"github.com/openfleet/dispatchsim/infra/reader"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and input files without running",
	RunE:  validate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	vehicles, _, err := reader.ReadVehicles(cfg.Data.VehiclesFile)
	if err != nil {
		return err
	}
	trips, err := reader.ReadTrips(cfg.Data.TripsFile)
	if err != nil {
		return err
	}
	if cfg.Data.TravelTimesFile != "" {
		if _, err := reader.ReadTravelTimes(cfg.Data.TravelTimesFile); err != nil {
			return err
		}
	}

	cmd.Printf("ok: %d vehicles, %d trips\n", len(vehicles), len(trips))
	return nil
}
