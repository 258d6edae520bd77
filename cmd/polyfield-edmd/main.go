// Command polyfield-edmd is a demo entrypoint: it wires configuration,
// logging, calibration persistence, and the Orchestrator together and
// drives one simulated device through SetCircleType, SetCentre,
// VerifyEdge, and MeasureThrow.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"polyfield-edm/internal/calibration"
	"polyfield-edm/internal/config"
	"polyfield-edm/internal/demo"
	"polyfield-edm/internal/logging"
	"polyfield-edm/internal/orchestrator"
)

func main() {
	configPath := flag.String("config", "polyfield.yaml", "path to config file")
	deviceID := flag.String("device", "edm-1", "device id to drive")
	flag.Parse()

	if err := run(*configPath, *deviceID); err != nil {
		fmt.Fprintln(os.Stderr, "polyfield-edmd:", err)
		os.Exit(1)
	}
}

func run(configPath, deviceID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogFormat)

	persister, err := calibration.OpenSQLitePersister(cfg.DBPath)
	if err != nil {
		return err
	}
	defer persister.Close()

	store, err := calibration.NewStore(persister, cfg.CircleType(), log)
	if err != nil {
		return err
	}

	// This entrypoint only ever drives a simulated device.
	orch := orchestrator.New(store, true, demo.NewSimulator(), nil, log)

	ctx := context.Background()

	if _, err := orch.SetCircleType(deviceID, cfg.CircleType()); err != nil {
		return err
	}
	cal, err := orch.SetCentre(ctx, deviceID, true)
	if err != nil {
		return err
	}
	log.Info().Float64("station_x", cal.Station.X).Float64("station_y", cal.Station.Y).Msg("centre set")

	cal, err = orch.VerifyEdge(ctx, deviceID, true)
	if err != nil {
		return err
	}
	log.Info().Float64("diff_mm", cal.Edge.DifferenceMm).Bool("in_tolerance", cal.Edge.InTolerance).Msg("edge verified")

	result, err := orch.MeasureThrow(ctx, deviceID, true)
	if err != nil {
		return err
	}
	fmt.Printf("throw distance: %.2fm (landing x=%.3f y=%.3f)\n", result.Distance, result.Point.X, result.Point.Y)
	return nil
}
