package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cargo-agent/config"
	coresim "github.com/kilianp07/cargo-agent/core/sim"
	"github.com/kilianp07/cargo-agent/infra/logger"
	infrasim "github.com/kilianp07/cargo-agent/infra/sim"
)

var simToken string

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Control the remote simulation",
}

var simStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the remote simulation",
	RunE:  simStart,
}

var simStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the remote simulation",
	RunE:  simStop,
}

func init() {
	simCmd.PersistentFlags().StringVarP(&simToken, "token", "t", "", "bearer token for the simulation server")
	simCmd.AddCommand(simStartCmd, simStopCmd)
	rootCmd.AddCommand(simCmd)
}

func simStart(cmd *cobra.Command, args []string) error {
	gateway, ctx, err := simGateway()
	if err != nil {
		return err
	}
	if err := gateway.StartSimulation(ctx); err != nil {
		return fmt.Errorf("start simulation: %w", err)
	}
	logger.New("sim-command").Infof("simulation started")
	return nil
}

func simStop(cmd *cobra.Command, args []string) error {
	gateway, ctx, err := simGateway()
	if err != nil {
		return err
	}
	if err := gateway.StopSimulation(ctx); err != nil {
		return fmt.Errorf("stop simulation: %w", err)
	}
	logger.New("sim-command").Infof("simulation stopped")
	return nil
}

func simGateway() (*infrasim.Client, context.Context, error) {
	if simToken == "" {
		return nil, nil, fmt.Errorf("--token is required")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	ctx := coresim.WithToken(context.Background(), simToken)
	return infrasim.NewClient(cfg.Sim), ctx, nil
}
