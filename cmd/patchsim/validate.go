package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ivanpozdin/patchsim/patch"
	"github.com/ivanpozdin/patchsim/scenario"
)

var validateScenarioPath string

var validateCmd = &cobra.Command{
	Use:   "validate-scenario",
	Short: "Load and validate a scenario file without running it",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateScenarioPath, "scenario", "s", "", "path to the scenario YAML file (required)")
	_ = validateCmd.MarkFlagRequired("scenario")
}

func runValidate(cmd *cobra.Command, args []string) error {
	sc, err := scenario.FromYAML(validateScenarioPath)
	if err != nil {
		color.Red("invalid: %v", err)
		return err
	}

	k, err := patch.CycleDuration(sc.Parameters.Padding, sc.Parameters.IncubationTicks, sc.Parameters.InfectionRadius)
	if err != nil {
		color.Red("invalid: %v", err)
		return err
	}

	color.Green("valid: %d patch(es), cycle duration K=%d", len(sc.Patches()), k)
	fmt.Printf("  grid=%dx%d ticks=%d population=%d queries=%d\n",
		sc.GridSize.X, sc.GridSize.Y, sc.Ticks, len(sc.InitialPopulation), len(sc.Queries))
	return nil
}
