package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ivanpozdin/patchsim/dashboard"
	"github.com/ivanpozdin/patchsim/metrics"
	"github.com/ivanpozdin/patchsim/orchestrator"
	"github.com/ivanpozdin/patchsim/scenario"
)

var (
	scenarioPath    string
	dashboardAddr   string
	enableDashboard bool
	dumpConfig      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario to completion and print a summary",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "path to the scenario YAML file (required)")
	runCmd.Flags().BoolVar(&enableDashboard, "dashboard", false, "serve a live websocket/metrics dashboard while running")
	runCmd.Flags().StringVar(&dashboardAddr, "dashboard-addr", ":8080", "address the dashboard listens on, when enabled")
	runCmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "print the effective scenario as YAML before running")
	_ = runCmd.MarkFlagRequired("scenario")
}

func runRun(cmd *cobra.Command, args []string) error {
	sc, err := scenario.FromYAML(scenarioPath)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	if dumpConfig {
		rendered, err := sc.ToYAML()
		if err != nil {
			return fmt.Errorf("rendering effective config: %w", err)
		}
		fmt.Println(string(rendered))
	}

	log := newLogger()
	m := metrics.New()

	var dash *dashboard.Dashboard
	var srv *http.Server
	if enableDashboard {
		dash = dashboard.New(m)
		defer dash.Close()

		srv = &http.Server{Addr: dashboardAddr, Handler: dash.Router()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				color.Red("dashboard server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		color.Cyan("dashboard listening on %s (/ws, /metrics, /healthz)", dashboardAddr)
	}

	sim, err := orchestrator.New(sc, nil, log, m, dash)
	if err != nil {
		return fmt.Errorf("building simulation: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" running %d patch worker(s) for %d ticks (workers budget: %d)", len(sc.Patches()), sc.Ticks, workerCount)
	if !verbose {
		s.Start()
	}
	err = sim.Run(ctx)
	s.Stop()
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	printSummary(sim)
	return nil
}

func printSummary(sim *orchestrator.Simulation) {
	out := sim.GetOutput()
	color.Green("simulation complete: %d tick(s) recorded", len(out.Trace)-1)

	names := make([]string, 0, len(out.StatisticsByQuery))
	for name := range out.StatisticsByQuery {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		series := out.StatisticsByQuery[name]
		final := series[len(series)-1]
		fmt.Printf(
			"  %s: S=%d I=%d Y=%d R=%d\n",
			name, final.Susceptible, final.Infected, final.Infectious, final.Recovered,
		)
	}
}
