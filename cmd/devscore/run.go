package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/config"
	"github.com/sarchlab/devscore/coordinator"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devslog"
	"github.com/sarchlab/devscore/factory"
	"github.com/sarchlab/devscore/graph"
	"github.com/sarchlab/devscore/idgen"
	"github.com/sarchlab/devscore/monitor"
)

var (
	projectPath string
	logLevel    string
	monitorOn   bool
	monitorPort int
	openBrowser bool
)

// runCmd drives one project descriptor through the coordinator's
// Init/Step/Finish loop, mirroring inference-sim-inference-sim's
// runCmd: parse flags, configure logging, build and run, report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation project to completion",
	Run: func(cmd *cobra.Command, args []string) {
		logger := devslog.New()

		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logger.Fatalf("invalid log level %q: %v", logLevel, err)
		}

		logger.SetLevel(level)

		if projectPath == "" {
			logger.Fatalf("no project descriptor given. Exiting. Use --project.")
		}

		proj, err := config.LoadProject(projectPath)
		if err != nil {
			logger.Fatalf("loading project: %v", err)
		}

		g := graph.New()
		f := factory.New()
		ids := idgen.NewXID()

		co := coordinator.New(g, f, ids, logger)

		if err := config.Apply(proj, co); err != nil {
			logger.Fatalf("assembling project %q: %v", proj.Name, err)
		}

		if monitorOn {
			srv := monitor.New(co).WithPortNumber(monitorPort)

			addr, err := srv.StartServer()
			if err != nil {
				logger.Fatalf("starting monitor server: %v", err)
			}

			logger.Infof("monitor listening on %s", addr)

			if openBrowser {
				if err := srv.Open(); err != nil {
					logger.Warnf("opening monitor in browser: %v", err)
				}
			}
		}

		if err := co.Init(map[devsevent.SimulatorID]atomicmodel.InitEvents{}); err != nil {
			logger.Fatalf("initializing project %q: %v", proj.Name, err)
		}

		logger.Infof("starting simulation %q", proj.Name)

		steps := 0

		for !co.NextTime().IsInfinite() {
			if err := co.Step(); err != nil {
				_ = co.Finish()
				logger.Fatalf("step %d at t=%v: %v", steps, co.CurrentTime(), err)
			}

			steps++
		}

		if err := co.Finish(); err != nil {
			logger.Fatalf("finishing project %q: %v", proj.Name, err)
		}

		logger.Infof("simulation %q complete after %d steps at t=%v", proj.Name, steps, co.CurrentTime())
	},
}

func init() {
	runCmd.Flags().StringVar(&projectPath, "project", "", "Path to the project YAML descriptor")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().BoolVar(&monitorOn, "monitor", false, "Start the read-only HTTP introspection server")
	runCmd.Flags().IntVar(&monitorPort, "monitor-port", 0, "Monitor server port (0 picks a free port)")
	runCmd.Flags().BoolVar(&openBrowser, "open", false, "Open the monitor dashboard in the default browser")
}
