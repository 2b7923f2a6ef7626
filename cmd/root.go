package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/mlfq-sim/sim"
	"github.com/inference-sim/mlfq-sim/sim/trace"
	"github.com/inference-sim/mlfq-sim/sim/workload"
)

var (
	// CLI flags for the scheduler config
	numQueues      int     // Number of priority levels
	timeSlices     []int64 // Quantum per level (one value = uniform)
	boostInterval  int64   // Ticks between priority boosts
	agingThreshold int64   // Consecutive queued ticks before promotion

	// CLI flags for the run itself
	workloadPath string   // Workload YAML/JSON file
	processFlags []string // Inline processes "pid:arrival:burst[:io_time[:io_interval]]"
	horizon      int64    // Max ticks before giving up (0 = unlimited)
	logLevel     string   // Log verbosity level
	traceLevel   string   // Decision trace level
	outputFormat string   // Result format: table or json
	outputPath   string   // Write JSON result to this file
	showSteps    bool     // Print one line per tick
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "mlfq-sim",
	Short: "Multi-Level Feedback Queue CPU scheduling simulator",
}

// setLogLevel parses and installs the --log flag.
func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// runCmd executes the simulation using parameters from a workload file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an MLFQ simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, decisions", traceLevel)
		}
		if outputFormat != "table" && outputFormat != "json" {
			logrus.Fatalf("Unknown output format %q; valid: table, json", outputFormat)
		}

		spec, err := loadRunSpec(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		procs, err := spec.ResolveProcesses()
		if err != nil {
			logrus.Fatalf("Unable to build process list: %v", err)
		}

		s, err := sim.New(spec.Config, procs,
			sim.WithTrace(trace.TraceLevel(traceLevel)),
			sim.WithHorizon(horizon),
		)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		var result *sim.SimulationResult
		if showSteps {
			var snaps []sim.Snapshot
			snaps, result, err = s.RunWithSnapshots()
			for _, snap := range snaps {
				fmt.Println(FormatSnapshot(snap))
			}
		} else {
			result, err = s.RunToCompletion()
		}
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if outputPath != "" {
			if err := SaveResult(result, outputPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		if err := PrintResult(os.Stdout, result, outputFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// loadRunSpec builds the workload from --workload (if given), then applies
// inline processes and any config flag the user explicitly set.
func loadRunSpec(cmd *cobra.Command) (*workload.WorkloadSpec, error) {
	spec := &workload.WorkloadSpec{Version: "1"}
	if workloadPath != "" {
		loaded, err := workload.LoadWorkloadSpec(workloadPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	} else {
		// No file: flag defaults form the whole config.
		spec.Config = sim.SimulationConfig{
			NumQueues:      numQueues,
			BoostInterval:  boostInterval,
			AgingThreshold: agingThreshold,
		}
		spec.Config.TimeSlice = timeSliceFromFlag(timeSlices)
	}
	applyConfigOverrides(cmd, &spec.Config)

	if len(processFlags) > 0 {
		if spec.Generator != nil {
			return nil, fmt.Errorf("--process cannot be combined with a generator workload")
		}
		procs, err := ParseProcessFlags(processFlags)
		if err != nil {
			return nil, err
		}
		spec.Processes = append(spec.Processes, procs...)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// applyConfigOverrides copies config flags onto cfg, but only the ones the
// user set explicitly, so file values survive flag defaults.
func applyConfigOverrides(cmd *cobra.Command, cfg *sim.SimulationConfig) {
	flags := cmd.Flags()
	if flags.Changed("num-queues") {
		cfg.NumQueues = numQueues
	}
	if flags.Changed("time-slice") {
		cfg.TimeSlice = timeSliceFromFlag(timeSlices)
	}
	if flags.Changed("boost-interval") {
		cfg.BoostInterval = boostInterval
	}
	if flags.Changed("aging-threshold") {
		cfg.AgingThreshold = agingThreshold
	}
}

func timeSliceFromFlag(values []int64) sim.TimeSlice {
	switch len(values) {
	case 0:
		return sim.TimeSlice{}
	case 1:
		return sim.UniformTimeSlice(values[0])
	default:
		return sim.LevelTimeSlice(values...)
	}
}

// ParseProcessFlags parses "pid:arrival:burst[:io_time[:io_interval]]" entries.
func ParseProcessFlags(entries []string) ([]sim.Process, error) {
	procs := make([]sim.Process, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Split(entry, ":")
		if len(parts) < 3 || len(parts) > 5 {
			return nil, fmt.Errorf("--process %q: want pid:arrival:burst[:io_time[:io_interval]]", entry)
		}
		nums := make([]int64, len(parts)-1)
		for i, raw := range parts[1:] {
			v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("--process %q: field %d: %w", entry, i+2, err)
			}
			nums[i] = v
		}
		p := sim.Process{PID: strings.TrimSpace(parts[0]), ArrivalTime: nums[0], BurstTime: nums[1]}
		if len(nums) > 2 {
			p.IOTime = &nums[2]
		}
		if len(nums) > 3 {
			p.IOInterval = &nums[3]
		}
		procs = append(procs, p)
	}
	return procs, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addConfigFlags registers the scheduler config flags on c.
func addConfigFlags(c *cobra.Command) {
	c.Flags().IntVar(&numQueues, "num-queues", 3, "Number of priority levels")
	c.Flags().Int64SliceVar(&timeSlices, "time-slice", []int64{4, 8, 16}, "Comma-separated quantum per level (a single value applies to every level)")
	c.Flags().Int64Var(&boostInterval, "boost-interval", 100, "Ticks between priority boosts")
	c.Flags().Int64Var(&agingThreshold, "aging-threshold", 50, "Consecutive queued ticks before a process is promoted")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&workloadPath, "workload", "", "Path to a workload YAML/JSON file")
	runCmd.Flags().StringArrayVar(&processFlags, "process", nil, "Inline process pid:arrival:burst[:io_time[:io_interval]] (repeatable)")
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "Stop after this many ticks (0 = run to completion)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&outputFormat, "format", "table", "Result format (table, json)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the JSON result to this file")
	runCmd.Flags().BoolVar(&showSteps, "steps", false, "Print the queue state after every tick")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
