package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/mlfq-sim/sim"
	"github.com/inference-sim/mlfq-sim/sim/workload"
)

var (
	genSeed       int64
	genCount      int
	genArrival    string
	genMeanGap    float64
	genBurstMin   int64
	genBurstMax   int64
	genIOFraction float64
	genIOTimeMin  int64
	genIOTimeMax  int64
	genIOEveryMin int64
	genIOEveryMax int64
)

// generateCmd writes a synthetic workload file to stdout for piping into `run --workload`.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a seeded synthetic workload as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		gen := workload.GeneratorSpec{
			Seed:    genSeed,
			Count:   genCount,
			Arrival: workload.ArrivalSpec{Process: genArrival, MeanGap: genMeanGap},
			Burst:   workload.RangeSpec{Min: genBurstMin, Max: genBurstMax},
		}
		if genIOFraction > 0 {
			gen.IO = &workload.IOSpec{
				Fraction: genIOFraction,
				Time:     workload.RangeSpec{Min: genIOTimeMin, Max: genIOTimeMax},
				Interval: workload.RangeSpec{Min: genIOEveryMin, Max: genIOEveryMax},
			}
		}
		procs, err := workload.Generate(gen)
		if err != nil {
			logrus.Fatalf("Workload generation failed: %v", err)
		}

		spec := &workload.WorkloadSpec{
			Version: "1",
			Config: sim.SimulationConfig{
				NumQueues:      numQueues,
				TimeSlice:      timeSliceFromFlag(timeSlices),
				BoostInterval:  boostInterval,
				AgingThreshold: agingThreshold,
			},
			Processes: procs,
		}
		if err := spec.Validate(); err != nil {
			logrus.Fatalf("Generated workload is invalid: %v", err)
		}
		if err := workload.WriteSpec(os.Stdout, spec); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	addConfigFlags(generateCmd)
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "Seed for workload generation")
	generateCmd.Flags().IntVar(&genCount, "count", 10, "Number of processes")
	generateCmd.Flags().StringVar(&genArrival, "arrival", "poisson", "Arrival process (simultaneous, constant, poisson)")
	generateCmd.Flags().Float64Var(&genMeanGap, "mean-gap", 3, "Mean ticks between arrivals")
	generateCmd.Flags().Int64Var(&genBurstMin, "burst-min", 1, "Minimum CPU burst")
	generateCmd.Flags().Int64Var(&genBurstMax, "burst-max", 20, "Maximum CPU burst")
	generateCmd.Flags().Float64Var(&genIOFraction, "io-fraction", 0, "Fraction of processes that perform I/O")
	generateCmd.Flags().Int64Var(&genIOTimeMin, "io-time-min", 1, "Minimum ticks blocked per I/O")
	generateCmd.Flags().Int64Var(&genIOTimeMax, "io-time-max", 5, "Maximum ticks blocked per I/O")
	generateCmd.Flags().Int64Var(&genIOEveryMin, "io-interval-min", 1, "Minimum CPU ticks between I/Os")
	generateCmd.Flags().Int64Var(&genIOEveryMax, "io-interval-max", 3, "Maximum CPU ticks between I/Os")

	rootCmd.AddCommand(generateCmd)
}
