package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	sim "github.com/inference-sim/mlfq-sim/sim"
	"github.com/inference-sim/mlfq-sim/sim/trace"
)

// PrintResult writes result to w as a metrics table plus per-process rows,
// or as indented JSON.
func PrintResult(w io.Writer, result *sim.SimulationResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		return nil
	}

	result.Metrics.Print(w)
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tARRIVAL\tBURST\tSTART\tFINISH\tTURNAROUND\tWAITING\tRESPONSE\tBLOCKED\tFINAL QUEUE")
	for _, ps := range result.Processes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			ps.PID, ps.ArrivalTime, ps.BurstTime, ps.StartTime, ps.FinishTime,
			ps.TurnaroundTime, ps.WaitingTime, ps.ResponseTime, ps.BlockedTime, ps.Queue)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if result.Trace != nil {
		summary := trace.Summarize(result.Trace)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Decision Trace ===")
		fmt.Fprintf(w, "Events               : %d\n", summary.TotalEvents)
		fmt.Fprintf(w, "Boosts               : %d\n", summary.Boosts)
		fmt.Fprintf(w, "Demotions            : %d\n", summary.Counts[trace.EventDemotion])
		fmt.Fprintf(w, "Promotions           : %d\n", summary.Counts[trace.EventPromotion])
		fmt.Fprintf(w, "I/O Blocks           : %d\n", summary.Counts[trace.EventBlock])
	}
	return nil
}

// SaveResult writes result as indented JSON to fileName.
func SaveResult(result *sim.SimulationResult, fileName string) (err error) {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", fileName, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing file %s: %w", fileName, closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("writing result to %s: %w", fileName, err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", fileName, err)
	}
	logrus.Debugf("Successfully wrote to '%s'", fileName)
	return nil
}

// FormatSnapshot renders one tick as a single line, e.g.
//
//	[tick 0000004] cpu=P2 Q0[] Q1[P1]
func FormatSnapshot(snap sim.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[tick %07d] cpu=", snap.Clock)
	if snap.Running == "" {
		sb.WriteString("idle")
	} else {
		sb.WriteString(snap.Running)
	}
	for i, q := range snap.Queues {
		fmt.Fprintf(&sb, " Q%d[%s]", i, strings.Join(q, " "))
	}
	if snap.Done {
		sb.WriteString(" done")
	}
	return sb.String()
}
