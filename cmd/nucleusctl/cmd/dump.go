package cmd

import (
	"fmt"
	"os"
	"strconv"

	nucleus "github.com/osnucleus/pandos"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Render a process dump previously written by `nucleusctl run --dump-file`.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

// writeDumpFile captures every live PCB in n and writes it to path using
// nucleus.WriteDump's big-endian framing (serialize.go), grounded in the
// teacher's own encoding/binary serialization convention and rendered
// by runDump below with olekukonko/tablewriter — the arctir-proctor
// ui/ui.go and proctor/cmd/cmd.go table-of-processes pattern, adapted
// from a live OS process table to a point-in-time kernel snapshot.
func writeDumpFile(path string, n *nucleus.Nucleus) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dump file: %w", err)
	}
	defer f.Close()

	if err := nucleus.WriteDump(f, n.Dump()); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening dump file: %w", err)
	}
	defer f.Close()

	records, err := nucleus.ReadDump(f)
	if err != nil {
		return fmt.Errorf("reading dump file: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"PID", "status", "cpu time (ns)", "pc", "sp"})
	for _, rec := range records {
		table.Append([]string{
			strconv.Itoa(rec.PID),
			rec.Status,
			strconv.FormatUint(rec.PCB.CPUTime, 10),
			fmt.Sprintf("%08x", rec.PCB.State.PC),
			fmt.Sprintf("%08x", rec.PCB.State.SP),
		})
	}
	table.Render()
	return nil
}
