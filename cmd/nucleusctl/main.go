// Command nucleusctl drives the nucleus kernel against the software
// harness: run boots the nucleus and plays one finite scripted scenario
// (syscalls, clock advances, device interrupts) to its end; dump renders
// a point-in-time snapshot of a saved kernel state.
package main

import (
	"fmt"
	"os"

	"github.com/osnucleus/pandos/cmd/nucleusctl/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
