package cmd

import (
	"fmt"

	nucleus "github.com/osnucleus/pandos"
	"github.com/osnucleus/pandos/hardware"
	"github.com/osnucleus/pandos/hardware/harness"
	"github.com/osnucleus/pandos/internal/config"
	"go.uber.org/zap"
)

// scenario is an end-to-end demonstration, scripted as a sequence of
// hardware events (Boot, Syscall, AdvanceClock, RaiseDeviceInterrupt)
// against a fresh Nucleus over a software Harness. There is no
// user-mode test program in this repo; a scenario stands in for one,
// the way the teacher's cpu_test.go feeds hand-built instruction
// streams to its CPU instead of assembling and linking a real program.
type scenario struct {
	name string
	desc string
	run  func(n *nucleus.Nucleus, hw *harness.Harness, log *zap.SugaredLogger)
}

var scenarios = []scenario{
	{"create-terminate", "create a child process, then terminate the whole tree", runCreateTerminate},
	{"producer-consumer", "a consumer blocks on P, a producer wakes it with V", runProducerConsumer},
	{"terminal-write", "WaitIO on a terminal transmit line, completed by an interrupt", runTerminalWrite},
	{"quantum-expiry", "a running process is preempted when its quantum expires", runQuantumExpiry},
	{"pseudo-clock", "three processes WaitClock and are woken by one broadcast", runPseudoClock},
	{"deadlock", "a lone process blocks on a semaphore nobody will ever V", runDeadlock},
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

func newDemoNucleus(cfg config.Config, log *zap.SugaredLogger) (*nucleus.Nucleus, *harness.Harness) {
	hw := harness.New()
	n := nucleus.New(hw, cfg, log)
	return n, hw
}

func report(log *zap.SugaredLogger, n *nucleus.Nucleus, step string) {
	log.Infow(step,
		"processCount", n.ProcessCount(),
		"softBlockCount", n.SoftBlockCount(),
		"semaphores", len(n.Semaphores()),
	)
}

// runCreateTerminate: CreateProcess returns 0 and processCount goes
// 1 -> 2; TerminateProcess then frees the whole tree and processCount
// returns to 0, halting the machine.
func runCreateTerminate(n *nucleus.Nucleus, hw *harness.Harness, log *zap.SugaredLogger) {
	if err := n.Boot(hardware.ProcessorState{}, nil); err != nil {
		log.Errorw("boot failed", "err", err)
		return
	}
	report(log, n, "booted root process")

	handle := n.StageCreateProcess(hardware.ProcessorState{}, nil)
	hw.Syscall(nucleus.SysCreateProcess, handle, 0, 0)
	report(log, n, "root created a child")

	hw.Syscall(nucleus.SysTerminate, 0, 0, 0)
	report(log, n, "root terminated itself and its child")

	if hw.Halted() {
		log.Info("machine halted: no processes remain")
	}
}

// runProducerConsumer: register a1 = 0 resolves to UserSem(0) via
// resolveSemArg, so every syscall below operates on the same
// process-allocated counter.
func runProducerConsumer(n *nucleus.Nucleus, hw *harness.Harness, log *zap.SugaredLogger) {
	if err := n.Boot(hardware.ProcessorState{}, nil); err != nil {
		log.Errorw("boot failed", "err", err)
		return
	}

	consumerHandle := n.StageCreateProcess(hardware.ProcessorState{}, nil)
	hw.Syscall(nucleus.SysCreateProcess, consumerHandle, 0, 0)
	producerHandle := n.StageCreateProcess(hardware.ProcessorState{}, nil)
	hw.Syscall(nucleus.SysCreateProcess, producerHandle, 0, 0)
	report(log, n, "root created consumer and producer children")

	// Root plays the consumer: P() on the not-yet-produced counter blocks
	// it (counter 0 -> -1) and the scheduler dispatches the first ready
	// child in its place (the counter starts at 0, so the consumer blocks
	// first).
	hw.Syscall(nucleus.SysPasseren, 0, 0, 0)
	report(log, n, "consumer blocked on P (counter now -1)")

	// Whichever child is now current plays the producer: V() wakes the
	// blocked consumer and moves it back onto the ready queue.
	hw.Syscall(nucleus.SysVerhogen, 0, 0, 0)
	report(log, n, "producer called V (counter back to 0), consumer is ready again")
}

// runTerminalWrite: WaitIO on terminal transmit, completed by a device
// interrupt that ACKs transmit first.
func runTerminalWrite(n *nucleus.Nucleus, hw *harness.Harness, log *zap.SugaredLogger) {
	if err := n.Boot(hardware.ProcessorState{}, nil); err != nil {
		log.Errorw("boot failed", "err", err)
		return
	}

	const line, dev = hardware.LineTerminal, 3
	hw.Syscall(nucleus.SysWaitIO, uint32(line), uint32(dev), 1 /* transmit */)
	report(log, n, "process blocked in WaitIO on terminal transmit")

	hw.RaiseTerminalInterrupt(dev, true, hardware.DeviceReady+1)
	report(log, n, "terminal transmit completion delivered, process unblocked")
}

// runQuantumExpiry preempts a running process when its quantum expires.
func runQuantumExpiry(n *nucleus.Nucleus, hw *harness.Harness, log *zap.SugaredLogger) {
	if err := n.Boot(hardware.ProcessorState{}, nil); err != nil {
		log.Errorw("boot failed", "err", err)
		return
	}
	handle := n.StageCreateProcess(hardware.ProcessorState{}, nil)
	hw.Syscall(nucleus.SysCreateProcess, handle, 0, 0)
	report(log, n, "two processes runnable")

	hw.AdvanceClock(uint64(n.Quantum().Nanoseconds()))
	report(log, n, "quantum expired: running process preempted, next one dispatched")
}

// runPseudoClock wakes three WaitClock waiters with one interval-timer
// broadcast.
func runPseudoClock(n *nucleus.Nucleus, hw *harness.Harness, log *zap.SugaredLogger) {
	if err := n.Boot(hardware.ProcessorState{}, nil); err != nil {
		log.Errorw("boot failed", "err", err)
		return
	}
	for i := 0; i < 2; i++ {
		handle := n.StageCreateProcess(hardware.ProcessorState{}, nil)
		hw.Syscall(nucleus.SysCreateProcess, handle, 0, 0)
	}

	for i := 0; i < 3; i++ {
		hw.Syscall(nucleus.SysWaitClock, 0, 0, 0)
	}
	report(log, n, "three processes waiting on the pseudo-clock")

	hw.AdvanceClock(uint64(n.IntervalTimerPeriod().Nanoseconds()))
	report(log, n, "interval timer fired: all three processes woken, counter reset")
}

// runDeadlock blocks a lone process on a semaphore nobody will ever V.
func runDeadlock(n *nucleus.Nucleus, hw *harness.Harness, log *zap.SugaredLogger) {
	if err := n.Boot(hardware.ProcessorState{}, nil); err != nil {
		log.Errorw("boot failed", "err", err)
		return
	}
	hw.Syscall(nucleus.SysPasseren, 0, 0, 0)

	if panicked, reason := hw.Panicked(); panicked {
		log.Infow("deadlock detected as expected", "reason", reason)
	} else {
		log.Warn("expected deadlock panic, machine did not panic")
	}
}

// describeScenarios renders the scenario catalog for `nucleusctl run --list`.
func describeScenarios() string {
	out := ""
	for _, s := range scenarios {
		out += fmt.Sprintf("  %-20s %s\n", s.name, s.desc)
	}
	return out
}
