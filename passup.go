package nucleus

import "github.com/osnucleus/pandos/hardware"

// Kind distinguishes the two escalation classes Pass-Up-or-Die carries:
// TLB misses versus every other program trap or privileged/illegal
// SYSCALL.
type Kind int

const (
	KindPageFault Kind = iota
	KindGeneral
)

// Support is the "support-level" collaborator a process may register at
// creation, consumed only by Pass-Up-or-Die. Its own virtual-memory and
// user-exception handling live entirely outside the nucleus; this
// interface is only the contract Pass-Up-or-Die needs to hand control to
// one.
type Support interface {
	// SaveExceptionState records the hardware-saved state for kind, so
	// the support level can inspect what faulted.
	SaveExceptionState(kind Kind, state hardware.ProcessorState)

	// Context returns the support level's registered continuation for
	// kind: the stack pointer, status word, and program counter to load.
	Context(kind Kind) (stackPtr, status, pc uint32)
}

// passUpOrDie is the escalate-or-terminate rule: if the current process
// has no support structure (or one that doesn't satisfy Support), it is
// terminated and the scheduler re-entered. Otherwise the saved state is
// handed to the support level and its registered continuation is loaded
// — running as a continuation of the same process, with no scheduler
// involvement.
func (n *Nucleus) passUpOrDie(saved *hardware.ProcessorState, kind Kind) {
	p := n.current
	if p == nil {
		n.log.Errorw("pass-up-or-die with no current process", "kind", kind)
		n.Schedule()
		return
	}

	sup, ok := p.Support.(Support)
	if !ok || sup == nil {
		n.log.Infow("pass-up-or-die: no support structure, terminating", "kind", kind)
		n.terminateCurrent()
		n.Schedule()
		return
	}

	sup.SaveExceptionState(kind, *saved)
	stackPtr, status, pc := sup.Context(kind)
	n.hw.LoadContext(stackPtr, status, pc)
}
