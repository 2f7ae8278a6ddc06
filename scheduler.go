package nucleus

// Schedule is the preemptive round-robin dispatcher. It never returns to
// its caller by ordinary means: every branch
// ends in a call to hw.LoadState, hw.Halt, hw.Panic, or hw.WaitForInterrupt,
// and callers must treat Schedule itself the same way — as their last
// statement.
func (n *Nucleus) Schedule() {
	p := n.ready.RemoveHead()
	if p != nil {
		n.current = p
		n.hw.ArmPLT(uint64(n.cfg.Quantum.Nanoseconds()))
		p.StartTOD = n.hw.Now()
		n.hw.LoadState(&p.State)
		return
	}

	n.current = nil

	switch {
	case n.processCount == 0:
		n.log.Info("halt: no processes remain")
		n.hw.Halt()
	case n.softBlockCount > 0:
		n.idle()
	default:
		n.log.Errorw("deadlock detected", "processCount", n.processCount)
		n.hw.Panic("deadlock: processes exist but none are runnable or soft-blocked")
	}
}

// idle arms the quantum timer, then executes the wait instruction. The
// timer is not masked while idling, so it can expire with no current
// process; handlePLT then just re-enters the scheduler, and the next
// dispatch arms a fresh quantum.
func (n *Nucleus) idle() {
	n.hw.ArmPLT(uint64(n.cfg.Quantum.Nanoseconds()))
	n.hw.WaitForInterrupt()
}
