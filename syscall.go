package nucleus

import "github.com/osnucleus/pandos/hardware"

// Syscall numbers 1-8 are nucleus services; every other number is
// escalated.
const (
	SysCreateProcess = 1
	SysTerminate     = 2
	SysPasseren      = 3
	SysVerhogen      = 4
	SysWaitIO        = 5
	SysGetCPUTime    = 6
	SysWaitClock     = 7
	SysGetSupportPTR = 8
)

// handleSyscall is the register-ABI entry point for SYSCALL exceptions.
// The saved PC is advanced by one instruction before dispatch so that a
// non-blocking syscall resumes after the trapping instruction, and so
// that a blocking dispatch's saved state already has the right resume
// address baked in.
func (n *Nucleus) handleSyscall(saved *hardware.ProcessorState) {
	saved.PC += 4

	num := int32(saved.A0())

	if saved.Status&hardware.StatusKUc != 0 && num >= SysCreateProcess && num <= SysGetSupportPTR {
		// User-mode invocation of a privileged syscall number is a
		// reserved-instruction trap.
		n.passUpOrDie(saved, KindGeneral)
		return
	}

	switch num {
	case SysCreateProcess:
		n.dispatchCreateProcess(saved)
	case SysTerminate:
		n.terminateCurrent()
		n.Schedule()
	case SysPasseren:
		n.sysPasseren(saved, n.resolveSemArg(saved.A1()))
	case SysVerhogen:
		n.sysVerhogen(n.resolveSemArg(saved.A1()))
	case SysWaitIO:
		n.dispatchWaitIO(saved)
	case SysGetCPUTime:
		saved.SetV0(n.sysGetCPUTime())
	case SysWaitClock:
		n.sysWaitClock(saved)
	case SysGetSupportPTR:
		n.dispatchGetSupportPTR(saved)
	default:
		// Numbers >= 9 are escalated.
		n.passUpOrDie(saved, KindGeneral)
	}
}

// resolveSemArg maps a register value to a semaphore identity. Index
// values below MaxUserSem select a process-allocated semaphore
// (UserSem); for anything else, v-MaxUserSem is used as a
// device-semaphore array index, letting a process P/V a device
// semaphore directly if it knows its index (WaitIO is still the normal
// path for device I/O). Values past the end of the array select slot 0.
func (n *Nucleus) resolveSemArg(v uint32) SemAddr {
	if int(v) < MaxUserSem {
		return n.UserSem(int(v))
	}
	idx := int(v) - MaxUserSem
	if idx < 0 || idx >= NSem {
		idx = 0
	}
	return &n.deviceSem[idx]
}

func (n *Nucleus) dispatchCreateProcess(saved *hardware.ProcessorState) {
	pid, err := n.sysCreateProcess(saved.A1())
	if err != nil {
		saved.SetV0(uint32(int32(-1)))
		return
	}
	_ = pid
	saved.SetV0(0)
}

func (n *Nucleus) dispatchWaitIO(saved *hardware.ProcessorState) {
	line := int(saved.A1())
	dev := int(saved.A2())
	transmit := saved.A3() != 0
	n.waitIO(saved, line, dev, transmit)
}

func (n *Nucleus) dispatchGetSupportPTR(saved *hardware.ProcessorState) {
	sup := n.sysGetSupportPTR()
	n.lastSupportPTR = sup
	if sup != nil {
		saved.SetV0(1)
	} else {
		saved.SetV0(0)
	}
}

// --- Go-level primitives, also used directly by tests and by the
// interrupt handlers below. ---

// chargeAndSuspend must run immediately before any blocking event:
// charge elapsed quantum time, copy the hardware-saved state into the
// PCB, and clear current.
func (n *Nucleus) chargeAndSuspend(saved *hardware.ProcessorState) *PCB {
	p := n.current
	p.CPUTime += n.hw.Now() - p.StartTOD
	p.State = *saved
	n.current = nil
	return p
}

// sysCreateProcess implements SYSCALL 1.
func (n *Nucleus) sysCreateProcess(stagingHandle uint32) (*PCB, error) {
	args, ok := n.takeStagedCreate(stagingHandle)
	if !ok {
		return nil, ErrPoolExhausted
	}
	child := n.pool.allocate()
	if child == nil {
		return nil, ErrPoolExhausted
	}
	child.State = args.initial
	child.Support = args.support
	insertChild(n.current, child)
	n.ready.InsertTail(child)
	n.processCount++
	return child, nil
}

// terminateCurrent implements SYSCALL 2: recursively terminate current
// and all descendants.
func (n *Nucleus) terminateCurrent() {
	p := n.current
	if p == nil {
		return
	}
	n.current = nil
	n.terminateTree(p)
}

// terminateTree recursively terminates p and every descendant. Tree
// depth is bounded by MaxProc so recursion never overflows.
func (n *Nucleus) terminateTree(p *PCB) {
	for p.child != nil {
		n.terminateTree(p.child)
	}
	n.removeFromEverything(p)
	n.pool.release(p)
	n.processCount--
}

// removeFromEverything detaches p from whatever queue it is in (ready or
// an ASL wait queue) and from its parent's child list, undoing a
// non-device P if p was blocked there.
func (n *Nucleus) removeFromEverything(p *PCB) {
	if n.ready.RemoveSpecific(p) != nil {
		detach(p)
		return
	}
	if p.SemAdd != nil {
		sem := p.SemAdd
		device := n.isDeviceSem(sem)
		if n.asl.OutBlocked(p) != nil {
			if device {
				n.softBlockCount--
			} else {
				*sem++
			}
			p.SemAdd = nil
		}
	}
	detach(p)
}

// sysPasseren implements SYSCALL 3: decrement sem; if the result is
// negative, save state and block.
func (n *Nucleus) sysPasseren(saved *hardware.ProcessorState, sem SemAddr) {
	*sem--
	if *sem >= 0 {
		return
	}
	p := n.chargeAndSuspend(saved)
	if n.asl.InsertBlocked(sem, p) {
		// ASL pool exhausted: undo the decrement and keep the caller
		// running instead of leaking a PCB nothing can ever wake.
		*sem++
		n.current = p
		return
	}
	n.Schedule()
}

// sysVerhogen implements SYSCALL 4: increment sem; if the post-increment
// value is non-positive, wake exactly one waiter.
func (n *Nucleus) sysVerhogen(sem SemAddr) {
	*sem++
	if *sem > 0 {
		return
	}
	p := n.asl.RemoveBlocked(sem)
	if p == nil {
		return
	}
	if n.isDeviceSem(sem) {
		n.softBlockCount--
	}
	n.ready.InsertTail(p)
}

// waitIO implements SYSCALL 5: compute the device semaphore index and P
// on it, having already counted this process as soft-blocked.
func (n *Nucleus) waitIO(saved *hardware.ProcessorState, line, dev int, transmit bool) {
	sem := n.DeviceSemAddr(line, dev, transmit)
	n.softBlockCount++
	n.sysPasseren(saved, sem)
}

// sysGetCPUTime implements SYSCALL 6.
func (n *Nucleus) sysGetCPUTime() uint32 {
	p := n.current
	total := p.CPUTime + (n.hw.Now() - p.StartTOD)
	return uint32(total)
}

// sysWaitClock implements SYSCALL 7.
func (n *Nucleus) sysWaitClock(saved *hardware.ProcessorState) {
	n.softBlockCount++
	n.sysPasseren(saved, n.PseudoClockSemAddr())
}

// sysGetSupportPTR implements SYSCALL 8.
func (n *Nucleus) sysGetSupportPTR() any {
	if n.current == nil {
		return nil
	}
	return n.current.Support
}
