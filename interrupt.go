package nucleus

import "github.com/osnucleus/pandos/hardware"

// handleInterrupt reads the Cause register's pending-lines bitmap, picks
// the lowest-numbered (highest-priority) pending line, and routes to the
// PLT, interval-timer, or device handler.
func (n *Nucleus) handleInterrupt(saved *hardware.ProcessorState) {
	line := lowestSetBit(n.hw.PendingLines())
	switch line {
	case hardware.LinePLT:
		n.handlePLT(saved)
	case hardware.LineInterval:
		n.handleIntervalTimer(saved)
	case hardware.LineDisk, hardware.LineFlash, hardware.LineNetwork,
		hardware.LinePrinter, hardware.LineTerminal:
		n.handleDeviceInterrupt(saved, line)
	default:
		n.resumeOrSchedule(saved)
	}
}

// lowestSetBit returns the index of the lowest set bit in bits, or 0 if
// bits is zero. Used both for interrupt-line priority and for
// lowest-set-bit device selection within a line.
func lowestSetBit(bits uint8) int {
	for i := 0; i < 8; i++ {
		if bits&(1<<uint(i)) != 0 {
			return i
		}
	}
	return 0
}

// handlePLT is the quantum-expiry handler: reload the timer, charge the
// running process for its elapsed quantum,
// move it to the back of the ready queue, and re-enter the scheduler.
// If the PLT expires while the nucleus is idling (current is nil) there
// is nothing to charge or requeue, so it only re-enters the scheduler.
func (n *Nucleus) handlePLT(saved *hardware.ProcessorState) {
	n.hw.ArmPLT(uint64(n.cfg.Quantum.Nanoseconds()))
	p := n.current
	if p == nil {
		n.Schedule()
		return
	}
	p.CPUTime += n.hw.Now() - p.StartTOD
	p.State = *saved
	n.current = nil
	n.ready.InsertTail(p)
	n.Schedule()
}

// handleIntervalTimer is the pseudo-clock broadcast: reload the interval
// timer, V-unblock every process waiting on the pseudo-clock semaphore,
// reset its counter to zero rather than letting it accumulate, and
// resume whatever was running (or enter the scheduler if nothing was).
func (n *Nucleus) handleIntervalTimer(saved *hardware.ProcessorState) {
	n.hw.ArmIntervalTimer(uint64(n.cfg.IntervalTimer.Nanoseconds()))
	sem := n.PseudoClockSemAddr()
	for {
		p := n.asl.RemoveBlocked(sem)
		if p == nil {
			break
		}
		n.softBlockCount--
		n.ready.InsertTail(p)
	}
	*sem = 0
	n.resumeOrSchedule(saved)
}

// handleDeviceInterrupt is the device-interrupt handler for lines 3-7:
// select the lowest-numbered interrupting device on the line, latch and
// ACK its status, and V the corresponding
// device semaphore with the status placed in the waiter's v0. Terminal
// devices ack transmit before receive: the transmit half is serviced
// first whenever it is the one reporting a non-ready (interrupting)
// status.
func (n *Nucleus) handleDeviceInterrupt(saved *hardware.ProcessorState, line int) {
	dev := lowestSetBit(n.hw.PendingDevices(line))

	transmit := false
	if line == hardware.LineTerminal {
		txStatus := n.hw.DeviceStatus(line, dev, true)
		if txStatus != hardware.DeviceReady {
			transmit = true
		}
	}

	status := n.hw.DeviceStatus(line, dev, transmit)
	n.hw.AckDevice(line, dev, transmit)

	sem := n.DeviceSemAddr(line, dev, transmit)
	*sem++
	if *sem <= 0 {
		p := n.asl.RemoveBlocked(sem)
		if p != nil {
			n.softBlockCount--
			p.State.SetV0(status)
			n.ready.InsertTail(p)
		}
	}

	n.resumeOrSchedule(saved)
}

// resumeOrSchedule resumes the process that was running when the
// interrupt arrived, or enters the scheduler if none was. saved is
// the exact state the hardware latched on entry; interrupts other than
// the PLT never disturb it, so it is loaded back verbatim rather than
// round-tripped through current's PCB.
func (n *Nucleus) resumeOrSchedule(saved *hardware.ProcessorState) {
	if n.current == nil {
		n.Schedule()
		return
	}
	n.hw.LoadState(saved)
}
