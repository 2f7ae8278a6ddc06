// Package hardware defines the boundary between the nucleus and the
// bare-metal collaborators the nucleus depends on but does not implement:
// the BIOS data page, device registers, the processor-local and interval
// timers, and the non-returning state/context load primitives.
//
// The nucleus package only ever talks to the Hardware interface. The
// harness sub-package provides the one concrete implementation used by
// tests and the nucleusctl demo driver; a real deployment would instead
// wire the nucleus to an actual MIPS-like simulator.
package hardware

import "fmt"

// ExcCode is the exception code field of a saved Cause register.
type ExcCode uint32

const (
	ExcInterrupt  ExcCode = 0
	ExcTLBMod     ExcCode = 1
	ExcTLBLoad    ExcCode = 2
	ExcTLBStore   ExcCode = 3
	ExcAddrErrLd  ExcCode = 4
	ExcAddrErrSv  ExcCode = 5
	ExcBusErrIF   ExcCode = 6
	ExcBusErrData ExcCode = 7
	ExcSyscall    ExcCode = 8
	ExcBreak      ExcCode = 9
	ExcReserved   ExcCode = 10
	ExcCoprocUn   ExcCode = 11
	ExcOverflow   ExcCode = 12
)

// Cause returns the exception code carried in bits 2-6 of the Cause word,
// matching the MIPS-like Cause register layout.
func Cause(causeWord uint32) ExcCode {
	return ExcCode((causeWord >> 2) & 0x1F)
}

// Interrupt line numbers. Lower numbers are higher priority.
const (
	LinePLT      = 1 // processor local timer: quantum expiry
	LineInterval = 2 // interval timer: pseudo-clock broadcast
	LineDisk     = 3
	LineFlash    = 4
	LineNetwork  = 5
	LinePrinter  = 6
	LineTerminal = 7
)

// DevPerInt is the number of device slots behind each interrupt line.
const DevPerInt = 8

// ProcessorState is the saved register file. Its layout must match the
// machine's exception-save layout bit for bit so that LoadState is a
// single hardware instruction: general registers, program counter,
// status and cause words, entry-high (for the faulting TLB entry), the
// stack pointer, and the t9 link register used by position-independent
// calls into the support level.
type ProcessorState struct {
	Reg      [29]uint32 // general-purpose registers (excludes SP, RA/t9 below)
	PC       uint32
	Status   uint32
	Cause    uint32
	EntryHI  uint32
	SP       uint32
	T9       uint32
}

// Snapshot returns a copy, so callers can stash a ProcessorState into a
// PCB without aliasing the BIOS data page.
func (ps ProcessorState) Snapshot() ProcessorState { return ps }

func (ps ProcessorState) String() string {
	return fmt.Sprintf("pc=%08x status=%08x cause=%08x sp=%08x", ps.PC, ps.Status, ps.Cause, ps.SP)
}

// Register indices into Reg for the MIPS-like calling convention the
// SYSCALL ABI uses: the syscall number arrives in a0, its arguments in
// a1-a3, and nucleus services return their result in v0.
const (
	RegV0 = 1
	RegA0 = 3
	RegA1 = 4
	RegA2 = 5
	RegA3 = 6
)

func (ps *ProcessorState) A0() uint32 { return ps.Reg[RegA0] }
func (ps *ProcessorState) A1() uint32 { return ps.Reg[RegA1] }
func (ps *ProcessorState) A2() uint32 { return ps.Reg[RegA2] }
func (ps *ProcessorState) A3() uint32 { return ps.Reg[RegA3] }

// SetV0 stores a nucleus service's result register.
func (ps *ProcessorState) SetV0(v uint32) { ps.Reg[RegV0] = v }

// Status register bits the nucleus reads or sets directly.
const (
	StatusIEc       uint32 = 1 << 0 // interrupts enabled, current
	StatusKUc       uint32 = 1 << 1 // user mode, current (0 = kernel)
	StatusIEp       uint32 = 1 << 2 // interrupts enabled, previous
	StatusKUp       uint32 = 1 << 3 // user mode, previous
	StatusIntMaskLo        = 8      // low bit of the 8-bit interrupt mask field
)

// ExceptionHandler is the single entry point the hardware calls into on
// every exception or interrupt, with the BIOS data page already latched
// into saved.
type ExceptionHandler func(saved *ProcessorState)

// Hardware is everything the nucleus depends on but does not implement:
// the BIOS data page, device registers, timers, TLB refill, and the
// HALT/PANIC/WAIT primitives. The nucleus is built entirely against this
// interface.
type Hardware interface {
	// InstallVector registers the nucleus's single exception/interrupt
	// entry point. Installed once, at nucleus initialization.
	InstallVector(handler ExceptionHandler)

	// Now returns the time-of-day clock, in nanoseconds.
	Now() uint64

	// ArmPLT (re)loads the processor local timer with the given duration.
	ArmPLT(ns uint64)

	// ArmIntervalTimer (re)loads the interval timer.
	ArmIntervalTimer(ns uint64)

	// LoadState hands control to the process described by ps. In the
	// conceptual machine this never returns to its caller: the next time
	// the nucleus runs at all is a fresh call into the installed
	// ExceptionHandler. Callers must treat a call to LoadState as the
	// last statement they execute.
	LoadState(ps *ProcessorState)

	// LoadContext is LoadState's counterpart for the Pass-Up-or-Die
	// support-level continuation: it does not restore a full saved
	// state, only the three registers the support level's context
	// record carries (stack pointer, status, program counter). Also
	// never returns to its caller.
	LoadContext(stackPtr, status, pc uint32)

	// Halt stops the machine. Normal shutdown; never returns.
	Halt()

	// Panic stops the machine reporting an unrecoverable kernel error
	// (e.g. deadlock). Never returns.
	Panic(reason string)

	// WaitForInterrupt executes the idle/wait instruction. Returns once
	// some interrupt becomes pending; the scheduler loop is responsible
	// for arming the status word beforehand.
	WaitForInterrupt()

	// PendingLines returns the IP field of the Cause register: one bit
	// per interrupt line (0 = none pending, lowest set bit = highest
	// priority pending line).
	PendingLines() uint8

	// PendingDevices returns the interrupting-devices bitmap for line.
	PendingDevices(line int) uint8

	// DeviceStatus reads and latches the status register for the given
	// device, without acknowledging the interrupt. transmit selects
	// which half of a terminal device to read; non-terminal lines
	// ignore it.
	DeviceStatus(line, dev int, transmit bool) uint32

	// AckDevice writes ACK to the device's command register, clearing
	// the interrupt. For terminal devices the caller must specify which
	// half (transmit or receive) to acknowledge.
	AckDevice(line, dev int, transmit bool)
}

// DeviceReady is the status-register value a device reports when it is
// not interrupting. The terminal transmit-before-receive check compares
// the transmit half's status against this.
const DeviceReady uint32 = 1
