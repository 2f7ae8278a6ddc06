package nucleus

import (
	"errors"
	"time"
	"unsafe"

	"github.com/osnucleus/pandos/hardware"
	"github.com/osnucleus/pandos/internal/config"
	"go.uber.org/zap"
)

// DevPerInt is the number of device slots behind each non-terminal
// interrupt line, and half the slots behind the terminal line.
const DevPerInt = hardware.DevPerInt

// NSem is the size of the device-semaphore array: disk, flash, network,
// and printer (DevPerInt each), terminal receive and transmit (DevPerInt
// each), plus one trailing pseudo-clock slot.
const NSem = 4*DevPerInt + 2*DevPerInt + 1

// pseudoClockIdx is the device-semaphore array's trailing slot.
const pseudoClockIdx = NSem - 1

// ErrPoolExhausted is returned by Boot and the CreateProcess syscall
// when the PCB pool has no free slots. sysCreateProcess also returns it
// for a staging handle that StageCreateProcess never issued.
var ErrPoolExhausted = errors.New("nucleus: pcb pool exhausted")

// Nucleus is the kernel: the process/semaphore pools plus the five
// nucleus-wide globals, wrapped in one value instead of package-level
// state, since nothing about a single-CPU, interrupt-disabled-on-entry
// kernel requires synchronization across them.
type Nucleus struct {
	hw  hardware.Hardware
	cfg config.Config
	log *zap.SugaredLogger

	pool *pcbPool
	asl  *ASL

	processCount   int
	softBlockCount int
	ready          Queue
	current        *PCB

	deviceSem [NSem]int32

	// userSem backs process-allocated (non-device) semaphores. The
	// nucleus does not model general memory access, so rather than treat
	// a1 as a raw memory address for syscalls 3/4, it indexes this pool
	// directly; see UserSem and DESIGN.md.
	userSem [MaxUserSem]int32

	pendingCreate    map[uint32]createArgs
	nextCreateHandle uint32

	// lastSupportPTR mirrors the result of the last GetSupportPTR
	// syscall. The register ABI's v0 can only carry a presence flag
	// (support structures are arbitrary Go values, not addresses), so
	// callers that need the actual value read it from here.
	lastSupportPTR any
}

// LastSupportPTR returns the value most recently returned by a
// GetSupportPTR syscall dispatched through the register ABI.
func (n *Nucleus) LastSupportPTR() any { return n.lastSupportPTR }

// MaxUserSem bounds the process-allocatable semaphore pool. One per
// process is already generous for the demo scenarios this repo ships.
const MaxUserSem = MaxProc

// UserSem returns the identity of the i'th process-allocatable
// semaphore word, zero-indexed.
func (n *Nucleus) UserSem(i int) SemAddr { return &n.userSem[i] }

type createArgs struct {
	initial hardware.ProcessorState
	support Support
}

// StageCreateProcess records the arguments for a pending CreateProcess
// syscall and returns a single-use handle to place in a1, standing in
// for the statep/supportp memory addresses the original ABI carries
// (see the userSem comment above for why: no generic memory model).
func (n *Nucleus) StageCreateProcess(initial hardware.ProcessorState, support Support) uint32 {
	if n.pendingCreate == nil {
		n.pendingCreate = make(map[uint32]createArgs)
	}
	n.nextCreateHandle++
	h := n.nextCreateHandle
	n.pendingCreate[h] = createArgs{initial: initial, support: support}
	return h
}

func (n *Nucleus) takeStagedCreate(handle uint32) (createArgs, bool) {
	args, ok := n.pendingCreate[handle]
	if ok {
		delete(n.pendingCreate, handle)
	}
	return args, ok
}

// isDeviceSem reports whether sem is a slot in the device-semaphore
// array (as opposed to a process-allocated semaphore). Go disallows
// ordering comparisons on pointers, so membership is tested via the
// pointer's numeric value, exactly as semKey orders the ASL.
func (n *Nucleus) isDeviceSem(sem SemAddr) bool {
	base := uintptr(unsafe.Pointer(&n.deviceSem[0]))
	end := base + uintptr(len(n.deviceSem))*unsafe.Sizeof(n.deviceSem[0])
	addr := uintptr(unsafe.Pointer(sem))
	return addr >= base && addr < end
}

// New constructs a Nucleus over hw and installs the exception vector.
// It performs no scheduling; call Boot to create the first process and
// enter the scheduler.
func New(hw hardware.Hardware, cfg config.Config, log *zap.SugaredLogger) *Nucleus {
	n := &Nucleus{
		hw:   hw,
		cfg:  cfg,
		log:  log,
		pool: newPCBPool(),
		asl:  newASL(),
	}
	hw.InstallVector(n.HandleException)
	hw.ArmIntervalTimer(uint64(cfg.IntervalTimer.Nanoseconds()))
	return n
}

// Quantum returns the configured CPU slice armed on every dispatch.
func (n *Nucleus) Quantum() time.Duration { return n.cfg.Quantum }

// IntervalTimerPeriod returns the configured pseudo-clock broadcast period.
func (n *Nucleus) IntervalTimerPeriod() time.Duration { return n.cfg.IntervalTimer }

// ProcessCount returns the number of live (non-free) PCBs.
func (n *Nucleus) ProcessCount() int { return n.processCount }

// SoftBlockCount returns the number of PCBs blocked on a device or
// pseudo-clock semaphore.
func (n *Nucleus) SoftBlockCount() int { return n.softBlockCount }

// Current returns the currently running PCB, or nil if the nucleus is
// between dispatches.
func (n *Nucleus) Current() *PCB { return n.current }

// Processes returns every live PCB, for introspection (nucleusctl dump).
// Not used on the scheduling hot path.
func (n *Nucleus) Processes() []*PCB { return n.pool.snapshot() }

// PID returns p's stable slot index into the PCB pool, used purely as a
// human-readable identifier for introspection; nothing in the
// scheduling logic addresses a process by this number.
func (n *Nucleus) PID(p *PCB) int {
	base := uintptr(unsafe.Pointer(&n.pool.slots[0]))
	addr := uintptr(unsafe.Pointer(p))
	return int((addr - base) / unsafe.Sizeof(n.pool.slots[0]))
}

// Semaphores returns a snapshot of every active semaphore descriptor,
// for introspection (nucleusctl dump).
func (n *Nucleus) Semaphores() []SemSnapshot { return n.asl.Snapshot() }

// ProcessStatus classifies p for introspection: every live PCB is
// either the currently running process, blocked on some semaphore, or
// ready to run — no other state is possible.
func (n *Nucleus) ProcessStatus(p *PCB) string {
	switch {
	case p == n.current:
		return "RUNNING"
	case p.SemAdd != nil:
		return "BLOCKED"
	default:
		return "READY"
	}
}

// DeviceSemAddr returns the identity of the semaphore backing interrupt
// line, device index dev, and — for line == hardware.LineTerminal —
// selects transmit (r=true) or receive (r=false).
func (n *Nucleus) DeviceSemAddr(line, dev int, transmit bool) SemAddr {
	return &n.deviceSem[deviceSemIndex(line, dev, transmit)]
}

// PseudoClockSemAddr returns the identity of the pseudo-clock semaphore.
func (n *Nucleus) PseudoClockSemAddr() SemAddr {
	return &n.deviceSem[pseudoClockIdx]
}

func deviceSemIndex(line, dev int, transmit bool) int {
	if line == hardware.LineTerminal {
		r := 0
		if transmit {
			r = 1
		}
		return 4*DevPerInt + dev*2 + r
	}
	return (line-hardware.LineDisk)*DevPerInt + dev
}

// Boot allocates the first PCB with the given initial state and support
// structure, enqueues it ready, and enters the scheduler. Boot never
// returns in the conceptual machine: by the time this call returns in
// Go, it has handed control to hw (LoadState/Halt/Panic/WaitForInterrupt)
// and the caller must not run any further nucleus-affecting code.
func (n *Nucleus) Boot(initial hardware.ProcessorState, support any) error {
	p := n.pool.allocate()
	if p == nil {
		return ErrPoolExhausted
	}
	p.State = initial
	p.Support = support
	n.processCount++
	n.ready.InsertTail(p)
	n.Schedule()
	return nil
}
