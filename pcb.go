package nucleus

import "github.com/osnucleus/pandos/hardware"

// MaxProc is the fixed capacity of the PCB pool.
const MaxProc = 20

// SemAddr is the identity of a semaphore: the address of its counter
// word. Using the counter's own pointer keeps identity free (no separate
// handle table to keep in sync) while staying memory-safe, since Go
// tracks the pointer's validity for us.
type SemAddr = *int32

// PCB is a process control block.
type PCB struct {
	// State is the saved register file. A single hw.LoadState(&p.State)
	// resumes the process exactly where it left off.
	State hardware.ProcessorState

	CPUTime  uint64 // p_time: nanoseconds charged to this process
	StartTOD uint64 // p_startTOD: TOD clock value at the last dispatch

	SemAdd SemAddr // p_semAdd: semaphore this PCB is blocked on, or nil

	Support any // p_supportStruct: opaque, consumed only by Pass-Up-or-Die

	// Queue links: membership in at most one circular doubly-linked list
	// (the ready queue or a single semaphore's wait queue) at a time.
	next, prev *PCB

	// Tree links: parent and first-child pointers, plus a doubly-linked
	// sibling list.
	parent, child, sibLeft, sibRight *PCB
}

// Parent returns p's parent PCB, or nil at the root of a tree.
func (p *PCB) Parent() *PCB { return p.parent }

// Child returns p's first child, or nil if p has none.
func (p *PCB) Child() *PCB { return p.child }

// pcbPool is the fixed-capacity PCB allocator. allocate
// and free are both O(1); the pool never grows past MaxProc, and
// exhaustion is a recoverable condition signaled by a nil return, never
// a panic.
type pcbPool struct {
	slots [MaxProc]PCB
	free  *PCB // free list head, linked through p.next
}

func newPCBPool() *pcbPool {
	p := &pcbPool{}
	p.initPool()
	return p
}

// initPool links every slot into the free list. Called once, at
// construction.
func (p *pcbPool) initPool() {
	p.free = nil
	for i := range p.slots {
		p.release(&p.slots[i])
	}
}

// allocate returns a zeroed PCB from the free list, or nil if the pool
// is exhausted.
func (p *pcbPool) allocate() *PCB {
	if p.free == nil {
		return nil
	}
	pcb := p.free
	p.free = pcb.next
	*pcb = PCB{}
	return pcb
}

// release returns pcb to the free list head. pcb must not be referenced
// by the caller afterward: it may be handed back out by the very next
// allocate call.
func (p *pcbPool) release(pcb *PCB) {
	*pcb = PCB{}
	pcb.next = p.free
	p.free = pcb
}

// count returns the number of PCBs currently off the free list. Used
// only for invariant-checking in tests; processCount is tracked
// incrementally by the nucleus in the hot path.
func (p *pcbPool) count() int {
	return len(p.snapshot())
}

// snapshot returns every PCB currently off the free list, in slot order.
// Used by Nucleus.Processes for introspection (nucleusctl dump); never
// called from the scheduling hot path.
func (p *pcbPool) snapshot() []*PCB {
	onFree := make(map[*PCB]bool, MaxProc)
	for f := p.free; f != nil; f = f.next {
		onFree[f] = true
	}
	var live []*PCB
	for i := range p.slots {
		if !onFree[&p.slots[i]] {
			live = append(live, &p.slots[i])
		}
	}
	return live
}
