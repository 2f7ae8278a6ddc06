package nucleus

import "unsafe"

// aslPoolSize is the fixed capacity of the semaphore-descriptor pool:
// at least MaxProc, since no more than MaxProc processes can ever be
// simultaneously blocked.
const aslPoolSize = MaxProc

// semKey converts a SemAddr into an order key. Go deliberately does not
// allow ordering comparisons (<, >) on pointer types, so the ASL's
// "sorted by semaphore address" invariant is implemented by comparing
// the pointer's numeric value instead. This is used only to order
// entries; the uintptr is never dereferenced or retained past the
// comparison, so it does not defeat the garbage collector.
func semKey(sem SemAddr) uintptr {
	return uintptr(unsafe.Pointer(sem))
}

// semDescriptor is one ASL node: a semaphore address, its wait queue,
// and the successor link for the sorted list. While on the free list,
// next is reused as the free-list link.
type semDescriptor struct {
	addr  SemAddr
	key   uintptr
	queue Queue
	next  *semDescriptor
}

// ASL is the Active Semaphore List: a singly-linked list sorted strictly
// ascending by semaphore address, bracketed by two sentinel nodes so
// insertion never special-cases an empty list or a head insertion.
type ASL struct {
	slots [aslPoolSize]semDescriptor
	free  *semDescriptor

	head *semDescriptor // sentinel, key 0
	tail *semDescriptor // sentinel, key = max uintptr
}

func newASL() *ASL {
	a := &ASL{}
	a.head = &semDescriptor{key: 0}
	a.tail = &semDescriptor{key: ^uintptr(0)}
	a.head.next = a.tail
	for i := range a.slots {
		a.release(&a.slots[i])
	}
	return a
}

func (a *ASL) release(d *semDescriptor) {
	d.addr = nil
	d.queue = Queue{}
	d.next = a.free
	a.free = d
}

// find walks the sorted list and returns the node immediately before
// the target key, plus the node at key itself (nil if absent).
func (a *ASL) find(key uintptr) (prev, cur *semDescriptor) {
	prev, cur = a.head, a.head.next
	for cur.key < key {
		prev, cur = cur, cur.next
	}
	if cur.key == key {
		return prev, cur
	}
	return prev, nil
}

// InsertBlocked locates the descriptor for sem (allocating one from the
// free pool if absent) and enqueues p on its wait queue. Returns true if
// the descriptor pool was exhausted, meaning p could not be blocked; the
// caller must not modify p's state on a true return.
func (a *ASL) InsertBlocked(sem SemAddr, p *PCB) bool {
	key := semKey(sem)
	prev, cur := a.find(key)
	if cur == nil {
		if a.free == nil {
			return true
		}
		d := a.free
		a.free = d.next
		d.addr = sem
		d.key = key
		d.queue = Queue{}

		next := prev.next
		d.next = next
		prev.next = d
		cur = d
	}
	cur.queue.InsertTail(p)
	p.SemAdd = sem
	return false
}

// RemoveBlocked dequeues and returns the head of sem's wait queue, or
// nil if sem has no descriptor (nothing is blocked on it). Clears the
// returned PCB's SemAdd. Frees the descriptor if the queue empties.
func (a *ASL) RemoveBlocked(sem SemAddr) *PCB {
	key := semKey(sem)
	prev, cur := a.find(key)
	if cur == nil {
		return nil
	}
	p := cur.queue.RemoveHead()
	if p == nil {
		return nil
	}
	p.SemAdd = nil
	if cur.queue.IsEmpty() {
		prev.next = cur.next
		a.release(cur)
	}
	return p
}

// OutBlocked removes p from the wait queue of p.SemAdd, returning p, or
// nil if p is not blocked on any semaphore or not actually present on
// its queue. Unlike RemoveBlocked, it does not clear p.SemAdd: callers
// (process termination) rely on it still pointing at the semaphore the
// process was blocked on.
func (a *ASL) OutBlocked(p *PCB) *PCB {
	if p == nil || p.SemAdd == nil {
		return nil
	}
	prev, cur := a.find(semKey(p.SemAdd))
	if cur == nil {
		return nil
	}
	removed := cur.queue.RemoveSpecific(p)
	if removed == nil {
		return nil
	}
	if cur.queue.IsEmpty() {
		prev.next = cur.next
		a.release(cur)
	}
	return removed
}

// HeadBlocked returns the head of sem's wait queue without removing it,
// or nil if sem has no descriptor.
func (a *ASL) HeadBlocked(sem SemAddr) *PCB {
	_, cur := a.find(semKey(sem))
	if cur == nil {
		return nil
	}
	return cur.queue.PeekHead()
}

// SemSnapshot summarizes one active semaphore descriptor for
// introspection (nucleusctl dump); never consulted by the scheduling
// hot path.
type SemSnapshot struct {
	Addr    SemAddr
	Waiting int
}

// Snapshot returns one SemSnapshot per descriptor currently linked into
// the sorted list, in ascending address order.
func (a *ASL) Snapshot() []SemSnapshot {
	var out []SemSnapshot
	for cur := a.head.next; cur != a.tail; cur = cur.next {
		out = append(out, SemSnapshot{Addr: cur.addr, Waiting: queueLen(&cur.queue)})
	}
	return out
}

// queueLen counts a Queue's members by walking the circular list once.
func queueLen(q *Queue) int {
	if q.tail == nil {
		return 0
	}
	n := 1
	for cur := q.tail.next; cur != q.tail; cur = cur.next {
		n++
	}
	return n
}
