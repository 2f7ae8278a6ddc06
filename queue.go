package nucleus

// Queue is a circular doubly-linked list identified by a tail pointer.
// An empty queue is represented by a nil tail; this keeps InsertTail and
// RemoveHead both O(1) without a sentinel node.
type Queue struct {
	tail *PCB
}

// IsEmpty reports whether the queue has no members.
func (q *Queue) IsEmpty() bool { return q.tail == nil }

// PeekHead returns the head of the queue without removing it, or nil if
// the queue is empty.
func (q *Queue) PeekHead() *PCB {
	if q.tail == nil {
		return nil
	}
	return q.tail.next
}

// InsertTail appends p to the queue.
func (q *Queue) InsertTail(p *PCB) {
	if q.tail == nil {
		p.next = p
		p.prev = p
	} else {
		head := q.tail.next
		p.prev = q.tail
		p.next = head
		head.prev = p
		q.tail.next = p
	}
	q.tail = p
}

// RemoveHead removes and returns the head of the queue, or nil if empty.
func (q *Queue) RemoveHead() *PCB {
	if q.tail == nil {
		return nil
	}
	return q.unlink(q.tail.next)
}

// RemoveSpecific removes p from the queue if present, returning p. If p
// is not a member, returns nil and leaves the queue untouched. O(n) in
// queue length.
func (q *Queue) RemoveSpecific(p *PCB) *PCB {
	if q.tail == nil || p == nil {
		return nil
	}
	cur := q.tail.next
	for {
		if cur == p {
			return q.unlink(p)
		}
		if cur == q.tail {
			return nil
		}
		cur = cur.next
	}
}

// unlink removes p from the circular list, fixing up the tail pointer,
// and clears p's queue links.
func (q *Queue) unlink(p *PCB) *PCB {
	if p.next == p {
		q.tail = nil
	} else {
		p.prev.next = p.next
		p.next.prev = p.prev
		if p == q.tail {
			q.tail = p.prev
		}
	}
	p.next, p.prev = nil, nil
	return p
}
