package nucleus

import "testing"

func TestPCBPoolAllocateFree(t *testing.T) {
	p := newPCBPool()

	var got []*PCB
	for i := 0; i < MaxProc; i++ {
		pcb := p.allocate()
		if pcb == nil {
			t.Fatalf("allocate() returned nil at i=%d, want a PCB", i)
		}
		got = append(got, pcb)
	}

	if extra := p.allocate(); extra != nil {
		t.Fatalf("allocate() on an exhausted pool = %v, want nil", extra)
	}

	p.release(got[0])
	if pcb := p.allocate(); pcb != got[0] {
		t.Fatalf("allocate() after release = %p, want the released PCB %p", pcb, got[0])
	}
}

func TestPCBAllocateZeroesFields(t *testing.T) {
	p := newPCBPool()
	pcb := p.allocate()
	pcb.CPUTime = 42
	pcb.SemAdd = new(int32)
	p.release(pcb)

	fresh := p.allocate()
	if fresh != pcb {
		t.Fatalf("allocate() after release = %p, want %p", fresh, pcb)
	}
	if fresh.CPUTime != 0 || fresh.SemAdd != nil {
		t.Fatalf("allocate() did not zero fields: %+v", fresh)
	}
}

func TestPCBPoolCount(t *testing.T) {
	p := newPCBPool()
	if got := p.count(); got != 0 {
		t.Fatalf("count() on a fresh pool = %d, want 0", got)
	}
	a := p.allocate()
	b := p.allocate()
	if got := p.count(); got != 2 {
		t.Fatalf("count() after two allocations = %d, want 2", got)
	}
	p.release(a)
	if got := p.count(); got != 1 {
		t.Fatalf("count() after one release = %d, want 1", got)
	}
	_ = b
}
