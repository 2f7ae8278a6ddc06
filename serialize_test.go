package nucleus

import (
	"bytes"
	"testing"

	"github.com/osnucleus/pandos/hardware"
)

func TestPCBSerializeSize(t *testing.T) {
	var p PCB
	if got := p.SerializeSize(); got != pcbSerializeSize {
		t.Fatalf("SerializeSize() = %d, want %d", got, pcbSerializeSize)
	}
}

func TestPCBSerializeRoundTrip(t *testing.T) {
	var p PCB
	for i := range p.State.Reg {
		p.State.Reg[i] = uint32(0x100 + i)
	}
	p.State.PC = 0x4000
	p.State.Status = 0x2700
	p.State.Cause = 0x0020
	p.State.EntryHI = 0x8000
	p.State.SP = 0x7FFFF000
	p.State.T9 = 0x4010
	p.CPUTime = 123456789
	p.StartTOD = 987654321

	buf := make([]byte, p.SerializeSize())
	if err := p.Serialize(buf); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var p2 PCB
	if err := p2.Deserialize(buf); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	if p2.State != p.State {
		t.Errorf("State = %+v, want %+v", p2.State, p.State)
	}
	if p2.CPUTime != p.CPUTime {
		t.Errorf("CPUTime = %d, want %d", p2.CPUTime, p.CPUTime)
	}
	if p2.StartTOD != p.StartTOD {
		t.Errorf("StartTOD = %d, want %d", p2.StartTOD, p.StartTOD)
	}
}

func TestPCBSerializeBufferTooSmall(t *testing.T) {
	var p PCB
	buf := make([]byte, p.SerializeSize()-1)
	if err := p.Serialize(buf); err == nil {
		t.Fatal("Serialize should fail on a too-small buffer")
	}
	if err := p.Deserialize(buf); err == nil {
		t.Fatal("Deserialize should fail on a too-small buffer")
	}
}

func TestPCBDeserializeRejectsWrongVersion(t *testing.T) {
	buf := make([]byte, pcbSerializeSize)
	buf[0] = pcbSerializeVersion + 1
	var p PCB
	if err := p.Deserialize(buf); err == nil {
		t.Fatal("Deserialize should reject an unrecognized version byte")
	}
}

func TestWriteReadDumpRoundTrip(t *testing.T) {
	records := []ProcessRecord{
		{PID: 0, Status: "RUNNING", PCB: PCB{CPUTime: 10, State: hardware.ProcessorState{PC: 0x100}}},
		{PID: 1, Status: "BLOCKED", PCB: PCB{CPUTime: 20, State: hardware.ProcessorState{PC: 0x200}}},
	}

	var buf bytes.Buffer
	if err := WriteDump(&buf, records); err != nil {
		t.Fatalf("WriteDump failed: %v", err)
	}

	got, err := ReadDump(&buf)
	if err != nil {
		t.Fatalf("ReadDump failed: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("ReadDump returned %d records, want %d", len(got), len(records))
	}
	for i, rec := range records {
		if got[i].PID != rec.PID || got[i].Status != rec.Status || got[i].PCB.CPUTime != rec.PCB.CPUTime {
			t.Errorf("record %d = %+v, want %+v", i, got[i], rec)
		}
	}
}

func TestReadDumpRejectsBadMagic(t *testing.T) {
	if _, err := ReadDump(bytes.NewReader(make([]byte, 12))); err == nil {
		t.Fatal("ReadDump should reject a buffer without the dump magic header")
	}
}
