package nucleus

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/osnucleus/pandos/hardware"
)

// pcbSerializeVersion is incremented whenever the binary layout changes.
const pcbSerializeVersion = 1

// processorStateSize is the encoded size of a hardware.ProcessorState:
// 29 general registers plus PC, Status, Cause, EntryHI, SP, T9, all
// 32-bit words.
const processorStateSize = (29 + 6) * 4

// pcbSerializeSize is the number of bytes produced by PCB.Serialize.
// Support is opaque Go state and is never included.
const pcbSerializeSize = 1 + processorStateSize + 8 + 8

// SerializeSize returns the number of bytes needed for Serialize.
func (p *PCB) SerializeSize() int { return pcbSerializeSize }

// Serialize writes p's register file, accumulated CPU time, and last
// dispatch timestamp into buf, which must be at least SerializeSize()
// bytes. Queue and tree links and the support structure are
// runtime-local and are not included.
func (p *PCB) Serialize(buf []byte) error {
	if len(buf) < pcbSerializeSize {
		return errors.New("nucleus: serialize buffer too small")
	}

	buf[0] = pcbSerializeVersion
	be := binary.BigEndian
	off := 1

	off = putProcessorState(buf, off, &p.State)

	be.PutUint64(buf[off:], p.CPUTime)
	off += 8
	be.PutUint64(buf[off:], p.StartTOD)
	off += 8

	return nil
}

// Deserialize restores p's register file and accounting fields from buf,
// which must be at least SerializeSize() bytes produced by Serialize.
// Queue and tree links and the support structure are left unchanged.
func (p *PCB) Deserialize(buf []byte) error {
	if len(buf) < pcbSerializeSize {
		return errors.New("nucleus: deserialize buffer too small")
	}
	if buf[0] != pcbSerializeVersion {
		return errors.New("nucleus: unsupported serialize version")
	}

	be := binary.BigEndian
	off := 1

	off = getProcessorState(buf, off, &p.State)

	p.CPUTime = be.Uint64(buf[off:])
	off += 8
	p.StartTOD = be.Uint64(buf[off:])
	off += 8

	return nil
}

func putProcessorState(buf []byte, off int, ps *hardware.ProcessorState) int {
	be := binary.BigEndian
	for i := range ps.Reg {
		be.PutUint32(buf[off:], ps.Reg[i])
		off += 4
	}
	be.PutUint32(buf[off:], ps.PC)
	off += 4
	be.PutUint32(buf[off:], ps.Status)
	off += 4
	be.PutUint32(buf[off:], ps.Cause)
	off += 4
	be.PutUint32(buf[off:], ps.EntryHI)
	off += 4
	be.PutUint32(buf[off:], ps.SP)
	off += 4
	be.PutUint32(buf[off:], ps.T9)
	off += 4
	return off
}

func getProcessorState(buf []byte, off int, ps *hardware.ProcessorState) int {
	be := binary.BigEndian
	for i := range ps.Reg {
		ps.Reg[i] = be.Uint32(buf[off:])
		off += 4
	}
	ps.PC = be.Uint32(buf[off:])
	off += 4
	ps.Status = be.Uint32(buf[off:])
	off += 4
	ps.Cause = be.Uint32(buf[off:])
	off += 4
	ps.EntryHI = be.Uint32(buf[off:])
	off += 4
	ps.SP = be.Uint32(buf[off:])
	off += 4
	ps.T9 = be.Uint32(buf[off:])
	off += 4
	return off
}

// dumpMagic/dumpVersion tag a whole-nucleus dump file (nucleusctl run
// --dump-file, nucleusctl dump), as distinct from a single PCB buffer.
const (
	dumpMagic   uint32 = 0x4e55434c // "NUCL"
	dumpVersion uint32 = 1
)

// ProcessRecord is one live process's point-in-time state, as captured by
// Nucleus.Dump and rendered by nucleusctl dump.
type ProcessRecord struct {
	PID    int
	Status string
	PCB    PCB
}

// Dump captures every live PCB with its PID and status, for WriteDump to
// serialize (the process/soft-block counters are not included): a point-in-time snapshot usable for
// post-mortem debugging of deadlocks.
func (n *Nucleus) Dump() []ProcessRecord {
	procs := n.Processes()
	out := make([]ProcessRecord, 0, len(procs))
	for _, p := range procs {
		out = append(out, ProcessRecord{PID: n.PID(p), Status: n.ProcessStatus(p), PCB: *p})
	}
	return out
}

// statusByte/statusFromByte round-trip ProcessRecord.Status through the
// fixed single-byte encoding WriteDump/ReadDump use.
func statusByte(status string) byte {
	switch status {
	case "RUNNING":
		return 1
	case "BLOCKED":
		return 2
	default:
		return 0 // READY
	}
}

func statusFromByte(b byte) string {
	switch b {
	case 1:
		return "RUNNING"
	case 2:
		return "BLOCKED"
	default:
		return "READY"
	}
}

// WriteDump writes records in the teacher's big-endian, fixed-width
// style (serialize.go's PCB.Serialize convention) extended with a magic
// header and a PID/status prefix per record: magic, version, count, then
// per record PID (uint32), status (1 byte), and the record's PCB bytes.
func WriteDump(w io.Writer, records []ProcessRecord) error {
	header := make([]byte, 12)
	binary.BigEndian.PutUint32(header[0:], dumpMagic)
	binary.BigEndian.PutUint32(header[4:], dumpVersion)
	binary.BigEndian.PutUint32(header[8:], uint32(len(records)))
	if _, err := w.Write(header); err != nil {
		return err
	}

	buf := make([]byte, 5+pcbSerializeSize)
	for _, rec := range records {
		binary.BigEndian.PutUint32(buf[0:], uint32(rec.PID))
		buf[4] = statusByte(rec.Status)
		pcb := rec.PCB
		if err := pcb.Serialize(buf[5:]); err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadDump is WriteDump's inverse.
func ReadDump(r io.Reader) ([]ProcessRecord, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if binary.BigEndian.Uint32(header[0:]) != dumpMagic {
		return nil, errors.New("nucleus: not a nucleus dump file")
	}
	if binary.BigEndian.Uint32(header[4:]) != dumpVersion {
		return nil, errors.New("nucleus: unsupported dump version")
	}
	count := binary.BigEndian.Uint32(header[8:])

	buf := make([]byte, 5+pcbSerializeSize)
	records := make([]ProcessRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		rec := ProcessRecord{
			PID:    int(binary.BigEndian.Uint32(buf[0:])),
			Status: statusFromByte(buf[4]),
		}
		if err := rec.PCB.Deserialize(buf[5:]); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
