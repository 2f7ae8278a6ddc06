package nucleus

import (
	"testing"

	"github.com/osnucleus/pandos/hardware"
	"github.com/stretchr/testify/require"
)

func TestPassUpOrDieTerminatesWithoutSupport(t *testing.T) {
	n, hw := newTestNucleus(t)
	require.NoError(t, n.Boot(hardware.ProcessorState{}, nil))

	ps := hw.CurrentState()
	ps.Cause = uint32(hardware.ExcBreak) << 2
	n.HandleException(&ps)

	require.Equal(t, 0, n.ProcessCount())
	require.True(t, hw.Halted())
}

func TestPassUpOrDieEscalatesToSupport(t *testing.T) {
	n, hw := newTestNucleus(t)
	sup := &fakeSupport{ctx: map[Kind][3]uint32{
		KindGeneral: {0x8000, 0x1, 0x4000},
	}}
	require.NoError(t, n.Boot(hardware.ProcessorState{}, sup))

	ps := hw.CurrentState()
	ps.Cause = uint32(hardware.ExcBreak) << 2
	ps.PC = 0x1234
	n.HandleException(&ps)

	require.Equal(t, 1, n.ProcessCount(), "an escalated process must not be terminated")
	saved, ok := sup.saved[KindGeneral]
	require.True(t, ok, "the faulting state must be handed to the support level")
	require.Equal(t, uint32(0x1234), saved.PC)
}

func TestPassUpOrDieTLBEscalatesAsPageFault(t *testing.T) {
	n, hw := newTestNucleus(t)
	sup := &fakeSupport{ctx: map[Kind][3]uint32{
		KindPageFault: {0x9000, 0x1, 0x5000},
	}}
	require.NoError(t, n.Boot(hardware.ProcessorState{}, sup))

	ps := hw.CurrentState()
	ps.Cause = uint32(hardware.ExcTLBLoad) << 2
	n.HandleException(&ps)

	_, ok := sup.saved[KindPageFault]
	require.True(t, ok, "TLB exceptions must escalate with kind PageFault")
}

func TestUserModePrivilegedSyscallEscalates(t *testing.T) {
	n, hw := newTestNucleus(t)
	sup := &fakeSupport{ctx: map[Kind][3]uint32{KindGeneral: {0, 0, 0}}}
	require.NoError(t, n.Boot(hardware.ProcessorState{}, sup))

	ps := hw.CurrentState()
	ps.Cause = uint32(hardware.ExcSyscall) << 2
	ps.Status |= hardware.StatusKUc
	ps.Reg[hardware.RegA0] = SysGetCPUTime
	n.HandleException(&ps)

	_, ok := sup.saved[KindGeneral]
	require.True(t, ok, "a user-mode attempt at a privileged syscall must escalate as General")
}

func TestIllegalSyscallNumberEscalates(t *testing.T) {
	n, hw := newTestNucleus(t)
	sup := &fakeSupport{ctx: map[Kind][3]uint32{KindGeneral: {0, 0, 0}}}
	require.NoError(t, n.Boot(hardware.ProcessorState{}, sup))

	ps := hw.CurrentState()
	ps.Cause = uint32(hardware.ExcSyscall) << 2
	ps.Reg[hardware.RegA0] = 99
	n.HandleException(&ps)

	_, ok := sup.saved[KindGeneral]
	require.True(t, ok, "syscall numbers >= 9 must escalate as General")
}
