package nucleus

import (
	"testing"

	"github.com/osnucleus/pandos/hardware"
	"github.com/osnucleus/pandos/hardware/harness"
	"github.com/osnucleus/pandos/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNucleus(t *testing.T) (*Nucleus, *harness.Harness) {
	t.Helper()
	hw := harness.New()
	n := New(hw, config.Default(), zap.NewNop().Sugar())
	return n, hw
}

func TestScheduleHaltsWhenNoProcessesRemain(t *testing.T) {
	n, hw := newTestNucleus(t)
	n.Schedule()
	require.True(t, hw.Halted(), "Schedule must halt when processCount == 0")
}

func TestScheduleDeadlocksWhenNothingIsRunnable(t *testing.T) {
	n, hw := newTestNucleus(t)
	require.NoError(t, n.Boot(hardware.ProcessorState{}, nil))

	// Block the sole process on a user semaphore nobody will ever V.
	hw.Syscall(SysPasseren, 0, 0, 0)

	panicked, reason := hw.Panicked()
	require.True(t, panicked, "scheduler must panic: processes exist but none are runnable or soft-blocked")
	require.NotEmpty(t, reason)
}

func TestScheduleIdlesWhenOnlySoftBlocked(t *testing.T) {
	n, hw := newTestNucleus(t)
	require.NoError(t, n.Boot(hardware.ProcessorState{}, nil))

	hw.Syscall(SysWaitClock, 0, 0, 0)

	require.False(t, hw.Halted())
	panicked, _ := hw.Panicked()
	require.False(t, panicked, "a soft-blocked process must idle, not deadlock")
	require.Equal(t, 1, n.SoftBlockCount())
}

func TestScheduleDispatchesReadyProcess(t *testing.T) {
	n, hw := newTestNucleus(t)
	require.NoError(t, n.Boot(hardware.ProcessorState{}, nil))
	require.NotNil(t, n.Current())
	require.Equal(t, uint64(0), n.Current().StartTOD)
	_ = hw
}
