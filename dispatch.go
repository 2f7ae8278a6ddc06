package nucleus

import "github.com/osnucleus/pandos/hardware"

// HandleException is the single vector the nucleus installs at
// initialization. The hardware calls it with the exception-saved state
// already latched into saved (the "BIOS data page"). It decodes the
// Cause register's exception code and routes to the interrupt handler,
// a TLB/program-trap escalation, or the SYSCALL layer.
func (n *Nucleus) HandleException(saved *hardware.ProcessorState) {
	switch hardware.Cause(saved.Cause) {
	case hardware.ExcInterrupt:
		n.handleInterrupt(saved)
	case hardware.ExcTLBMod, hardware.ExcTLBLoad, hardware.ExcTLBStore:
		n.passUpOrDie(saved, KindPageFault)
	case hardware.ExcSyscall:
		n.handleSyscall(saved)
	case hardware.ExcAddrErrLd, hardware.ExcAddrErrSv, hardware.ExcBusErrIF,
		hardware.ExcBusErrData, hardware.ExcBreak, hardware.ExcReserved,
		hardware.ExcCoprocUn, hardware.ExcOverflow:
		n.passUpOrDie(saved, KindGeneral)
	default:
		n.log.Warnw("undefined exception code", "cause", saved.Cause)
		n.terminateCurrent()
		n.Schedule()
	}
}
