// Package nucleus implements the kernel level 2/3 "nucleus" of a small
// educational operating system: process and semaphore abstractions,
// preemptive round-robin scheduling, and exception/interrupt dispatch
// (including the SYSCALL layer and Pass-Up-or-Die escalation) on top of
// a MIPS-like machine.
//
// The nucleus never talks to real hardware directly. It is built
// entirely against the github.com/osnucleus/pandos/hardware.Hardware
// interface, which stands in for the BIOS data page, device registers,
// timers, and the non-returning state/context-load primitives. A
// single call sequence drives everything: the hardware calls the
// installed ExceptionHandler on every exception or interrupt; handlers
// run to completion and end by calling Schedule, hw.LoadState,
// hw.LoadContext, hw.Halt, or hw.Panic — always as their last
// statement, since none of those calls return control to nucleus code
// in the conceptual machine. The one exception is a non-blocking
// SYSCALL, whose handler updates the saved state in place (advanced PC,
// result in v0) and simply returns: an implicit resume of the caller.
package nucleus
