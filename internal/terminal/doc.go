// Package terminal is the transport-agnostic engine behind the devterm UI.
//
// # Components
//
//   - LogStore: append-only scrollback shared between the receive task and
//     the render loop, guarded by a RWMutex.
//   - Assembler and Receiver: the receive task. Receiver polls a Transport,
//     Assembler turns its chunks into lines.
//   - Decode: splits an entry into styled spans from inline SGR directives.
//   - History and Palette: the command palette state, owned by the render
//     loop.
//   - Engine: framing, sending, echo entries and macro expansion.
//
// # Ownership
//
// LogStore is the only structure touched by more than one goroutine. History,
// Palette and Engine are used from the render loop only (the session start
// command is sent before the loop starts), so they carry no locks.
package terminal
