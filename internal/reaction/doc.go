// Package reaction runs a macro's reaction script against device lines that
// arrive shortly after the macro is invoked.
//
// Arming a listener records the current end of the log. For the next
// two seconds every new device line is passed to the script as its only
// argument. Lines echoed by the terminal itself and system notices are not
// reactions and are skipped. Script failures are reported and never stop
// the listener.
package reaction
