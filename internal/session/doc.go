// Package session runs one interactive devterm session: it opens the
// transport, starts the receive task, runs the screen until the operator
// quits, then stops and joins the receive task before closing the
// transport.
package session
