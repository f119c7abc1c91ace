// Package trace is the process-wide diagnostic trace sink.
//
// A Sink owns three pieces of shared state: an opaque Mode, an optional
// destination and a fixed-size line buffer. One mutex guards all of them and
// the whole emission path, so any number of goroutines may call Emit while
// another goroutine reconfigures the destination.
//
// Line Format
//
//	[prefix]: [module]: formatted message\n
//
// Either bracket segment is omitted when empty. With the CRLF line ending a
// carriage return precedes the newline.
//
// Truncation
//
// Every line is built in a buffer of LineMax bytes (8192, or 4096 with the
// "small" build tag). The last byte is reserved as terminator, so no emitted
// line is longer than LineMax-1 bytes. Output that does not fit is dropped
// silently; once the buffer is exhausted the newline is dropped too.
//
// Destinations
//
// A destination is either owned or borrowed:
//
//	trace.SetDestinationPath("/tmp/app.trace", true) // owned: closed on replace/Exit
//	trace.SetDestination(conn)                     // borrowed: never closed
//
// Without a destination lines go to the print collaborator (stdout unless
// WithPrinter says otherwise).
//
// Basic Usage
//
//	if err := trace.Init(); err != nil {
//		return err
//	}
//	defer trace.Exit()
//
//	trace.Emit("demo", "net", "connected to %s", addr)
//
// Tests and embedders that want isolation construct their own instance with
// New instead of using the package-level default.
package trace
