// Package log is the operational logger of tracesink. It is a thin leveled
// layer over the trace sink, so the tool's own messages share the sink's
// destination, lock and line format with everything else being traced.
//
// Key Features
//
//   - Per service loggers via ForService(name)
//   - Every line is `[LEVEL]: [name]: message` (example: `[INFO]: [config]: reloaded`)
//   - Convenience level helpers: Infof, Warnf, Errorf, Debugf
//   - Debug logging can be enabled globally (SetGlobalDebug) or per service
//     (EnableDebugFor / DisableDebugFor)
//   - SetSink retargets every logger, existing ones included
//
// Basic Usage
//
//	import (
//		"github.com/rubiojr/tracesink/pkg/log"
//	)
//
//	func main() {
//		log.SetGlobalDebug(true)
//
//		cfg := log.ForService("config")
//		cfg.Infof("loaded %s", path)
//		cfg.Debugf("raw: %v", raw) // printed because global debug enabled
//	}
//
// Selective Debug
//
//	log.EnableDebugFor("api")
//	log.ForService("api").Debugf("visible")
//	log.ForService("config").Debugf("NOT visible")
//
// Thread Safety
//
// All exported functions are safe for concurrent use. Loggers keep no
// writer of their own; serialization happens in the sink.
//
// NOTE: The package name intentionally collides with stdlib "log". When
// importing both, alias one of them:
//
//	import (
//		stdlog "log"
//		tlog "github.com/rubiojr/tracesink/pkg/log"
//	)
package log
