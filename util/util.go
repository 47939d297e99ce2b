package util

import "log"

// Logging turns on Logf, which the commands set from their -v flags.
var Logging = false

// Logf calls log.Printf when Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}

// Warnf always logs, with a "warning" prefix.
func Warnf(format string, args ...interface{}) {
	log.Printf("warning: "+format, args...)
}
