// Package rpclog configures the process-wide go-logging backend shared
// by every package in this module (each of which holds its own
// logging.MustGetLogger(name)). A host binary — cmd/rpcdump, or a future
// transport built on this core — calls Setup once at startup; library
// packages never call it themselves.
package rpclog

import (
	"log/syslog"
	stdlog "log"
	"os"

	"github.com/op/go-logging"
)

var syslogFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.6s} ▶ %{message}`,
)
var stderrFormat = logging.MustStringFormatter(
	`%{color}%{module} ▶ %{message}%{color:reset}`,
)

// Setup installs a leveled stderr backend for prefix, honoring an
// RPC_LOG_LEVEL environment override over defaultLevel.
func Setup(prefix string, defaultLevel logging.Level) {
	setup(prefix, defaultLevel, false)
}

// SetupWithSyslog is Setup but attempts a syslog backend first, falling
// back to stderr if syslog is unavailable.
func SetupWithSyslog(prefix string, defaultLevel logging.Level) {
	setup(prefix, defaultLevel, true)
}

func setup(prefix string, defaultLevel logging.Level, trySyslog bool) {
	var backend logging.Backend
	if trySyslog {
		var err error
		backend, err = logging.NewSyslogBackendPriority(prefix, syslog.LOG_NOTICE)
		if err == nil {
			logging.SetFormatter(syslogFormat)
			if syslogBackend, ok := backend.(*logging.SyslogBackend); ok {
				stdlog.SetOutput(syslogBackend.Writer)
			}
		} else {
			backend = nil
		}
	}
	if backend == nil {
		backend = logging.NewLogBackend(os.Stderr, prefix, 0)
		logging.SetFormatter(stderrFormat)
	}
	leveled := logging.AddModuleLevel(backend)
	switch os.Getenv("RPC_LOG_LEVEL") {
	case "CRITICAL":
		leveled.SetLevel(logging.CRITICAL, prefix)
	case "ERROR":
		leveled.SetLevel(logging.ERROR, prefix)
	case "WARNING":
		leveled.SetLevel(logging.WARNING, prefix)
	case "NOTICE":
		leveled.SetLevel(logging.NOTICE, prefix)
	case "INFO":
		leveled.SetLevel(logging.INFO, prefix)
	case "DEBUG":
		leveled.SetLevel(logging.DEBUG, prefix)
	default:
		leveled.SetLevel(defaultLevel, prefix)
	}
	logging.SetBackend(leveled)
}
