// Package gologger resolves the kernel's glog logging configuration and
// bridges it onto go-job so maintenance jobs log through the same stack.
package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// JobLogging bundles a resolved glog pair with its go-job equivalents.
type JobLogging struct {
	Provider    glog.LoggerProvider
	Logger      glog.Logger
	JobProvider job.LoggerProvider
	JobLogger   job.Logger
}

// ResolveForJob resolves the glog logger and provider, then wraps both for
// the go-job contracts. Nil inputs degrade to the nop logger rather than nil
// bridges, so job workers can always log.
func ResolveForJob(name string, provider glog.LoggerProvider, logger glog.Logger) JobLogging {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	bridged := JobLogging{
		Provider: resolvedProvider,
		Logger:   resolvedLogger,
	}
	if resolvedProvider != nil {
		bridged.JobProvider = job.GoLoggerProvider(resolvedProvider)
	}
	if resolvedLogger != nil {
		bridged.JobLogger = job.GoLogger(resolvedLogger)
	}
	return bridged
}
