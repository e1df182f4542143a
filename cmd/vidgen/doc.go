// Command vidgen runs the short-form video render worker and its operator
// utilities: the polling worker itself, single-job runs, configuration
// helpers, readiness status, the voice catalog, media probing and the local
// render history.
package main
