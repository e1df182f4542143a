// Package stage defines the handler contract shared by pipeline stages and
// the health record they report.
package stage
