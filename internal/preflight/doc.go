// Package preflight provides readiness checks for the external services
// and filesystem paths the worker depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll once before entering the poll loop.
//     If any check fails the worker refuses to start instead of failing
//     every job it picks.
//   - The CLI "vidgen status" command renders the same results, plus the
//     binary availability from CheckSystemDeps, as a table.
//
// Optional features (storage, notifications) are only checked when enabled.
package preflight
