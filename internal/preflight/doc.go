// Package preflight provides readiness checks for the directories, disk
// space, and external tools an encode run depends on.
//
// The checks run in two contexts:
//   - The workflow runs RunAll before the first encode. A failure aborts
//     the batch up front instead of wasting hours on a doomed run.
//   - The CLI "spool config validate" command renders the individual
//     results so a misconfigured path or missing binary is visible.
package preflight
