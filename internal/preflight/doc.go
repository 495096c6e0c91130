// Package preflight provides readiness checks for the filesystem paths and
// services a run depends on.
//
// These checks run in two contexts:
//   - The pipeline runner calls CheckDirectoryAccess on the output directory
//     before it takes the run lock.
//   - The CLI "deps" command calls RunAll to display overall readiness,
//     including sidecar reachability when a sidecar backend is configured.
package preflight
