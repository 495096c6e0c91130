// Package staging reclaims scratch directories that engines create next to
// the intermediate audio. A crashed or killed run leaves them behind; the
// pipeline sweeps them while holding the output directory lock.
package staging
