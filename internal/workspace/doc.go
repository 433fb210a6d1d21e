// Package workspace manages the temporary directories that extraction
// attempts run in.
//
// Each attempt gets a private directory under a shared base (by
// default pbo-tools under the system temp dir) named with a random
// suffix so concurrent operations never collide. Directories are
// tracked while in use; SweepStale removes leftovers from crashed or
// interrupted runs once they age past a threshold without ever
// touching directories that are still active.
package workspace
