// Package extractor runs the external extractpbo tool and turns its
// raw output into classified attempt outcomes.
//
// The Backend interface isolates process execution so tests can
// substitute fakes. ExtractPbo is the real backend: it builds the
// command line for each mode, captures stdout and stderr separately,
// and enforces the attempt deadline through the context. The
// Classifier encodes what the tool's output means, since extractpbo
// reports many failures through marker lines rather than its exit
// code. Invoker ties the two together and produces one Attempt per
// invocation.
package extractor
