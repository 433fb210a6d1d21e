// Package pbo is the high-level interface for working with PBO
// archives through the external extractpbo tool.
//
// API exposes the three operations: listing an archive's contents in
// standard or brief form, and extracting files into a caller-chosen
// directory. Extraction always runs the tool against a private
// workspace first; results only reach the output directory through an
// all-or-nothing commit that filters, validates, and optionally
// renames derived .bin files back to their source names. Failed or
// interrupted attempts therefore never leave partial output behind.
package pbo
