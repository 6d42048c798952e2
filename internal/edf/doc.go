// Package edf reads European Data Format (EDF and EDF+) recordings.
//
// Only the header is needed for the catalogue:
//   - Recording ID, start date and start time
//   - Subject ID, from which the patient name is derived
//   - Signal labels and transducer types
//   - Number of data records and record duration
//
// Data records are read for EDF+ files that carry an "EDF Annotations"
// signal, to count annotations, and for files whose record count is still
// -1. Files that cannot be parsed produce an invalid Record rather than an
// error so one damaged file never hides the rest of a directory.
package edf
