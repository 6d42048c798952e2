// Package logging provides a simple leveled logging interface shared by the
// edf-viewer server and the edf-browser terminal client.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The server takes its level from the LOG_LEVEL (or DEBUG) environment
// variable. The browser sets it explicitly from its config file and
// redirects output to a log file with SetOutput.
package logging
