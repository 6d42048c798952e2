// Package handlers provides HTTP request handlers for the EDF viewer API.
//
// It includes handlers for:
//   - Listing the EDF catalogue in scan or recording date order
//   - Rescanning the source directory
//   - Health, readiness and version endpoints
//
// Errors are written as RFC 7807 problem details.
package handlers
