// Package cache keeps an offline copy of the last catalogue the browser
// fetched, so it can show something while the server is slow or down.
package cache
