// Package api provides generic HTTP server building blocks (health/info
// routes, gin middleware, address parsing helpers) shared by sentryrules'
// HTTP subservers, such as pkg/api/addrsetapi/server.
package api
