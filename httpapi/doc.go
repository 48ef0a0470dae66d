// Package httpapi exposes stream bridges over HTTP: a small gin surface
// where POST /streams starts a producer-backed stream and
// GET /streams/:id/events drains it to the connected client as
// Server-Sent Events. It is the outermost layer — everything it does
// goes through the sse hub and the published bridge contracts.
package httpapi
