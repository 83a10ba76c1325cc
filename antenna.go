// Package antenna implements the server side of the Inertia.js protocol.
//
// A Renderer holds process-wide configuration (asset version, root view,
// HTML view and an optional SSR client). The middleware created by
// NewMiddleware attaches a per-request Session to every request, lets the
// handler render a page, and then negotiates the final response: version
// mismatches, empty responses and 302 redirects after PUT, PATCH and DELETE
// requests are corrected as the protocol requires.
//
// Props are plain values, callables, lazy values (see Lazy), asynchronous
// values (see Async) or nested Props, resolved depth first when the page is
// rendered.
//
// For detailed protocol documentation, visit https://inertiajs.com/the-protocol
package antenna

import "go.inout.gg/foundations/debug"

//nolint:gochecknoglobals
var d = debug.Debuglog("antenna")
