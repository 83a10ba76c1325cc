package inertiaheader

const (
	HeaderXInertia                 = "X-Inertia"                   // client/server
	HeaderXInertiaVersion          = "X-Inertia-Version"           // client
	HeaderXInertiaLocation         = "X-Inertia-Location"          // server, redirect URL
	HeaderXInertiaPartialData      = "X-Inertia-Partial-Data"      // client, whitelist
	HeaderXInertiaPartialComponent = "X-Inertia-Partial-Component" // client
	HeaderXInertiaErrorBag         = "X-Inertia-Error-Bag"         // client

	HeaderVary        = "Vary"
	HeaderContentType = "Content-Type"
	HeaderLocation    = "Location"
	HeaderReferer     = "Referer"
)

const (
	ContentTypeHTML = "text/html; charset=UTF-8"
	ContentTypeJSON = "application/json; charset=UTF-8"
)
