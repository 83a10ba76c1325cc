package inertiaredirect

import (
	"net/http"

	"go.inout.gg/foundations/debug"
)

//nolint:gochecknoglobals
var d = debug.Debuglog("antenna/redirect")

// Redirect redirects the client to the specified URL.
//
// GET requests are redirected with 302 Found, every other method with
// 303 See Other so that the client follows up with a GET.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	statusCode := http.StatusSeeOther
	if r.Method == http.MethodGet {
		statusCode = http.StatusFound
	}

	d("Redirecting to %s with status code %d", url, statusCode)

	http.Redirect(w, r, url, statusCode)
}
