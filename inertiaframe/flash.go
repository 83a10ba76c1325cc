package inertiaframe

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
	"go.inout.gg/foundations/http/httpcookie"
)

type flashCtx struct{}

var kFlashCtx = flashCtx{} //nolint:gochecknoglobals

const (
	FlashCookieName = "_inertiaframe"
	FlashCookiePath = "/"
)

// flash stores data carried over to the next request: validation errors
// and the last visited path for redirect-back.
//
// It is stored in a cookie and errors are cleared once read.
type flash struct {
	Errors   map[string]string `msgpack:"errors,omitempty"`
	ErrorBag string            `msgpack:"error_bag,omitempty"`
	Path     string            `msgpack:"path,omitempty"`
}

// flashFromRequest retrieves the flash from the request. If the cookie
// does not exist, an empty flash is returned.
func flashFromRequest(r *http.Request) (*flash, error) {
	f, ok := r.Context().Value(kFlashCtx).(*flash)
	if ok && f != nil {
		return f, nil
	}

	f = &flash{} //nolint:exhaustruct

	if val := httpcookie.Get(r, FlashCookieName); val != "" {
		b, err := base64.RawURLEncoding.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("inertiaframe: failed to decode flash cookie: %w", err)
		}

		if err := msgpack.Unmarshal(b, f); err != nil {
			return nil, fmt.Errorf("inertiaframe: failed to decode flash: %w", err)
		}
	}

	// Keep the flash for the rest of the request.
	*r = *r.WithContext(context.WithValue(r.Context(), kFlashCtx, f))

	return f, nil
}

// takeErrors returns the flashed validation errors and their error bag,
// clearing both.
func (f *flash) takeErrors() (map[string]string, string) {
	errs, bag := f.Errors, f.ErrorBag
	f.Errors, f.ErrorBag = nil, ""

	return errs, bag
}

// Referer returns the last visited path.
func (f *flash) Referer() string { return f.Path }

// Clear deletes the flash cookie from the client.
func (f *flash) Clear(w http.ResponseWriter, r *http.Request) {
	httpcookie.Delete(w, r, FlashCookieName)
}

// Save persists the flash to a cookie sent to the client.
func (f *flash) Save(w http.ResponseWriter) error {
	b, err := msgpack.Marshal(f)
	if err != nil {
		return fmt.Errorf("inertiaframe: failed to encode flash: %w", err)
	}

	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     FlashCookiePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}
