package inertiaredirect

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusFound},
		{http.MethodPost, http.StatusSeeOther},
		{http.MethodPut, http.StatusSeeOther},
		{http.MethodPatch, http.StatusSeeOther},
		{http.MethodDelete, http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(tt.method, "/from", nil)
			w := httptest.NewRecorder()

			Redirect(w, r, "/to")

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "/to", w.Header().Get("Location"))
		})
	}
}
