package main

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"go.inout.gg/antenna"
	"go.inout.gg/antenna/inertiaframe"
)

func homeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := antenna.FromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page := sess.Render("Home", antenna.Props{
		"greeting": "Hello from antenna",
		"now":      func() any { return time.Now().UTC().Format(time.RFC3339) },
		// Only sent when a partial reload asks for it.
		"stats": antenna.LazyValue(func(context.Context) (any, error) {
			return map[string]any{"visits": 42, "pages": 3}, nil
		}),
		"quote": antenna.Async(ctx, func(context.Context) (any, error) {
			return "Simplicity is prerequisite for reliability.", nil
		}),
	}).WithViewData("title", "Home")

	if err := page.Send(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type contactPage struct {
	Subjects []string `inertia:"subjects"`
}

func (*contactPage) Component() string { return "Contact" }

type contactPageEndpoint struct{}

func (*contactPageEndpoint) Meta() *inertiaframe.Meta {
	return &inertiaframe.Meta{Method: http.MethodGet, Path: "/contact"}
}

func (*contactPageEndpoint) Execute(context.Context, *inertiaframe.Request[struct{}]) (*inertiaframe.Response, error) {
	return inertiaframe.NewResponse(&contactPage{Subjects: []string{"support", "sales"}}).
		WithViewData("title", "Contact"), nil
}

type contactMessage struct {
	Name    string `json:"name"    form:"name"`
	Email   string `json:"email"   form:"email"`
	Message string `json:"message" form:"message"`
}

type submitContactEndpoint struct{}

func (*submitContactEndpoint) Meta() *inertiaframe.Meta {
	return &inertiaframe.Meta{Method: http.MethodPost, Path: "/contact"}
}

func (*submitContactEndpoint) Execute(
	context.Context,
	*inertiaframe.Request[contactMessage],
) (*inertiaframe.Response, error) {
	return inertiaframe.NewRedirectResponse("/"), nil
}

func validateContact(v any) error {
	msg, ok := v.(*contactMessage)
	if !ok {
		return nil
	}

	errs := inertiaframe.MapError{}

	if strings.TrimSpace(msg.Name) == "" {
		errs["name"] = "The name field is required."
	}

	if _, err := mail.ParseAddress(msg.Email); err != nil {
		errs["email"] = "The email must be a valid email address."
	}

	if strings.TrimSpace(msg.Message) == "" {
		errs["message"] = "The message field is required."
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
