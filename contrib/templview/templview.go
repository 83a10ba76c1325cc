// Package templview renders antenna pages with templ components.
//
//	view := templview.New(func(data *antenna.ViewData) templ.Component {
//		return layout(templview.Head(data), templview.Body(data))
//	})
package templview

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"go.inout.gg/antenna"
)

var _ antenna.View = (*view)(nil)

type view struct {
	layout func(*antenna.ViewData) templ.Component
}

// New returns an antenna.View rendering the component returned by layout.
func New(layout func(*antenna.ViewData) templ.Component) antenna.View {
	return &view{layout}
}

func (v *view) RenderView(ctx context.Context, data *antenna.ViewData) (string, error) {
	var b strings.Builder
	if err := v.layout(data).Render(ctx, &b); err != nil {
		return "", fmt.Errorf("templview: failed to render layout: %w", err)
	}

	return b.String(), nil
}

// Head returns the SSR-generated head elements as a component.
func Head(data *antenna.ViewData) templ.Component { return templ.Raw(string(data.Head)) }

// Body returns the root element or SSR-rendered markup as a component.
func Body(data *antenna.ViewData) templ.Component { return templ.Raw(string(data.Body)) }
