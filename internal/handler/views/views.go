// Package views holds the templ components for the HTML pages and the
// static assets they load.
package views

import (
	"context"
	"embed"
	"io/fs"

	"github.com/a-h/templ"

	appI18n "github.com/orgpulse/pulse/internal/i18n"
	"github.com/orgpulse/pulse/internal/model"
)

//go:embed static
var static embed.FS

// selections lists the judgment choices in display order.
var selections = []model.Selection{model.SelectionOriginal, model.SelectionAdvanced}

func t(ctx context.Context, id string) string { return appI18n.T(ctx, id) }

func tp(ctx context.Context, id string, n int) string { return appI18n.Tp(ctx, id, n) }

func td(ctx context.Context, id string, data map[string]any) string {
	return appI18n.Td(ctx, id, data)
}

// path prefixes p with the deployment's base path.
func path(ctx context.Context, p string) templ.SafeURL {
	return templ.SafeURL(model.BasePathFromContext(ctx) + p)
}

func asset(ctx context.Context, name string) templ.SafeURL {
	return path(ctx, "/static/"+name)
}

// Assets returns the stylesheet and page scripts, served under /static/.
func Assets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
