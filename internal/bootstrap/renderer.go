package bootstrap

import (
	"github.com/unrolled/render"

	"github.com/robgibbons/express-unchained/models"
)

// InitRenderer builds the template engine from configuration. Rendering is
// delegated to unrolled/render; this only wires directories, layout and
// extensions.
func InitRenderer(cfg models.RenderConfig) *render.Render {
	directory := cfg.Directory
	if directory == "" {
		directory = "templates"
	}

	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = []string{".tmpl", ".html"}
	}

	return render.New(render.Options{
		Directory:     directory,
		Layout:        cfg.Layout,
		Extensions:    extensions,
		IsDevelopment: cfg.Development,
	})
}
