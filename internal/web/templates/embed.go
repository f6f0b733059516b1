// Package templates embeds the server-rendered HTML views.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Parse returns every view, addressable by its {{define}} name.
func Parse() (*template.Template, error) {
	return template.ParseFS(files, "*.html")
}
