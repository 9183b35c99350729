package server

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"dict": func(page, item any) map[string]any {
		return map[string]any{"Page": page, "Item": item}
	},
}

// Templates parses the embedded browser pages.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}
