package templates

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"
)

//go:embed *.html
var files embed.FS

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return "$" + d.StringFixed(2)
	},
	"amount": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
}

// New parses the embedded page templates.
func New() (*template.Template, error) {
	return template.New("orderbook").Funcs(funcs).ParseFS(files, "*.html")
}
