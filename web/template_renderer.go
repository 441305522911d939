package web

import (
	"html/template"
	"net/http"

	"github.com/RezaEskandarii/lrrctl/types"
)

const layout = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>lrrctl</title></head>
<body>{{template "content" .}}</body></html>`

var pages = map[string]string{
	"login": `{{define "content"}}<form method="post" action="/login">
<input name="username" placeholder="username"> <input name="password" type="password" placeholder="password">
<button type="submit">Login</button></form>{{end}}`,

	"toasts": `{{define "content"}}<h1>Toasts</h1><ul>
{{range .Items}}<li class="{{IconClass .Icon}}"><strong>{{.Heading}}</strong> {{.Body}}
<form method="post" action="/toasts/dismiss"><input type="hidden" name="id" value="{{.ID}}"><button>Dismiss</button></form></li>
{{else}}<li>No toasts.</li>{{end}}</ul>
{{if .HasPreviousPage}}<a href="?page={{dec .Page}}">previous</a>{{end}}
{{if .HasNextPage}}<a href="?page={{inc .Page}}">next</a>{{end}}{{end}}`,
}

var funcMap = template.FuncMap{
	"IconClass": IconClass,
	"inc":       func(i int) int { return i + 1 },
	"dec":       func(i int) int { return i - 1 },
}

func render(w http.ResponseWriter, name string, data any) {
	tmpl := template.Must(template.New("layout").Funcs(funcMap).Parse(layout))
	tmpl = template.Must(tmpl.Parse(pages[name]))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// IconClass maps a toast icon to its CSS class.
func IconClass(icon types.Icon) string {
	switch icon {
	case types.IconSuccess:
		return "toast bg-success"
	case types.IconError:
		return "toast bg-danger"
	case types.IconWarning:
		return "toast bg-warning"
	case types.IconInfo:
		return "toast bg-info"
	default:
		return "toast bg-light text-dark"
	}
}
