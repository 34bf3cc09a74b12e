package render

import (
	"fmt"
	"html/template"
	"io"
)

// Style values are built by style() from resolved tokens and sanitized colors, so they are
// marked safe for the style attribute.
var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"css": func(s string) template.CSS { return template.CSS(s) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Header.Title}}{{.Header.Title}}{{else}}2Share{{end}}</title>
</head>
<body class="layout-{{.Name}}" data-layout="{{.Layout}}" style="margin:0;min-height:100vh;font-family:{{css .Style.Font}};background:{{css .Style.Background}}">
{{- if .Style.Pattern}}
<div class="pattern pattern-{{.Style.Pattern}}"></div>
{{- end}}
<main style="max-width:480px;margin:0 auto;padding:32px 16px;text-align:{{.Header.Align}}">
{{- if .Header.Banner}}
<div class="banner" style="height:120px;border-radius:16px;background:{{css .Style.Background}}"></div>
{{- end}}
<header class="avatar-{{.Header.AvatarShape}}">
{{- if .Header.Avatar}}
<img class="avatar" src="{{.Header.Avatar}}" alt="{{.Header.Title}}">
{{- end}}
<h1 style="color:{{css .Style.TitleColor}}">{{.Header.Title}}</h1>
{{- if .Header.Bio}}
<p class="bio" style="color:{{css .Style.TextColor}}">{{.Header.Bio}}</p>
{{- end}}
</header>
<nav class="links links-{{.Links.Arrangement}}" style="display:grid;grid-template-columns:repeat({{.Links.Columns}}, 1fr);gap:12px">
{{- range .Links.Items}}
<a class="link" id="link-{{.ID}}" href="{{.URL}}" data-icon="{{.Icon}}" rel="noopener" style="display:block;padding:14px;text-decoration:none;background:{{css $.Style.ButtonBackground}};border:{{css $.Style.ButtonBorder}};color:{{css $.Style.ButtonText}};border-radius:{{css $.Style.ButtonRadius}}">{{.Label}}</a>
{{- end}}
</nav>
</main>
</body>
</html>
`))

// WriteHTML renders c as a standalone page.
func WriteHTML(w io.Writer, c Composition) error {
	if err := pageTemplate.Execute(w, c); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
