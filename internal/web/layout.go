package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f4ef;color:#1a1a1a}
main{max-width:860px;margin:0 auto;padding:32px 20px}
nav a{margin-right:16px}
.flash{padding:10px 14px;border-radius:6px;margin:16px 0}
.flash.error{background:#ffe3e3;color:#8a1c1c}
.flash.success{background:#e3fae3;color:#1c5e1c}
.code{font-size:2.4rem;letter-spacing:.15em;font-weight:700}
form.inline{display:inline}
table{width:100%;border-collapse:collapse}
th,td{text-align:left;padding:6px 8px;border-bottom:1px solid #ddd}
img.target{max-width:100%;border-radius:8px}`

func page(title string, flash Flash, body func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>`)
		b.WriteString(esc(title))
		b.WriteString(` · Remote Viewing</title>
    <style>`)
		b.WriteString(styles)
		b.WriteString(`</style>
  </head>
  <body>
    <main>
      <nav><a href="/">New session</a><a href="/view_results">Results</a></nav>
`)
		if flash.Message != "" {
			kind := flash.Kind
			if kind == "" {
				kind = "error"
			}
			b.WriteString(`      <div class="flash `)
			b.WriteString(esc(kind))
			b.WriteString(`">`)
			b.WriteString(esc(flash.Message))
			b.WriteString("</div>\n")
		}
		body(&b)
		b.WriteString(`
    </main>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func ratingOptions(b *strings.Builder, selected int) {
	for value := 1; value <= 5; value++ {
		b.WriteString(`<option value="`)
		b.WriteString(itoa(value))
		b.WriteString(`"`)
		if value == selected {
			b.WriteString(` selected`)
		}
		b.WriteString(`>`)
		b.WriteString(itoa(value))
		b.WriteString(`</option>`)
	}
}
