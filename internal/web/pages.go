package web

import (
	"strings"

	"github.com/a-h/templ"
)

func Home(flash Flash, name string) templ.Component {
	return page("Start", flash, func(b *strings.Builder) {
		b.WriteString(`      <h1>Remote Viewing</h1>
      <p>Enter your name to receive a target code. An image is hidden behind it; describe what you perceive, then reveal it.</p>
      <form method="post" action="/start_session">
        <input name="name" placeholder="Your name" autocomplete="name" value="`)
		b.WriteString(esc(name))
		b.WriteString(`" required/>
        <button type="submit">Start session</button>
      </form>`)
	})
}

func SessionStarted(flash Flash, name, code string) templ.Component {
	return page("Target "+code, flash, func(b *strings.Builder) {
		b.WriteString(`      <h1>Your target</h1>
      <p class="code">`)
		b.WriteString(esc(code))
		b.WriteString(`</p>
      <form method="post" action="/submit_guess">
        <input type="hidden" name="name" value="`)
		b.WriteString(esc(name))
		b.WriteString(`"/>
        <textarea name="guess" rows="6" cols="60" placeholder="Describe what you perceive"></textarea>
        <p><button type="submit">Submit guess</button></p>
      </form>`)
	})
}

func Reveal(data RevealPage) templ.Component {
	return page("Reveal", data.Flash, func(b *strings.Builder) {
		b.WriteString(`      <h1>Target `)
		b.WriteString(esc(data.UniqueIdentifier))
		b.WriteString(`</h1>
      <img class="target" src="`)
		b.WriteString(esc(data.ImageURL))
		b.WriteString(`" alt="Target image"/>
      <h2>Your guess</h2>
      <p>`)
		if data.Guess == "" {
			b.WriteString(`<em>No guess submitted.</em>`)
		} else {
			b.WriteString(esc(data.Guess))
		}
		b.WriteString(`</p>
      <form method="post" action="/rate_image">
        <label>How close were you? <select name="rating">`)
		ratingOptions(b, data.Rating)
		b.WriteString(`</select></label>
        <button type="submit">Rate</button>
      </form>`)
	})
}

var resultColumns = []struct {
	Field string
	Label string
}{
	{"name", "Name"},
	{"unique_identifier", "Code"},
	{"user_guess", "Guess"},
	{"rating", "Rating"},
	{"created_date", "Created"},
}

func Results(data ResultsPage) templ.Component {
	return page("Results", data.Flash, func(b *strings.Builder) {
		b.WriteString("      <h1>Results</h1>\n      <table>\n        <thead><tr>")
		for _, column := range resultColumns {
			b.WriteString(`<th><a href="`)
			b.WriteString(esc(sortURL(column.Field, data.SortBy, data.Direction)))
			b.WriteString(`">`)
			b.WriteString(esc(column.Label))
			b.WriteString(sortMarker(column.Field, data.SortBy, data.Direction))
			b.WriteString(`</a></th>`)
		}
		b.WriteString("<th></th></tr></thead>\n        <tbody>\n")
		if len(data.Rows) == 0 {
			b.WriteString(`          <tr><td colspan="6">No sessions yet.</td></tr>` + "\n")
		}
		for _, row := range data.Rows {
			b.WriteString(`          <tr><td>`)
			b.WriteString(esc(row.Name))
			b.WriteString(`</td><td><a href="/view_image/`)
			b.WriteString(utoa(row.ID))
			b.WriteString(`">`)
			b.WriteString(esc(row.UniqueIdentifier))
			b.WriteString(`</a></td><td>`)
			b.WriteString(esc(row.Guess))
			b.WriteString(`</td><td>`)
			if row.Rating > 0 {
				b.WriteString(itoa(row.Rating))
			} else {
				b.WriteString("-")
			}
			b.WriteString(`</td><td>`)
			b.WriteString(esc(formatTime(row.CreatedDate)))
			b.WriteString(`</td><td><form class="inline" method="post" action="/update_rating/`)
			b.WriteString(utoa(row.ID))
			b.WriteString(`"><select name="rating">`)
			ratingOptions(b, row.Rating)
			b.WriteString(`</select><button type="submit">Update</button></form></td></tr>` + "\n")
		}
		b.WriteString("        </tbody>\n      </table>")
	})
}

func ViewImage(data ImagePage) templ.Component {
	return page("Target "+data.Row.UniqueIdentifier, data.Flash, func(b *strings.Builder) {
		b.WriteString(`      <h1>Target `)
		b.WriteString(esc(data.Row.UniqueIdentifier))
		b.WriteString(`</h1>
      <p>`)
		b.WriteString(esc(data.Row.Name))
		b.WriteString(` · `)
		b.WriteString(esc(formatTime(data.Row.CreatedDate)))
		b.WriteString(`</p>
      <img class="target" src="`)
		b.WriteString(esc(data.Image))
		b.WriteString(`" alt="Target image"/>
      <h2>Guess</h2>
      <p>`)
		b.WriteString(esc(data.Row.Guess))
		b.WriteString(`</p>
      <form method="post" action="/update_rating/`)
		b.WriteString(utoa(data.Row.ID))
		b.WriteString(`">
        <label>Rating <select name="rating">`)
		ratingOptions(b, data.Row.Rating)
		b.WriteString(`</select></label>
        <button type="submit">Update rating</button>
      </form>`)
	})
}
