package web

import (
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func utoa(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func esc(value string) string {
	return templ.EscapeString(value)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02 15:04:05")
}

// sortURL links a results column header. Clicking the active column flips
// the direction; any other column starts ascending.
func sortURL(field, currentField, currentDirection string) string {
	direction := "asc"
	if field == currentField && currentDirection == "asc" {
		direction = "desc"
	}
	query := url.Values{}
	query.Set("sort_by", field)
	query.Set("direction", direction)
	return "/view_results?" + query.Encode()
}

func sortMarker(field, currentField, currentDirection string) string {
	if field != currentField {
		return ""
	}
	if currentDirection == "asc" {
		return " ▲"
	}
	return " ▼"
}
