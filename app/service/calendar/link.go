package calendar

import "net/url"

const renderBaseURL = "https://www.google.com/calendar/render?action=TEMPLATE"

// BuildLink renders a shareable Google Calendar deep link. The dates token is
// passed through unescaped since it is already in the raw query syntax the
// calendar expects; the trailing flag makes LINE open the link in an external
// browser.
func BuildLink(title, dates, location, description string) string {
	return renderBaseURL +
		"&text=" + url.QueryEscape(title) +
		"&dates=" + dates +
		"&location=" + url.QueryEscape(location) +
		"&details=" + url.QueryEscape(description) +
		"&openExternalBrowser=1"
}
