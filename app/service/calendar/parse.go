package calendar

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const defaultPlaceholder = "TBC"

// denoisePatterns are applied in order before JSON decoding. The model is
// prompted to emit bare JSON but tends to wrap it in markdown; code fences
// must go before inline code spans so stray backtick pairs do not swallow
// the payload.
var denoisePatterns = []*regexp.Regexp{
	regexp.MustCompile("```"),
	regexp.MustCompile(`\*\*`),
	regexp.MustCompile("~"),
	regexp.MustCompile(`\(.*?\)`),
	regexp.MustCompile("`.*?`"),
	regexp.MustCompile("_"),
	regexp.MustCompile(`\n`),
	regexp.MustCompile("JSON|json"),
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseEvent extracts a calendar event from raw model output. Anything that
// prevents a complete event, noise that is not JSON, a missing title, an
// empty dates list, fails the whole extraction.
func ParseEvent(raw string) (*ExtractedEvent, error) {
	cleaned := raw
	for _, pattern := range denoisePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	var payload rawEvent
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	event := &ExtractedEvent{
		Title:       payload.Title,
		Description: defaultPlaceholder,
		Location:    defaultPlaceholder,
		Dates:       payload.Dates,
	}

	if payload.Description != nil {
		event.Description = *payload.Description
	}
	if len(payload.Locations) > 0 {
		event.Location = payload.Locations[0]
	}

	return event, nil
}
