package calendar

import "errors"

var (
	// ErrMalformedExtraction means the model output could not be turned into
	// a complete event.
	ErrMalformedExtraction = errors.New("malformed model output")
	// ErrInvalidTimeToken means a date token does not match the expected
	// YYYYMMDDTHHMMSS+offset format.
	ErrInvalidTimeToken = errors.New("invalid time token")
)

// ExtractedEvent is a validated calendar event pulled out of model output.
type ExtractedEvent struct {
	Title       string
	Description string
	Location    string
	Dates       []string
}

// rawEvent mirrors the JSON shape the model is prompted to produce.
type rawEvent struct {
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description"`
	Locations   []string `json:"locations"`
	Dates       []string `json:"dates" validate:"required,min=1"`
}
