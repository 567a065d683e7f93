package line

// Event is the bot's view of an inbound message event, mapped from the SDK's
// webhook types.
type Event struct {
	Type       string
	ReplyToken string
	Source     Source
	Message    Message
}

type Source struct {
	Type   string
	UserID string
}

type Message struct {
	ID   string
	Type string
	Text string
}

// IsTextMessage reports whether the event carries a plain text message.
func (e Event) IsTextMessage() bool {
	return e.Type == "message" && e.Message.Type == "text"
}
