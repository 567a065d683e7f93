package line

import (
	"bytes"
	"chatcal/app/config"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/samber/do"
)

// ErrInvalidSignature is returned when the webhook signature does not match
// the request body.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type Client struct {
	cfg *config.Config
	api *messaging_api.MessagingApiAPI
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	var opts []messaging_api.MessagingApiAPIOption
	if cfg.Line.APIBase != "" {
		opts = append(opts, messaging_api.WithEndpoint(cfg.Line.APIBase))
	}

	api, err := messaging_api.NewMessagingApiAPI(cfg.Line.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging API client: %w", err)
	}

	return &Client{
		cfg: cfg,
		api: api,
	}, nil
}

// ParseWebhook verifies the x-line-signature header against the raw body and
// decodes the event batch. The transport hands us raw bytes, so the body is
// rewrapped into a request for the SDK parser. Only message events survive
// the mapping; other event kinds carry nothing the bot reacts to.
func (c *Client) ParseWebhook(body []byte, signature string) ([]Event, error) {
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap webhook body: %w", err)
	}
	req.Header.Set("x-line-signature", signature)

	callback, err := webhook.ParseRequest(c.cfg.Line.ChannelSecret, req)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}

		return nil, fmt.Errorf("failed to parse webhook body: %w", err)
	}

	events := make([]Event, 0, len(callback.Events))
	for _, raw := range callback.Events {
		msgEvent, ok := raw.(webhook.MessageEvent)
		if !ok {
			continue
		}

		ev := Event{
			Type:       "message",
			ReplyToken: msgEvent.ReplyToken,
		}

		if source, ok := msgEvent.Source.(webhook.UserSource); ok {
			ev.Source = Source{Type: "user", UserID: source.UserId}
		}
		if message, ok := msgEvent.Message.(webhook.TextMessageContent); ok {
			ev.Message = Message{ID: message.Id, Type: "text", Text: message.Text}
		}

		events = append(events, ev)
	}

	return events, nil
}

// Reply sends one or more text messages in response to a webhook event.
func (c *Client) Reply(_ context.Context, replyToken string, texts ...string) error {
	messages := make([]messaging_api.MessageInterface, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, messaging_api.TextMessage{Text: text})
	}

	if _, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}
