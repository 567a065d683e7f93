package line_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatcal/app/client/line"
	"chatcal/app/config"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, cfg *config.Config) *line.Client {
	t.Helper()

	di := do.New()
	do.ProvideValue(di, cfg)

	client, err := line.NewClient(di)
	require.NoError(t, err)

	return client
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

const webhookBody = `{
	"destination": "U0000",
	"events": [
		{
			"type": "message",
			"replyToken": "rt-1",
			"source": {"type": "user", "userId": "u1"},
			"message": {"id": "m1", "type": "text", "text": "hello"}
		},
		{
			"type": "message",
			"replyToken": "rt-2",
			"source": {"type": "user", "userId": "u2"},
			"message": {"id": "m2", "type": "sticker", "packageId": "1", "stickerId": "2"}
		},
		{
			"type": "follow",
			"replyToken": "rt-3",
			"source": {"type": "user", "userId": "u3"}
		}
	]
}`

func TestParseWebhook(t *testing.T) {
	cfg := &config.Config{Line: config.Line{ChannelSecret: "secret", AccessToken: "access-token"}}
	client := newClient(t, cfg)

	events, err := client.ParseWebhook([]byte(webhookBody), sign("secret", []byte(webhookBody)))
	require.NoError(t, err)

	require.Len(t, events, 2, "non-message events are dropped")
	assert.True(t, events[0].IsTextMessage())
	assert.Equal(t, "u1", events[0].Source.UserID)
	assert.Equal(t, "rt-1", events[0].ReplyToken)
	assert.Equal(t, "hello", events[0].Message.Text)
	assert.False(t, events[1].IsTextMessage(), "sticker message is not text")
}

func TestParseWebhook_BadSignature(t *testing.T) {
	cfg := &config.Config{Line: config.Line{ChannelSecret: "secret", AccessToken: "access-token"}}
	client := newClient(t, cfg)

	_, err := client.ParseWebhook([]byte(webhookBody), sign("wrong-secret", []byte(webhookBody)))
	require.ErrorIs(t, err, line.ErrInvalidSignature)
}

func TestReply(t *testing.T) {
	var (
		gotAuth string
		gotBody []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/bot/message/reply", r.URL.Path)

		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)

		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	cfg := &config.Config{Line: config.Line{
		ChannelSecret: "secret",
		AccessToken:   "access-token",
		APIBase:       srv.URL,
	}}
	client := newClient(t, cfg)

	err := client.Reply(context.Background(), "rt-1", "hello back")
	require.NoError(t, err)

	assert.Equal(t, "Bearer access-token", gotAuth)

	var payload struct {
		ReplyToken string `json:"replyToken"`
		Messages   []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))

	assert.Equal(t, "rt-1", payload.ReplyToken)
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, "text", payload.Messages[0].Type)
	assert.Equal(t, "hello back", payload.Messages[0].Text)
}

func TestReply_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Invalid reply token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := &config.Config{Line: config.Line{
		ChannelSecret: "secret",
		AccessToken:   "access-token",
		APIBase:       srv.URL,
	}}
	client := newClient(t, cfg)

	err := client.Reply(context.Background(), "rt-1", "hello back")
	require.Error(t, err)
}
