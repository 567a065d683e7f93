package server_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"chatcal/app/client/line"
	"chatcal/app/config"
	"chatcal/app/server"
	"chatcal/app/service/dialog"
	"chatcal/app/service/store"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	chatResponse string
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	return f.chatResponse, nil
}

func (f *fakeGenerator) Chat(_ context.Context, _ []store.Turn) (string, error) {
	return f.chatResponse, nil
}

type fakeReplier struct {
	texts []string
}

func (f *fakeReplier) Reply(_ context.Context, _ string, texts ...string) error {
	f.texts = append(f.texts, texts...)
	return nil
}

func intPtr(v int) *int { return &v }

func newTestService(t *testing.T, replier dialog.Replier) *server.Service {
	t.Helper()

	cfg := &config.Config{
		Line: config.Line{
			ChannelSecret: "secret",
			AccessToken:   "access-token",
		},
		Bot: config.Bot{
			Mode:            config.ModeChat,
			ResetCommand:    "!清空",
			ResetReply:      "對話紀錄已清空!",
			UTCOffsetHours:  intPtr(8),
			MaxHistoryTurns: intPtr(50),
		},
	}

	di := do.New()
	do.ProvideValue(di, cfg)
	do.Provide(di, line.NewClient)

	storeSvc := store.NewService(store.NewMemoryKV(), *cfg.Bot.MaxHistoryTurns)
	do.ProvideValue(di, dialog.NewService(cfg, storeSvc, &fakeGenerator{chatResponse: "hi"}, replier))

	svc, err := server.New(di)
	require.NoError(t, err)

	return svc
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestHealth(t *testing.T) {
	s := newTestService(t, &fakeReplier{})

	res, err := s.App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, 200, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestWebhook_BadSignature(t *testing.T) {
	s := newTestService(t, &fakeReplier{})

	body := `{"events":[]}`
	req := httptest.NewRequest("POST", "/webhooks/line", strings.NewReader(body))
	req.Header.Set("x-line-signature", "bogus")

	res, err := s.App().Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, 400, res.StatusCode)
}

func TestWebhook_TextMessage(t *testing.T) {
	replier := &fakeReplier{}
	s := newTestService(t, replier)

	body := `{"events":[{"type":"message","replyToken":"rt-1",` +
		`"source":{"type":"user","userId":"u1"},` +
		`"message":{"id":"m1","type":"text","text":"hello"}}]}`

	req := httptest.NewRequest("POST", "/webhooks/line", strings.NewReader(body))
	req.Header.Set("x-line-signature", sign("secret", []byte(body)))

	res, err := s.App().Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, 200, res.StatusCode)

	payload, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(payload))

	assert.Equal(t, []string{"hi"}, replier.texts)
}

func TestWebhook_IgnoresNonTextEvents(t *testing.T) {
	replier := &fakeReplier{}
	s := newTestService(t, replier)

	body := `{"events":[{"type":"follow","replyToken":"rt-1",` +
		`"source":{"type":"user","userId":"u1"}}]}`

	req := httptest.NewRequest("POST", "/webhooks/line", strings.NewReader(body))
	req.Header.Set("x-line-signature", sign("secret", []byte(body)))

	res, err := s.App().Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, 200, res.StatusCode)
	assert.Empty(t, replier.texts)
}
