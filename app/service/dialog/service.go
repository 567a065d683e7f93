package dialog

import (
	"chatcal/app/client/gemini"
	"chatcal/app/client/line"
	"chatcal/app/config"
	"chatcal/app/service/calendar"
	"chatcal/app/service/store"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	"github.com/samber/do"
)

//go:embed extract_prompt.txt
var extractPromptTemplate string

// Service routes each inbound text message to one of three branches: history
// reset, calendar-event extraction, or free chat with history.
type Service struct {
	cfg       *config.Config
	storeSvc  Store
	generator Generator
	replier   Replier

	utcShift time.Duration
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*store.Service](di),
		do.MustInvoke[*gemini.Client](di),
		do.MustInvoke[*line.Client](di),
	), nil
}

func NewService(cfg *config.Config, storeSvc Store, generator Generator, replier Replier) *Service {
	return &Service{
		cfg:       cfg,
		storeSvc:  storeSvc,
		generator: generator,
		replier:   replier,
		utcShift:  time.Duration(*cfg.Bot.UTCOffsetHours) * time.Hour,
	}
}

func (s *Service) HandleEvent(ctx context.Context, ev line.Event) error {
	if ev.Message.Text == s.cfg.Bot.ResetCommand {
		return s.handleReset(ctx, ev)
	}

	if s.cfg.Bot.Mode == config.ModeEvent {
		return s.handleExtraction(ctx, ev)
	}

	return s.handleChat(ctx, ev)
}

func (s *Service) handleReset(ctx context.Context, ev line.Event) error {
	if err := s.storeSvc.Reset(ctx, ev.Source.UserID); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}

	if err := s.replier.Reply(ctx, ev.ReplyToken, s.cfg.Bot.ResetReply); err != nil {
		return fmt.Errorf("failed to send reset confirmation: %w", err)
	}

	slog.Info("Cleared conversation history", "user_id", ev.Source.UserID)

	return nil
}

func (s *Service) handleExtraction(ctx context.Context, ev line.Event) error {
	link, err := s.extractLink(ctx, ev.Message.Text)
	if err != nil {
		// drop the event: a garbled reply is worse than none
		slog.Warn("Event extraction failed",
			"user_id", ev.Source.UserID,
			"error", err)
		return nil
	}

	if err = s.replier.Reply(ctx, ev.ReplyToken, link); err != nil {
		return fmt.Errorf("failed to send calendar link: %w", err)
	}

	return nil
}

func (s *Service) extractLink(ctx context.Context, text string) (string, error) {
	templateValues := map[string]any{
		"now":  time.Now().Format("2006-01-02 15:04:05"),
		"text": text,
	}

	prompt := extractPromptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	event, err := calendar.ParseEvent(raw)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}

	// only the first date is honored even when the model returns several
	dates, err := calendar.NormalizeDates(event.Dates[0], s.utcShift)
	if err != nil {
		return "", fmt.Errorf("normalize: %w", err)
	}

	return calendar.BuildLink(event.Title, dates, event.Location, event.Description), nil
}

func (s *Service) handleChat(ctx context.Context, ev line.Event) error {
	userID := ev.Source.UserID

	history, err := s.storeSvc.History(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	userTurn := store.UserTurn(ev.Message.Text)

	reply, err := s.generator.Chat(ctx, append(history, userTurn))
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}

	if err = s.storeSvc.Append(ctx, userID, userTurn, store.ModelTurn(reply)); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	if err = s.replier.Reply(ctx, ev.ReplyToken, reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}
