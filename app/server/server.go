package server

import (
	"chatcal/app/client/line"
	"chatcal/app/config"
	"chatcal/app/service/dialog"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elliotchance/pie/v2"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

var _ do.Shutdownable = (*Service)(nil)

// Service exposes the webhook and health endpoints.
type Service struct {
	cfg        *config.Config
	lineClient *line.Client
	dialogSvc  *dialog.Service

	app *fiber.App
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:        do.MustInvoke[*config.Config](di),
		lineClient: do.MustInvoke[*line.Client](di),
		dialogSvc:  do.MustInvoke[*dialog.Service](di),
	}
	s.initApp()

	return s, nil
}

func (s *Service) initApp() {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(fiberrecover.New())

	app.Get("/health", s.handleHealth)
	app.Post("/webhooks/line", s.handleWebhook)

	s.app = app
}

func (s *Service) Run() error {
	return s.app.Listen(fmt.Sprintf(":%d", s.cfg.Server.Port))
}

// App returns the underlying fiber app.
func (s *Service) App() *fiber.App {
	return s.app
}

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.SendString("ok")
}

func (s *Service) handleWebhook(c *fiber.Ctx) error {
	events, err := s.lineClient.ParseWebhook(c.Body(), c.Get("x-line-signature"))
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid signature")
		}

		return fmt.Errorf("failed to parse webhook: %w", err)
	}

	textEvents := pie.Filter(events, func(ev line.Event) bool {
		return ev.IsTextMessage()
	})

	group, ctx := errgroup.WithContext(c.UserContext())
	for _, ev := range textEvents {
		group.Go(func() error {
			return s.dialogSvc.HandleEvent(ctx, ev)
		})
	}

	if err = group.Wait(); err != nil {
		slog.Error("Webhook processing failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "processing failed")
	}

	return c.SendString("OK")
}

func (s *Service) Shutdown() error {
	return s.app.Shutdown()
}
