package whatsapp

import (
	"context"
	"encoding/xml"
	"strings"
	"sync"

	"ledgerbot/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	InboundPath = "/whatsapp/inbound"
	HealthPath  = "/health"
)

// Server receives Twilio WhatsApp webhooks and answers with TwiML.
// Replies produced while handling a message are returned in the webhook response.
type Server struct {
	app    *fiber.App
	handle middleware.HandlerFunc
	logger *zap.Logger
}

// NewServer creates the webhook server.
// Form values outlive the request in session state, so the app runs Immutable.
func NewServer(handle middleware.HandlerFunc, logger *zap.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			Immutable:             true,
		}),
		handle: handle,
		logger: logger,
	}
	s.app.Post(InboundPath, s.inbound)
	s.app.Get(HealthPath, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return s
}

// Listen serves until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("WhatsApp webhook listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting webhooks and waits for in-flight ones
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// inbound handles Twilio's form post: From=whatsapp:+51..., Body=...
func (s *Server) inbound(c *fiber.Ctx) error {
	msg := &inboundMessage{
		from: normalizeFrom(c.FormValue("From")),
		body: c.FormValue("Body"),
	}

	if err := s.handle(c.UserContext(), msg); err != nil {
		s.logger.Error("Failed to handle WhatsApp message", zap.Error(err), zap.String("from", msg.from))
	}

	out, err := twiml(msg.collected())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(out)
}

func normalizeFrom(from string) string {
	from = strings.TrimSpace(from)
	from = strings.TrimPrefix(from, "whatsapp:")
	return strings.TrimSpace(from)
}

// inboundMessage buffers replies until the webhook responds
type inboundMessage struct {
	from string
	body string

	mu      sync.Mutex
	replies []string
}

func (m *inboundMessage) Sender() string { return m.from }

func (m *inboundMessage) Text() string { return m.body }

func (m *inboundMessage) Reply(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, text)
	return nil
}

func (m *inboundMessage) collected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replies...)
}

type twimlResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// twiml renders one <Message> per reply. No replies means no answer.
func twiml(replies []string) ([]byte, error) {
	body, err := xml.Marshal(twimlResponse{Messages: replies})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
