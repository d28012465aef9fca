package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	"ledgerbot/internal/middleware"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	textShareContact   = "Para identificarte, comparte tu número de teléfono con el botón de abajo."
	textContactSaved   = "Gracias, ya te identifiqué."
	textForeignContact = "Comparte tu propio contacto, no el de otra persona."

	btnShareContact = "📱 Compartir mi número"
)

// Bot adapts Telegram updates to the message handler.
// Telegram does not expose phone numbers, so each user shares their contact once;
// the chat to phone binding is kept in memory.
type Bot struct {
	bot    *tele.Bot
	handle middleware.HandlerFunc
	logger *zap.Logger

	phones   map[int64]string
	phoneMux sync.RWMutex
}

// New creates a long-polling Telegram bot
func New(token string, handle middleware.HandlerFunc, logger *zap.Logger) (*Bot, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	b := &Bot{
		bot:    bot,
		handle: handle,
		logger: logger,
		phones: make(map[int64]string),
	}
	b.registerHandlers()
	return b, nil
}

// Start blocks while polling updates
func (b *Bot) Start() {
	b.bot.Start()
}

// Stop stops polling
func (b *Bot) Stop() {
	b.bot.Stop()
}

func (b *Bot) registerHandlers() {
	b.bot.Use(privateOnly)

	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle(tele.OnContact, b.handleContact)
	b.bot.Handle(tele.OnText, b.handleText, b.requireContact)
}

// privateOnly drops updates from groups and channels
func privateOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
			return nil
		}
		return next(c)
	}
}

// requireContact asks for the contact until the sender has shared it
func (b *Bot) requireContact(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, ok := b.phone(c.Sender().ID); !ok {
			return c.Send(textShareContact, contactMarkup())
		}
		return next(c)
	}
}

func (b *Bot) handleStart(c tele.Context) error {
	b.logger.Info("User started bot",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("username", c.Sender().Username),
	)

	p, ok := b.phone(c.Sender().ID)
	if !ok {
		return c.Send(textShareContact, contactMarkup())
	}
	return b.dispatch(c, p, "menu")
}

func (b *Bot) handleContact(c tele.Context) error {
	p, ok := contactPhone(c.Sender(), c.Message().Contact)
	if !ok {
		return c.Send(textForeignContact, contactMarkup())
	}

	b.setPhone(c.Sender().ID, p)
	b.logger.Info("Contact bound", zap.Int64("user_id", c.Sender().ID))

	if err := c.Send(textContactSaved, &tele.ReplyMarkup{RemoveKeyboard: true}); err != nil {
		return err
	}
	return b.dispatch(c, p, "menu")
}

func (b *Bot) handleText(c tele.Context) error {
	// Ignore commands (starting with /)
	if strings.HasPrefix(c.Text(), "/") {
		return nil
	}
	p, _ := b.phone(c.Sender().ID)
	return b.dispatch(c, p, c.Text())
}

func (b *Bot) dispatch(c tele.Context, phone, text string) error {
	msg := &message{c: c, sender: phone, text: text}
	if err := b.handle(context.Background(), msg); err != nil {
		b.logger.Error("Failed to handle Telegram message",
			zap.Error(err),
			zap.Int64("user_id", c.Sender().ID),
		)
	}
	return nil
}

func (b *Bot) phone(userID int64) (string, bool) {
	b.phoneMux.RLock()
	defer b.phoneMux.RUnlock()
	p, ok := b.phones[userID]
	return p, ok
}

func (b *Bot) setPhone(userID int64, phone string) {
	b.phoneMux.Lock()
	defer b.phoneMux.Unlock()
	b.phones[userID] = phone
}

// contactPhone accepts only the sender's own contact
func contactPhone(sender *tele.User, contact *tele.Contact) (string, bool) {
	if sender == nil || contact == nil || contact.PhoneNumber == "" {
		return "", false
	}
	if contact.UserID != sender.ID {
		return "", false
	}
	return contact.PhoneNumber, true
}

func contactMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	markup.Reply(markup.Row(markup.Contact(btnShareContact)))
	return markup
}

// message adapts a telebot context
type message struct {
	c      tele.Context
	sender string
	text   string
}

func (m *message) Sender() string { return m.sender }

func (m *message) Text() string { return m.text }

func (m *message) Reply(ctx context.Context, text string) error {
	return m.c.Send(text)
}
