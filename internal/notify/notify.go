package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"canchero/internal/events"
)

const sendTimeout = 10 * time.Second

// MessageSender sends a text message to a chat. *tgbotapi.BotAPI is
// wrapped by telegramSender to satisfy it.
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

type telegramSender struct {
	api *tgbotapi.BotAPI
}

func (s *telegramSender) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := s.api.Send(msg)
	return err
}

// Notifier pushes booking updates to the owner chats over Telegram.
type Notifier struct {
	sender  MessageSender
	chatIDs []int64
	limiter *RateLimiter
	logger  *zerolog.Logger
}

// New connects to the Telegram bot API. An empty token disables
// notifications and returns nil without error.
func New(token string, chatIDs []int64, logger *zerolog.Logger) (*Notifier, error) {
	if token == "" || len(chatIDs) == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	logger.Info().Str("bot", api.Self.UserName).Int("chats", len(chatIDs)).Msg("telegram notifier enabled")
	return NewWithSender(&telegramSender{api: api}, chatIDs, logger), nil
}

// NewWithSender builds a notifier on any MessageSender.
func NewWithSender(sender MessageSender, chatIDs []int64, logger *zerolog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		chatIDs: chatIDs,
		limiter: NewRateLimiter(DefaultRateLimiterConfig()),
		logger:  logger,
	}
}

// Subscribe wires the notifier to booking events on the bus. Safe to
// call on a nil notifier.
func (n *Notifier) Subscribe(bus *events.Bus) {
	if n == nil {
		return
	}
	bus.Subscribe(events.BookingCreated, n.handleEvent)
	bus.Subscribe(events.BookingConfirmed, n.handleEvent)
	bus.Subscribe(events.BookingCancelled, n.handleEvent)
}

func (n *Notifier) handleEvent(event events.Event) error {
	var p events.BookingPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		n.logger.Warn().Err(err).Str("type", event.Type).Msg("bad event payload")
		return err
	}
	n.broadcast(formatBookingMessage(event.Type, &p))
	return nil
}

func (n *Notifier) broadcast(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	for _, chatID := range n.chatIDs {
		if err := n.limiter.Wait(ctx); err != nil {
			n.logger.Warn().Err(err).Msg("notification rate limit wait cancelled")
			return
		}
		if err := n.sender.SendMessage(chatID, text); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send notification")
		}
	}
}

func formatBookingMessage(eventType string, p *events.BookingPayload) string {
	var head string
	switch eventType {
	case events.BookingCreated:
		head = "🆕 Nueva reserva"
	case events.BookingConfirmed:
		head = "✅ Reserva confirmada"
	case events.BookingCancelled:
		head = "❌ Reserva cancelada"
	default:
		head = "Reserva actualizada"
	}
	return fmt.Sprintf("%s #%d\n👤 %s\n📅 %s, %s – %s\n💵 $%.2f",
		head, p.BookingID, p.ClientName, p.Date, p.StartTime, p.EndTime, p.Amount)
}
