package events

import (
	"encoding/json"
	"sync"
	"time"

	"canchero/internal/models"
)

// Event types published by the booking service.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
)

// Event is a lightweight in-process domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// BookingPayload is the payload carried by booking.* events.
type BookingPayload struct {
	BookingID  int64   `json:"reserva_id"`
	FacilityID int64   `json:"cancha_id"`
	ClientName string  `json:"cliente"`
	Date       string  `json:"fecha"`
	StartTime  string  `json:"hora_inicio"`
	EndTime    string  `json:"hora_fin"`
	Status     string  `json:"estado"`
	Amount     float64 `json:"monto"`
}

// NewBookingEvent builds a booking.* event from a booking snapshot.
func NewBookingEvent(eventType string, b *models.Booking) Event {
	payload, _ := json.Marshal(BookingPayload{
		BookingID:  b.ID,
		FacilityID: b.FacilityID,
		ClientName: b.ClientName,
		Date:       b.Date.Format("2006-01-02"),
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     b.Status,
		Amount:     b.Amount,
	})
	return Event{Type: eventType, Payload: payload, CreatedAt: time.Now()}
}

// Handler reacts to an event. Errors are the handler's problem; the bus
// never retries.
type Handler func(event Event) error

// Bus provides in-process pub/sub for domain events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; the caller decides the concurrency model.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}
