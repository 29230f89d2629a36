package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"event-planner-web/internal/events"

	"github.com/google/uuid"
)

// Repository stores each client's notifications.
// List returns newest first. Remove and RemoveAll tolerate unknown ids.
type Repository interface {
	Append(ctx context.Context, n Notification) error
	List(ctx context.Context, clientID string) ([]Notification, error)
	Remove(ctx context.Context, clientID string, ids []string) (int, error)
	RemoveAll(ctx context.Context, clientID string) error

	// HasNew reports whether anything arrived since the last MarkSeen.
	HasNew(ctx context.Context, clientID string) (bool, error)
	MarkSeen(ctx context.Context, clientID string) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidNotification = errors.New("notify: invalid notification")

func (s *Service) Append(ctx context.Context, n Notification) error {
	if s.repo == nil {
		return errors.New("notify: repository not configured")
	}
	if n.ClientID == "" || n.Kind == "" || n.Message == "" {
		return ErrInvalidNotification
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, n)
}

// RecordReminder stores an event-reminder push as sent by the backend.
func (s *Service) RecordReminder(ctx context.Context, clientID string, data json.RawMessage) (Notification, error) {
	var p reminderPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	n := Notification{ClientID: clientID, Kind: KindReminder, Message: p.Message, Event: p.Event}
	if n.Message == "" && p.Event != nil && p.Event.Title != "" {
		n.Message = fmt.Sprintf("Reminder: event \"%s\" is coming up.", p.Event.Title)
	}
	return n, s.appendReturning(ctx, &n)
}

// RecordUpdate stores an updatedEvent push.
func (s *Service) RecordUpdate(ctx context.Context, clientID string, data json.RawMessage) (Notification, error) {
	var ev events.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	n := Notification{
		ClientID: clientID,
		Kind:     KindUpdated,
		Message:  UpdatedMessage(ev.Title),
		Event:    &ev,
	}
	return n, s.appendReturning(ctx, &n)
}

func UpdatedMessage(title string) string {
	return fmt.Sprintf("Event \"%s\" has been updated.", title)
}

func (s *Service) appendReturning(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock().UTC()
	}
	return s.Append(ctx, *n)
}

func (s *Service) Inbox(ctx context.Context, clientID string) (Inbox, error) {
	items, err := s.repo.List(ctx, clientID)
	if err != nil {
		return Inbox{}, err
	}
	hasNew, err := s.repo.HasNew(ctx, clientID)
	if err != nil {
		return Inbox{}, err
	}
	if items == nil {
		items = []Notification{}
	}
	return Inbox{Items: items, HasNew: hasNew}, nil
}

// MarkSeen clears the new-notification flag; entries stay.
func (s *Service) MarkSeen(ctx context.Context, clientID string) error {
	return s.repo.MarkSeen(ctx, clientID)
}

// Remove deletes the selected entries and reports how many existed.
// An empty selection removes nothing.
func (s *Service) Remove(ctx context.Context, clientID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.Remove(ctx, clientID, ids)
}

func (s *Service) Clear(ctx context.Context, clientID string) error {
	return s.repo.RemoveAll(ctx, clientID)
}
