package attendance

import (
	"context"
	"errors"

	"event-planner-web/internal/events"
)

var ErrInvalidRequest = errors.New("attendance: invalid request")

// Source yields per-event invitation counts. The backend API client is the
// production source.
type Source interface {
	EventStatistics(ctx context.Context) ([]events.Stats, error)
}

type Service struct {
	src Source
}

func NewService(src Source) *Service { return &Service{src: src} }

// Dashboard builds one card per event in the order the source returns them.
func (s *Service) Dashboard(ctx context.Context, req DashboardRequest) (Dashboard, error) {
	if req.Type != "" && !req.Type.Valid() {
		return Dashboard{}, ErrInvalidRequest
	}
	if s.src == nil {
		return Dashboard{}, errors.New("attendance: source not configured")
	}

	rows, err := s.src.EventStatistics(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	out := Dashboard{Cards: make([]Card, 0, len(rows))}
	for _, r := range rows {
		if req.ActiveOnly && !r.Event.Active {
			continue
		}
		if req.Type != "" && r.Event.Type != req.Type {
			continue
		}

		c := Card{
			EventID:     r.Event.ID,
			Title:       r.Event.Title,
			Description: r.Event.Description,
			DateTime:    r.Event.DateTime,
			Type:        r.Event.Type,
			Active:      r.Event.Active,
			Accepted:    nonNegative(r.Accepted),
			Pending:     nonNegative(r.Pending),
			Declined:    nonNegative(r.Declined),
		}
		c.Invited = c.Accepted + c.Pending + c.Declined
		c.ResponseRate = rate(c.Accepted+c.Declined, c.Invited)
		out.Cards = append(out.Cards, c)

		out.Totals.Events++
		out.Totals.Accepted += c.Accepted
		out.Totals.Pending += c.Pending
		out.Totals.Declined += c.Declined
		out.Totals.Invited += c.Invited
	}
	out.Totals.ResponseRate = rate(out.Totals.Accepted+out.Totals.Declined, out.Totals.Invited)
	return out, nil
}

func rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// nonNegative guards against a backend that reports negative counts.
func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
