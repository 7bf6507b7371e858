package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/model"
	"basegraph.app/siemd/internal/store"
)

const (
	DefaultListLimit = 200
	MaxListLimit     = 500
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidCursor = errors.New("before_ts and before_id must be provided together")
)

// ListEventsParams are the list filters as received from a caller. Times are
// converted to the canonical timestamp format before querying.
type ListEventsParams struct {
	From       *time.Time
	To         *time.Time
	Apps       []string
	EventTypes []string
	Levels     []string
	UserID     *string
	SrcIP      *string
	RequestID  *string
	HTTPStatus *int32
	Query      *string

	BeforeTS *time.Time
	BeforeID *int64

	// Limit is clamped into [1, MaxListLimit]; zero selects DefaultListLimit.
	Limit int
}

type EventService interface {
	List(ctx context.Context, params ListEventsParams) ([]model.EventSummary, error)
	Get(ctx context.Context, id int64) (*model.Event, error)
}

type eventService struct {
	events store.EventStore
}

func NewEventService(events store.EventStore) EventService {
	return &eventService{events: events}
}

func (s *eventService) List(ctx context.Context, params ListEventsParams) ([]model.EventSummary, error) {
	if (params.BeforeTS == nil) != (params.BeforeID == nil) {
		return nil, ErrInvalidCursor
	}

	filter := model.EventFilter{
		From:       formatTS(params.From),
		To:         formatTS(params.To),
		Apps:       params.Apps,
		EventTypes: params.EventTypes,
		Levels:     params.Levels,
		UserID:     params.UserID,
		SrcIP:      params.SrcIP,
		RequestID:  params.RequestID,
		HTTPStatus: params.HTTPStatus,
	}
	if params.Query != nil && strings.TrimSpace(*params.Query) != "" {
		filter.Query = params.Query
	}

	var cursor *model.Cursor
	if params.BeforeTS != nil {
		cursor = &model.Cursor{
			BeforeTS: *formatTS(params.BeforeTS),
			BeforeID: *params.BeforeID,
		}
	}

	events, err := s.events.List(ctx, filter, cursor, int32(ClampLimit(params.Limit)))
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, id int64) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("getting event %d: %w", id, err)
	}
	return event, nil
}

// ClampLimit applies the list page size policy.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultListLimit
	case limit < 1:
		return 1
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func formatTS(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(ingest.TimestampFormat)
	return &s
}
