package store

import (
	"context"
	"errors"
	"fmt"

	"basegraph.app/siemd/core/db/sqlc"
	"basegraph.app/siemd/internal/model"
	"github.com/jackc/pgx/v5"
)

type eventStore struct {
	queries *sqlc.Queries
}

func newEventStore(queries *sqlc.Queries) EventStore {
	return &eventStore{queries: queries}
}

func (s *eventStore) InsertBatch(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}

	params := make([]sqlc.InsertEventsParams, 0, len(events))
	for i := range events {
		params = append(params, toInsertEventsParams(&events[i]))
	}

	var firstErr error
	s.queries.InsertEvents(ctx, params).Exec(func(i int, err error) {
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("inserting event %s@%d: %w", events[i].SourceFile, events[i].SourceOffset, err)
		}
	})
	return firstErr
}

func (s *eventStore) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	row, err := s.queries.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toEventModel(row), nil
}

func (s *eventStore) List(ctx context.Context, filter model.EventFilter, cursor *model.Cursor, limit int32) ([]model.EventSummary, error) {
	params := sqlc.ListEventsParams{
		FromTs:     filter.From,
		ToTs:       filter.To,
		Apps:       orEmpty(filter.Apps),
		EventTypes: orEmpty(filter.EventTypes),
		Levels:     orEmpty(filter.Levels),
		UserID:     filter.UserID,
		SrcIp:      filter.SrcIP,
		RequestID:  filter.RequestID,
		HttpStatus: filter.HTTPStatus,
		Q:          filter.Query,
		RowLimit:   limit,
	}
	if cursor != nil {
		beforeTS, beforeID := cursor.BeforeTS, cursor.BeforeID
		params.BeforeTs = &beforeTS
		params.BeforeID = &beforeID
	}

	rows, err := s.queries.ListEvents(ctx, params)
	if err != nil {
		return nil, err
	}
	result := make([]model.EventSummary, 0, len(rows))
	for _, row := range rows {
		result = append(result, toEventSummaryModel(row))
	}
	return result, nil
}

func (s *eventStore) ListEventTypes(ctx context.Context, app *string) ([]string, error) {
	rows, err := s.queries.ListEventTypes(ctx, app)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(rows))
	for _, row := range rows {
		if row != nil && *row != "" {
			result = append(result, *row)
		}
	}
	return result, nil
}

// orEmpty keeps set filters non-NULL so cardinality() sees an empty array.
func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func toInsertEventsParams(e *model.Event) sqlc.InsertEventsParams {
	return sqlc.InsertEventsParams{
		Ts:           e.TS,
		ReceivedAt:   e.ReceivedAt,
		App:          e.App,
		Host:         e.Host,
		Level:        e.Level,
		EventType:    e.EventType,
		Message:      e.Message,
		RequestID:    e.RequestID,
		UserID:       e.UserID,
		SrcIp:        e.SrcIP,
		UserAgent:    e.UserAgent,
		HttpMethod:   e.HTTPMethod,
		HttpPath:     e.HTTPPath,
		HttpStatus:   e.HTTPStatus,
		LatencyMs:    e.LatencyMS,
		ErrorType:    e.ErrorType,
		DataJson:     e.DataJSON,
		RawJson:      e.RawJSON,
		SourceFile:   e.SourceFile,
		SourceOffset: e.SourceOffset,
	}
}

func toEventModel(row sqlc.Event) *model.Event {
	return &model.Event{
		ID:           row.ID,
		TS:           row.Ts,
		ReceivedAt:   row.ReceivedAt,
		App:          row.App,
		Host:         row.Host,
		Level:        row.Level,
		EventType:    row.EventType,
		Message:      row.Message,
		RequestID:    row.RequestID,
		UserID:       row.UserID,
		SrcIP:        row.SrcIp,
		UserAgent:    row.UserAgent,
		HTTPMethod:   row.HttpMethod,
		HTTPPath:     row.HttpPath,
		HTTPStatus:   row.HttpStatus,
		LatencyMS:    row.LatencyMs,
		ErrorType:    row.ErrorType,
		DataJSON:     row.DataJson,
		RawJSON:      row.RawJson,
		SourceFile:   row.SourceFile,
		SourceOffset: row.SourceOffset,
	}
}

func toEventSummaryModel(row sqlc.ListEventsRow) model.EventSummary {
	return model.EventSummary{
		ID:         row.ID,
		TS:         row.Ts,
		ReceivedAt: row.ReceivedAt,
		App:        row.App,
		Host:       row.Host,
		Level:      row.Level,
		EventType:  row.EventType,
		Message:    row.Message,
		RequestID:  row.RequestID,
		UserID:     row.UserID,
		SrcIP:      row.SrcIp,
		UserAgent:  row.UserAgent,
		HTTPMethod: row.HttpMethod,
		HTTPPath:   row.HttpPath,
		HTTPStatus: row.HttpStatus,
		LatencyMS:  row.LatencyMs,
		ErrorType:  row.ErrorType,
	}
}
