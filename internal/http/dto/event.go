package dto

import "basegraph.app/siemd/internal/model"

// ListEventsQuery binds the event list query string. Times stay strings so
// they can be parsed with the same layouts the ingester accepts.
type ListEventsQuery struct {
	From       *string  `form:"from"`
	To         *string  `form:"to"`
	Apps       []string `form:"app"`
	EventTypes []string `form:"event_type"`
	Levels     []string `form:"level"`
	UserID     *string  `form:"user_id"`
	SrcIP      *string  `form:"src_ip"`
	RequestID  *string  `form:"request_id"`
	HTTPStatus *int32   `form:"http_status"`
	Q          *string  `form:"q"`
	Limit      *int     `form:"limit"`
	BeforeTS   *string  `form:"before_ts"`
	BeforeID   *int64   `form:"before_id"`
}

type EventListItem struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	ReceivedAt string `json:"received_at"`

	App       *string `json:"app"`
	Host      *string `json:"host"`
	Level     *string `json:"level"`
	EventType *string `json:"event_type"`
	Message   *string `json:"message"`

	RequestID *string `json:"request_id"`
	UserID    *string `json:"user_id"`
	SrcIP     *string `json:"src_ip"`
	UserAgent *string `json:"user_agent"`

	HTTPMethod *string  `json:"http_method"`
	HTTPPath   *string  `json:"http_path"`
	HTTPStatus *int32   `json:"http_status"`
	LatencyMS  *float64 `json:"latency_ms"`

	ErrorType *string `json:"error_type"`
}

// EventDetail adds the payload and origin of the line to the list item.
type EventDetail struct {
	EventListItem

	DataJSON     *string `json:"data_json"`
	RawJSON      *string `json:"raw_json"`
	SourceFile   string  `json:"source_file"`
	SourceOffset int64   `json:"source_offset"`
}

func ToEventListItem(e model.EventSummary) EventListItem {
	return EventListItem{
		ID:         e.ID,
		TS:         e.TS,
		ReceivedAt: e.ReceivedAt,
		App:        e.App,
		Host:       e.Host,
		Level:      e.Level,
		EventType:  e.EventType,
		Message:    e.Message,
		RequestID:  e.RequestID,
		UserID:     e.UserID,
		SrcIP:      e.SrcIP,
		UserAgent:  e.UserAgent,
		HTTPMethod: e.HTTPMethod,
		HTTPPath:   e.HTTPPath,
		HTTPStatus: e.HTTPStatus,
		LatencyMS:  e.LatencyMS,
		ErrorType:  e.ErrorType,
	}
}

func ToEventListItems(events []model.EventSummary) []EventListItem {
	items := make([]EventListItem, len(events))
	for i, e := range events {
		items[i] = ToEventListItem(e)
	}
	return items
}

func ToEventDetail(e *model.Event) *EventDetail {
	return &EventDetail{
		EventListItem: ToEventListItem(e.Summary()),
		DataJSON:      e.DataJSON,
		RawJSON:       e.RawJSON,
		SourceFile:    e.SourceFile,
		SourceOffset:  e.SourceOffset,
	}
}
