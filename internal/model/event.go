package model

// Event is one normalized log line. Rows are append-only: the ingester inserts
// them and nothing updates or deletes them afterwards.
type Event struct {
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

	DataJSON     *string `json:"data_json"`
	RawJSON      *string `json:"raw_json"`
	SourceFile   string  `json:"source_file"`
	SourceOffset int64   `json:"source_offset"`
}

// EventSummary is the list projection of an Event. Payload and origin columns
// are left out to keep list responses small.
type EventSummary struct {
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

func (e Event) Summary() EventSummary {
	return EventSummary{
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

// EventFilter holds the optional predicates of an event list query. Set
// filters are OR-ed within a field; everything else is AND-ed.
type EventFilter struct {
	From       *string
	To         *string
	Apps       []string
	EventTypes []string
	Levels     []string
	UserID     *string
	SrcIP      *string
	RequestID  *string
	HTTPStatus *int32
	Query      *string
}

// Cursor is a keyset position in (ts DESC, id DESC) order.
type Cursor struct {
	BeforeTS string
	BeforeID int64
}
