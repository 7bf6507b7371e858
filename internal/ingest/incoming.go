package ingest

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Candidate source keys per canonical field, in priority order. The first key
// present in a line wins, even when its value later normalizes to null.
var (
	tsKeys         = []string{"ts", "timestamp", "time"}
	eventTypeKeys  = []string{"event_type", "type"}
	messageKeys    = []string{"msg", "message"}
	httpStatusKeys = []string{"status", "http_status"}
	httpMethodKeys = []string{"method", "http_method"}
	httpPathKeys   = []string{"path", "http_path"}
	dataKeys       = []string{"data", "extra"}
)

// IncomingEvent is the accepted shape of one log line after field resolution
// and coercion. Every field is optional.
type IncomingEvent struct {
	TS        *time.Time `json:"ts,omitempty" jsonschema:"description=Event time. RFC3339 string or epoch seconds; unparseable values fall back to ingestion time"`
	App       *string    `json:"app,omitempty" jsonschema:"description=App label; defaults to the first directory under the log root"`
	Host      *string    `json:"host,omitempty"`
	Level     *string    `json:"level,omitempty"`
	EventType *string    `json:"event_type,omitempty"`
	Message   *string    `json:"message,omitempty"`

	RequestID *string `json:"request_id,omitempty"`
	UserID    *string `json:"user_id,omitempty"`
	SrcIP     *string `json:"src_ip,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`

	HTTPStatus *int32   `json:"http_status,omitempty" jsonschema:"description=Integer or numeric string; booleans are ignored"`
	HTTPMethod *string  `json:"http_method,omitempty"`
	HTTPPath   *string  `json:"http_path,omitempty"`
	LatencyMS  *float64 `json:"latency_ms,omitempty" jsonschema:"description=Number or numeric string"`

	ErrorType *string `json:"error_type,omitempty"`

	// Data is the side payload, compacted but otherwise kept as written.
	Data json.RawMessage `json:"data,omitempty"`
}

// JSONSchemaExtend documents the alias keys and the loose value types the
// decoder accepts on top of the canonical fields.
func (IncomingEvent) JSONSchemaExtend(s *jsonschema.Schema) {
	if s.Properties == nil {
		return
	}
	if ts, ok := s.Properties.Get("ts"); ok {
		ts.Type = ""
		ts.Format = ""
		ts.OneOf = []*jsonschema.Schema{
			{Type: "string"},
			{Type: "number"},
			{Type: "null"},
		}
	}
	s.Properties.Set("data", &jsonschema.Schema{
		Description: "Arbitrary JSON side payload, stored as compact JSON text",
	})

	aliases := map[string][]string{
		"ts":          tsKeys,
		"event_type":  eventTypeKeys,
		"message":     messageKeys,
		"http_status": httpStatusKeys,
		"http_method": httpMethodKeys,
		"http_path":   httpPathKeys,
		"data":        dataKeys,
	}
	for _, canonical := range []string{"ts", "event_type", "message", "http_status", "http_method", "http_path", "data"} {
		prop, ok := s.Properties.Get(canonical)
		if !ok {
			continue
		}
		for _, alias := range aliases[canonical] {
			if alias == canonical {
				continue
			}
			if _, exists := s.Properties.Get(alias); exists {
				continue
			}
			s.Properties.Set(alias, &jsonschema.Schema{
				Description: "Alias of " + canonical,
				Type:        prop.Type,
				OneOf:       prop.OneOf,
			})
		}
	}
}

// IncomingSchema reflects the JSON Schema of an accepted log line.
func IncomingSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	return reflector.Reflect(&IncomingEvent{})
}

// DecodeIncoming resolves and coerces the fields of one JSON object. It
// reports ok=false when a value has a shape no coercion can accept; that is
// the only validation failure, everything else degrades to null fields.
func DecodeIncoming(obj map[string]json.RawMessage) (in IncomingEvent, ok bool) {
	if raw, found := lookup(obj, tsKeys); found {
		v, err := decodeValue(raw)
		if err != nil {
			return IncomingEvent{}, false
		}
		switch v.(type) {
		case map[string]any, []any, bool:
			return IncomingEvent{}, false
		}
		if t, parsed := parseTimestamp(v); parsed {
			in.TS = &t
		}
	}

	in.App = textField(obj, "app")
	in.Host = textField(obj, "host")
	in.Level = textField(obj, "level")
	in.EventType = textField(obj, eventTypeKeys...)
	in.Message = textField(obj, messageKeys...)
	in.RequestID = textField(obj, "request_id")
	in.UserID = textField(obj, "user_id")
	in.SrcIP = textField(obj, "src_ip")
	in.UserAgent = textField(obj, "user_agent")
	in.HTTPMethod = textField(obj, httpMethodKeys...)
	in.HTTPPath = textField(obj, httpPathKeys...)
	in.ErrorType = textField(obj, "error_type")

	if raw, found := lookup(obj, httpStatusKeys); found {
		if v, err := decodeValue(raw); err == nil {
			in.HTTPStatus = softInt32(v)
		}
	}
	if raw, found := lookup(obj, []string{"latency_ms"}); found {
		if v, err := decodeValue(raw); err == nil {
			in.LatencyMS = softFloat(v)
		}
	}

	if raw, found := lookup(obj, dataKeys); found {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil && buf.String() != "null" {
			in.Data = buf.Bytes()
		}
	}

	return in, true
}

func lookup(obj map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if raw, ok := obj[k]; ok {
			return raw, true
		}
	}
	return nil, false
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func textField(obj map[string]json.RawMessage, keys ...string) *string {
	raw, found := lookup(obj, keys)
	if !found {
		return nil
	}
	v, err := decodeValue(raw)
	if err != nil {
		return nil
	}
	return normalizeText(v)
}

// normalizeText stringifies scalars, drops objects and arrays, and maps
// blank strings to nil. NUL bytes are removed; PostgreSQL text cannot hold them.
func normalizeText(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
	if s == "" {
		return nil
	}
	return &s
}

func softInt32(v any) *int32 {
	var n int64
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			n = i
		} else if f, err := t.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			n = int64(math.Trunc(f))
		} else {
			return nil
		}
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil
	}
	out := int32(n)
	return &out
}

func softFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// maxEpochSeconds is 9999-12-31T23:59:59Z.
const maxEpochSeconds = 253402300799

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02",
}

// parseTimestamp accepts RFC3339 variants, naive date-times (taken as UTC)
// and epoch numbers. Epoch values above 2e10 are read as milliseconds.
func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return validTime(parsed.UTC())
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epochTime(f)
		}
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return epochTime(f)
		}
	}
	return time.Time{}, false
}

func epochTime(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if math.Abs(f) > 2e10 {
		f /= 1000
	}
	if math.Abs(f) > maxEpochSeconds {
		return time.Time{}, false
	}
	sec, frac := math.Modf(f)
	return validTime(time.Unix(int64(sec), int64(math.Round(frac*1e6))*1e3).UTC())
}

func validTime(t time.Time) (time.Time, bool) {
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

// ParseTime parses a user-supplied time with the same rules as line
// timestamps.
func ParseTime(s string) (time.Time, bool) {
	return parseTimestamp(s)
}
