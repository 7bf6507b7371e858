package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"basegraph.app/siemd/core/config"
	"basegraph.app/siemd/internal/model"
)

const (
	// TimestampFormat is the canonical event time layout. The fixed width keeps
	// lexical order equal to chronological order.
	TimestampFormat = "2006-01-02T15:04:05.000000Z"
	// ReceivedAtFormat is the ingestion time layout.
	ReceivedAtFormat = "2006-01-02T15:04:05Z"
)

// Normalizer turns decoded lines into events. It is safe for concurrent use.
type Normalizer struct {
	root   string
	limits config.LimitsConfig
	now    func() time.Time
}

type NormalizerOption func(*Normalizer)

// WithClock overrides the ingestion clock.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.now = now
	}
}

// NewNormalizer returns a Normalizer that derives app labels relative to the
// canonical form of root.
func NewNormalizer(root string, limits config.LimitsConfig, opts ...NormalizerOption) (*Normalizer, error) {
	base, err := CanonicalRoot(root)
	if err != nil {
		return nil, err
	}
	n := &Normalizer{root: base, limits: limits, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func (n *Normalizer) Root() string {
	return n.root
}

// Normalize builds the event for one accepted line. line is the raw line
// including its terminator; offset is where it starts in path.
func (n *Normalizer) Normalize(in IncomingEvent, line []byte, path string, offset int64, receivedAt time.Time) model.Event {
	receivedAt = receivedAt.UTC()
	ts := receivedAt
	if in.TS != nil {
		ts = in.TS.UTC()
	}

	app := in.App
	if app == nil {
		app = n.appFromPath(path)
	}

	var data *string
	if len(in.Data) > 0 {
		s := string(in.Data)
		data = &s
	}

	return model.Event{
		TS:         ts.Format(TimestampFormat),
		ReceivedAt: receivedAt.Format(ReceivedAtFormat),
		App:        app,
		Host:       in.Host,
		Level:      in.Level,
		EventType:  in.EventType,
		Message:    capText(in.Message, n.limits.MaxMessageLen, true, true),
		RequestID:  in.RequestID,
		UserID:     in.UserID,
		SrcIP:      in.SrcIP,
		UserAgent:  capText(in.UserAgent, n.limits.MaxUserAgentLen, true, true),
		HTTPMethod: in.HTTPMethod,
		HTTPPath:   capText(in.HTTPPath, n.limits.MaxHTTPPathLen, true, true),
		HTTPStatus: in.HTTPStatus,
		LatencyMS:  in.LatencyMS,
		ErrorType:  in.ErrorType,
		DataJSON:   capText(data, n.limits.MaxDataJSONLen, false, true),
		RawJSON:    capText(rawText(line), n.limits.MaxRawJSONLen, false, false),

		SourceFile:   path,
		SourceOffset: offset,
	}
}

// appFromPath returns the first directory below the log root that contains
// path, else the name of path's parent directory.
func (n *Normalizer) appFromPath(path string) *string {
	dir := filepath.Dir(path)
	if rel, err := filepath.Rel(n.root, dir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
		return &first
	}
	parent := filepath.Base(dir)
	if parent == "." || parent == string(filepath.Separator) || parent == "" {
		return nil
	}
	return &parent
}

// rawText decodes line as UTF-8, replacing each invalid byte with U+FFFD,
// and strips the trailing line terminator.
func rawText(line []byte) *string {
	line = bytes.TrimRight(line, "\r\n")
	var s string
	if utf8.Valid(line) {
		s = string(line)
	} else {
		var sb strings.Builder
		sb.Grow(len(line))
		for len(line) > 0 {
			r, size := utf8.DecodeRune(line)
			if r == utf8.RuneError && size == 1 {
				sb.WriteRune(utf8.RuneError)
			} else {
				sb.Write(line[:size])
			}
			line = line[size:]
		}
		s = sb.String()
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return &s
}

// capText truncates value to maxLen code points. maxLen <= 0 disables the cap.
func capText(value *string, maxLen int, strip, emptyToNil bool) *string {
	if value == nil {
		return nil
	}
	s := *value
	if strip {
		s = strings.TrimSpace(s)
	}
	if emptyToNil && s == "" {
		return nil
	}
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		cut := 0
		for i := range s {
			if cut == maxLen {
				s = s[:i]
				break
			}
			cut++
		}
	}
	return &s
}
