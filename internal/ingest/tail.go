package ingest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"basegraph.app/siemd/internal/model"
)

const (
	readBufferSize = 64 * 1024
	minLineBudget  = 1000
)

// TailResult is the outcome of one bounded read. A nil Inode means the file
// no longer exists; NewOffset then echoes the checkpoint.
type TailResult struct {
	Events    []model.Event
	NewOffset int64
	Inode     *int64
	Stats     model.Stats
}

// StartOffset decides where to resume reading. It restarts from 0 when the
// file was replaced (identity changed, compared only when both sides are
// known) or truncated below the checkpoint.
func StartOffset(cp model.Checkpoint, inode *int64, size int64) int64 {
	if cp.Inode != nil && inode != nil && *cp.Inode != *inode {
		return 0
	}
	if cp.Offset > size || cp.Offset < 0 {
		return 0
	}
	return cp.Offset
}

// Tail reads complete lines of path from its checkpoint and normalizes them.
// It stops after maxEvents events, after a line budget of max(4*maxEvents,
// 1000) consumed lines, or at the first line without a terminator. A
// partial last line is left unread so the next call sees it whole.
func Tail(path string, cp model.Checkpoint, maxEvents int, n *Normalizer) (TailResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return TailResult{NewOffset: cp.Offset}, nil
		}
		return TailResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return TailResult{}, fmt.Errorf("stat %s: %w", path, err)
	}
	inode := fileIdentity(info)
	if inode == nil {
		// No inodes on this platform. A constant identity keeps the file
		// distinguishable from a vanished one; rotation falls back to size.
		zero := int64(0)
		inode = &zero
	}
	start := StartOffset(cp, inode, info.Size())
	result := TailResult{NewOffset: start, Inode: inode}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return TailResult{}, fmt.Errorf("seeking %s to %d: %w", path, start, err)
	}

	receivedAt := n.now()
	reader := bufio.NewReaderSize(f, readBufferSize)
	lineBudget := max(maxEvents*4, minLineBudget)
	cursor := start

	for consumed := 0; len(result.Events) < maxEvents && consumed < lineBudget; consumed++ {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(line) > 0 {
					result.Stats.Inc(model.SkipReasonIncompleteLine)
				}
				break
			}
			return TailResult{}, fmt.Errorf("reading %s at %d: %w", path, cursor, err)
		}

		lineStart := cursor
		cursor += int64(len(line))
		result.NewOffset = cursor

		in, reason, ok := parseLine(line)
		if !ok {
			result.Stats.Inc(reason)
			continue
		}
		result.Events = append(result.Events, n.Normalize(in, line, path, lineStart, receivedAt))
	}

	return result, nil
}

// parseLine classifies one newline-terminated line. When ok is false, reason
// says why the line yields no event.
func parseLine(line []byte) (IncomingEvent, model.SkipReason, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return IncomingEvent{}, model.SkipReasonEmptyLine, false
	}
	if !utf8.Valid(trimmed) {
		return IncomingEvent{}, model.SkipReasonJSONError, false
	}

	if trimmed[0] != '{' {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return IncomingEvent{}, model.SkipReasonJSONError, false
		}
		return IncomingEvent{}, model.SkipReasonNonObject, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return IncomingEvent{}, model.SkipReasonJSONError, false
	}
	in, ok := DecodeIncoming(obj)
	if !ok {
		return IncomingEvent{}, model.SkipReasonValidationError, false
	}
	return in, "", true
}
