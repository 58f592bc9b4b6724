package flatyml

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/flatyml/pkg/flatyml/index"
	"github.com/randalmurphal/flatyml/pkg/flatyml/match"
	"github.com/randalmurphal/flatyml/pkg/flatyml/observability"
)

// Kind, Value and Entry are re-exported from the index package.
type (
	Kind  = index.Kind
	Value = index.Value
	Entry = index.Entry
)

const (
	KindInt    = index.KindInt
	KindString = index.KindString
)

// Reader holds the text of one configuration file and, once parsed, the
// index of its key/value pairs.
//
// Parse and Close are serialized by an internal mutex. Lookups never take
// the mutex: they read an index pointer that Parse publishes only after the
// index is complete, so a lookup racing Parse sees either no entries or all
// of them. The caller must not Close a Reader while lookups are in flight.
type Reader struct {
	name string
	cfg  readerConfig
	log  *slog.Logger // cfg.logger with the source attached

	mu     sync.Mutex // guards text, parse and close
	text   []byte
	table  atomic.Pointer[index.Table]
	parsed atomic.Bool
	closed atomic.Bool
}

// Open loads the file at path and returns an unparsed Reader.
func Open(path string, opts ...Option) (*Reader, error) {
	if path == "" {
		return nil, ErrInvalidPointer
	}

	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := limitSource(cfg.source, cfg.maxSize).Load(path)
	if err != nil {
		return nil, classify(path, err)
	}

	r := &Reader{name: path, cfg: cfg, text: data}
	r.opened()
	return r, nil
}

// OpenBytes returns an unparsed Reader over a copy of data.
// name identifies the text in logs and errors.
func OpenBytes(name string, data []byte, opts ...Option) *Reader {
	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	text := make([]byte, len(data))
	copy(text, data)

	r := &Reader{name: name, cfg: cfg, text: text}
	r.opened()
	return r
}

// OpenFrom reads all of src and returns an unparsed Reader over it.
func OpenFrom(name string, src io.Reader, opts ...Option) (*Reader, error) {
	if src == nil {
		return nil, ErrInvalidPointer
	}

	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxSize > 0 {
		src = io.LimitReader(src, cfg.maxSize+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, &SourceError{Path: name, Op: "read", Kind: ErrFileError, Err: err}
	}
	if cfg.maxSize > 0 && int64(len(data)) > cfg.maxSize {
		return nil, &SourceError{Path: name, Op: "allocate", Kind: ErrOutOfMemory}
	}
	return OpenBytes(name, data, opts...), nil
}

func (r *Reader) opened() {
	r.log = observability.EnrichLogger(r.cfg.logger, r.name)
	observability.LogReaderOpened(r.log, len(r.text))
	r.cfg.metrics.RecordSourceSize(context.Background(), int64(len(r.text)))
}

// Name returns the path or name the Reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// Parsed reports whether Parse has completed successfully.
func (r *Reader) Parsed() bool {
	return r.parsed.Load()
}

// Parse scans the text and builds the index. It runs at most once: later
// calls return ErrAlreadyParsed and leave the index untouched.
//
// A failed Parse leaves the Reader unparsed with an empty index.
func (r *Reader) Parse(ctx context.Context) error {
	if r == nil || ctx == nil {
		return ErrInvalidPointer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return ErrClosed
	}
	if r.parsed.Load() {
		return ErrAlreadyParsed
	}

	mode := r.cfg.mode.String()
	ctx, span := r.cfg.spans.StartParseSpan(ctx, r.name, mode)
	observability.LogParseStart(r.log, mode)
	elapsed := observability.TimedOperation()

	tbl, err := r.build(ctx)

	duration := elapsed()
	r.cfg.metrics.RecordParse(ctx, mode, duration, tbl.Len(), err)
	r.cfg.spans.EndSpanWithError(span, err)
	if err != nil {
		observability.LogParseError(r.log, err)
		return err
	}

	r.table.Store(tbl)
	r.parsed.Store(true)
	observability.LogParseComplete(r.log, duration, tbl.Len())
	return nil
}

// build runs the scan passes into a private table.
func (r *Reader) build(ctx context.Context) (*index.Table, error) {
	tbl := index.New()

	type pass struct {
		name string
		scan func([]byte) []match.Match
	}
	var passes []pass
	if r.cfg.mode == SinglePass {
		passes = []pass{{"line", match.SinglePass}}
	} else {
		passes = []pass{
			{"int", func(b []byte) []match.Match { return match.Scan(b, index.KindInt) }},
			{"string", func(b []byte) []match.Match { return match.Scan(b, index.KindString) }},
		}
	}

	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, &ParseError{Source: r.name, Pass: p.name, Err: err}
		}

		passCtx, span := r.cfg.spans.StartPassSpan(ctx, p.name)
		matches := p.scan(r.text)
		for _, m := range matches {
			if tbl.Insert(m.Key, m.Value()) {
				observability.LogDuplicateKey(r.log, m.Key, m.Line)
				r.cfg.spans.AddSpanEvent(passCtx, "duplicate_key",
					attribute.String("key", m.Key),
					attribute.Int("line", m.Line),
				)
			}
		}
		span.SetAttributes(attribute.Int("matches", len(matches)))
		r.cfg.spans.EndSpanWithError(span, nil)
	}
	return tbl, nil
}

// Get returns the value stored under key. Before Parse, and after Close,
// every key is absent.
func (r *Reader) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.table.Load().Lookup(key)
	r.cfg.metrics.RecordLookup(context.Background(), ok)
	return v, ok
}

// GetInto copies the value stored under key into dst and reports whether
// key was found.
//
// Accepted destinations:
//   - *int, *int64: integer values
//   - *string: string values
//   - *[]byte: replaced with the raw value bytes (see Value.Bytes)
//   - []byte: raw value bytes are copied into the slice, which must be at
//     least Value.Size() long
//
// A missing key is not an error.
func (r *Reader) GetInto(key string, dst any) (bool, error) {
	if r == nil || key == "" || dst == nil {
		return false, ErrInvalidPointer
	}
	if r.closed.Load() {
		return false, ErrClosed
	}

	v, ok := r.Get(key)
	if !ok {
		return false, nil
	}

	switch d := dst.(type) {
	case *int:
		if d == nil {
			return false, ErrInvalidPointer
		}
		if v.Kind != KindInt {
			return false, ErrKindMismatch
		}
		*d = v.Int
	case *int64:
		if d == nil {
			return false, ErrInvalidPointer
		}
		if v.Kind != KindInt {
			return false, ErrKindMismatch
		}
		*d = int64(v.Int)
	case *string:
		if d == nil {
			return false, ErrInvalidPointer
		}
		if v.Kind != KindString {
			return false, ErrKindMismatch
		}
		*d = v.Str
	case *[]byte:
		if d == nil {
			return false, ErrInvalidPointer
		}
		*d = v.Bytes()
	case []byte:
		if len(d) < v.Size() {
			return false, io.ErrShortBuffer
		}
		copy(d, v.Bytes())
	default:
		return false, ErrKindMismatch
	}
	return true, nil
}

// Int returns the integer stored under key. ok is false if the key is
// missing or holds a string.
func (r *Reader) Int(key string) (n int, ok bool) {
	v, found := r.Get(key)
	if !found || v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}

// String returns the string stored under key. ok is false if the key is
// missing or holds an integer.
func (r *Reader) String(key string) (s string, ok bool) {
	v, found := r.Get(key)
	if !found || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// Len returns the number of distinct keys indexed.
func (r *Reader) Len() int {
	if r == nil {
		return 0
	}
	return r.table.Load().Len()
}

// Keys returns the indexed keys in the order they were first observed.
func (r *Reader) Keys() []string {
	if r == nil {
		return nil
	}
	return r.table.Load().Keys()
}

// Snapshot returns a copy of every entry in first-observed order.
func (r *Reader) Snapshot() Snapshot {
	if r == nil {
		return nil
	}
	var snap Snapshot
	r.table.Load().Walk(func(e index.Entry) bool {
		snap = append(snap, e)
		return true
	})
	return snap
}

// Close releases the text and the index. Closing twice is a no-op.
func (r *Reader) Close() error {
	if r == nil {
		return ErrInvalidPointer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil
	}
	r.closed.Store(true)

	released := r.table.Swap(nil).Release()
	r.text = nil
	observability.LogReaderClosed(r.log, released)
	return nil
}
