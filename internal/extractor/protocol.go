package extractor

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"codegraph/internal/graph"
)

// DefaultMaxLineBytes bounds a single NDJSON line. Longer lines are a framing
// error rather than a malformed record.
const DefaultMaxLineBytes = 4 << 20

// Emitter writes extractor records as newline-delimited JSON.
// The first write error is kept and every later call becomes a no-op.
type Emitter struct {
	enc *json.Encoder
	err error
	n   int
}

func NewEmitter(w io.Writer) *Emitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Emitter{enc: enc}
}

func (e *Emitter) write(rec Record) {
	if e.err != nil {
		return
	}
	if err := e.enc.Encode(rec); err != nil {
		e.err = fmt.Errorf("write %s record: %w", rec.Type, err)
		return
	}
	e.n++
}

func (e *Emitter) Symbol(s graph.Symbol) {
	e.write(Record{Type: RecordSymbol, Symbol: &s})
}

func (e *Emitter) Edge(src string, typ graph.EdgeType, dst string) {
	e.write(Record{Type: RecordEdge, Edge: &graph.Edge{Src: src, Type: typ, Dst: dst}})
}

func (e *Emitter) Call(calleeName, file, modID string) {
	e.write(Record{Type: RecordCall, CalleeName: calleeName, File: file, ModID: modID})
}

func (e *Emitter) NameIndex(file string, index map[string][]graph.Symbol) {
	e.write(Record{Type: RecordNameIndex, File: file, Index: index})
}

// Err returns the first write error, if any.
func (e *Emitter) Err() error {
	return e.err
}

// Count returns the number of records written.
func (e *Emitter) Count() int {
	return e.n
}

// Decoder reads records from an NDJSON stream one line at a time. Lines that
// fail to parse or validate are skipped and counted; only I/O and framing
// errors are returned.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	skipped int
	checked bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithSchemaCheck additionally validates every line against RecordSchema.
// Used for extractors that run out of process.
func WithSchemaCheck() DecoderOption {
	return func(d *Decoder) { d.checked = true }
}

// NewDecoder creates a decoder whose buffer never grows beyond maxLineBytes.
func NewDecoder(r io.Reader, maxLineBytes int, opts ...DecoderOption) *Decoder {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	initial := 64 * 1024
	if initial > maxLineBytes {
		initial = maxLineBytes
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, initial), maxLineBytes)
	d := &Decoder{scanner: s}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next well-formed record, or io.EOF when the stream ends.
func (d *Decoder) Next() (Record, error) {
	for d.scanner.Scan() {
		d.line++
		raw := d.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		if d.checked {
			if err := CheckRecord(raw); err != nil {
				d.skipped++
				continue
			}
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			d.skipped++
			continue
		}
		if err := rec.validate(); err != nil {
			d.skipped++
			continue
		}
		return rec, nil
	}
	if err := d.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Record{}, fmt.Errorf("line %d: %w", d.line+1, err)
		}
		return Record{}, err
	}
	return Record{}, io.EOF
}

// Skipped returns the number of malformed lines dropped so far.
func (d *Decoder) Skipped() int {
	return d.skipped
}

func (r Record) validate() error {
	switch r.Type {
	case RecordSymbol:
		if r.Symbol == nil || r.Symbol.ID == "" {
			return errors.New("symbol record without id")
		}
		if !r.Symbol.Kind.Valid() {
			return fmt.Errorf("unknown symbol kind %q", r.Symbol.Kind)
		}
	case RecordEdge:
		if r.Edge == nil || r.Edge.Src == "" || r.Edge.Dst == "" {
			return errors.New("edge record without endpoints")
		}
		if !r.Edge.Type.Valid() {
			return fmt.Errorf("unknown edge type %q", r.Edge.Type)
		}
	case RecordCall:
		if r.CalleeName == "" || r.ModID == "" {
			return errors.New("call record without callee or context")
		}
	case RecordNameIndex:
	default:
		return fmt.Errorf("unknown record type %q", r.Type)
	}
	return nil
}

// ReadAll drains r into an Output. It stops at the first framing or I/O error.
func ReadAll(source string, r io.Reader, maxLineBytes int, opts ...DecoderOption) (*Output, error) {
	out := NewOutput(source)
	dec := NewDecoder(r, maxLineBytes, opts...)
	for {
		rec, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Skipped = dec.Skipped()
			return out, err
		}
		out.Add(rec)
	}
	out.Skipped = dec.Skipped()
	return out, nil
}
