package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/binref/refinery-go/chunk"
)

// RecordKind discriminates the three record types on the wire (spec.md
// §4.2).
type RecordKind uint8

const (
	RecordChunk RecordKind = iota
	RecordOpen
	RecordClose
)

// Record is one decoded wire record.
type Record struct {
	Kind  RecordKind
	Chunk *chunk.Chunk // only set when Kind == RecordChunk
}

// Encoder writes a sequence of chunk.Chunk values and OPEN/CLOSE depth
// changes to a byte stream in the frame wire format. The stream header
// (magic + version) is written lazily, on the first call to any method,
// so that a process which never emits anything produces zero bytes rather
// than a bare empty-but-framed stream.
type Encoder struct {
	w           io.Writer
	wroteHeader bool
	depth       int
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) writeHeader() error {
	if e.wroteHeader {
		return nil
	}
	if _, err := e.w.Write(Magic[:]); err != nil {
		return err
	}
	if _, err := e.w.Write([]byte{Version}); err != nil {
		return err
	}
	e.wroteHeader = true
	return nil
}

// WriteChunk emits a CHUNK record.
func (e *Encoder) WriteChunk(c *chunk.Chunk) error {
	if err := e.writeHeader(); err != nil {
		return err
	}
	buf, err := EncodeChunk(nil, c)
	if err != nil {
		return err
	}
	_, err = e.w.Write(buf)
	return err
}

// Open emits an OPEN record, increasing frame depth by one (spec.md §4.5:
// bracket entry_action).
func (e *Encoder) Open() error {
	if err := e.writeHeader(); err != nil {
		return err
	}
	if _, err := e.w.Write([]byte{tagOpen}); err != nil {
		return err
	}
	e.depth++
	return nil
}

// Close emits a CLOSE record, decreasing frame depth by one. Returns an
// error if depth would go negative (spec.md §4.2 "CLOSE never appears
// unmatched").
func (e *Encoder) Close() error {
	if e.depth == 0 {
		return errors.New("frame: unmatched CLOSE: depth is already 0")
	}
	if err := e.writeHeader(); err != nil {
		return err
	}
	if _, err := e.w.Write([]byte{tagClose}); err != nil {
		return err
	}
	e.depth--
	return nil
}

// Depth returns the encoder's current frame depth.
func (e *Encoder) Depth() int { return e.depth }

// Decoder reads a sequence of Records from a byte stream. If the stream
// does not begin with the magic marker, the Decoder degrades to raw mode:
// the entire remaining stream is delivered as a single visible depth-0
// chunk with no meta, then io.EOF (spec.md §4.2 "Rationale").
type Decoder struct {
	r        *bufio.Reader
	raw      bool
	rawDone  bool
	framed   bool
	depth    int
	maxDepth int
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 4096)}
}

func (d *Decoder) sniff() error {
	if d.framed || d.raw {
		return nil
	}
	peek, err := d.r.Peek(len(Magic))
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Stream shorter than the magic marker: still raw, just empty.
			d.raw = true
			return nil
		}
		return err
	}
	if peek[0] == Magic[0] && peek[1] == Magic[1] && peek[2] == Magic[2] {
		if _, err := d.r.Discard(len(Magic)); err != nil {
			return err
		}
		ver, err := d.r.ReadByte()
		if err != nil {
			return fmt.Errorf("frame: read version: %w", err)
		}
		if ver != Version {
			return fmt.Errorf("frame: unsupported version 0x%02x", ver)
		}
		d.framed = true
		return nil
	}
	d.raw = true
	return nil
}

// Next returns the next Record, or io.EOF when the stream is exhausted. A
// malformed stream (unknown tag, truncated record, CLOSE past depth 0)
// is a fatal FrameError per spec.md §7; Next returns it as a plain error
// and the caller (the pipeline driver) is responsible for classifying it.
func (d *Decoder) Next() (*Record, error) {
	if err := d.sniff(); err != nil {
		return nil, err
	}

	if d.raw {
		if d.rawDone {
			return nil, io.EOF
		}
		payload, err := io.ReadAll(d.r)
		if err != nil {
			return nil, err
		}
		d.rawDone = true
		c := chunk.NewChunk(payload)
		return &Record{Kind: RecordChunk, Chunk: c}, nil
	}

	tag, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	switch {
	case tag == tagOpen:
		d.depth++
		if d.depth > d.maxDepth {
			d.maxDepth = d.depth
		}
		return &Record{Kind: RecordOpen}, nil
	case tag == tagClose:
		if d.depth == 0 {
			return nil, errors.New("frame: corrupt stream: unmatched CLOSE")
		}
		d.depth--
		return &Record{Kind: RecordClose}, nil
	case tag&0xFE == tagChunk:
		visible := tag&visBit != 0
		c, err := DecodeChunk(d.r, visible)
		if err != nil {
			return nil, err
		}
		c.ScopeDepth = d.depth
		return &Record{Kind: RecordChunk, Chunk: c}, nil
	default:
		return nil, fmt.Errorf("frame: corrupt stream: unknown record tag 0x%02x", tag)
	}
}

// Depth returns the decoder's current frame depth (OPENs minus CLOSEs
// processed so far).
func (d *Decoder) Depth() int { return d.depth }

// MaxDepthSeen returns the deepest nesting level observed so far (spec.md
// §4.2 "maximum depth is set by the deepest OPEN observed").
func (d *Decoder) MaxDepthSeen() int { return d.maxDepth }

// IsFramed reports whether the stream carried the magic marker. Only
// meaningful after the first call to Next (or after a direct call to
// Peek-driving logic); before that it returns false even for a framed
// stream that hasn't been sniffed yet.
func (d *Decoder) IsFramed() bool { return d.framed }
