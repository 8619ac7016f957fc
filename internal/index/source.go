package index

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"codegraph/internal/extractor"
)

// Source produces one extractor's NDJSON stream. Open starts the producer;
// after the stream has been read to the end (or closed), Wait reports how the
// producer terminated. A non-nil Wait error is an abnormal termination.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
	Wait() error
}

// checkedSource is implemented by sources whose records are validated
// against the record schema before decoding.
type checkedSource interface {
	CheckRecords() bool
}

// InProcessSource runs a language extractor in a goroutine behind a pipe.
type InProcessSource struct {
	ext  *extractor.Extractor
	root string

	done chan error
}

func NewInProcessSource(ext *extractor.Extractor, root string) *InProcessSource {
	return &InProcessSource{ext: ext, root: root}
}

func (s *InProcessSource) Name() string {
	return s.ext.Language()
}

func (s *InProcessSource) Open(ctx context.Context) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	s.done = make(chan error, 1)
	go func() {
		err := s.ext.Run(ctx, s.root, pw)
		pw.CloseWithError(err)
		s.done <- err
	}()
	return pr, nil
}

func (s *InProcessSource) Wait() error {
	if s.done == nil {
		return fmt.Errorf("%s: source was never opened", s.Name())
	}
	return <-s.done
}

// CommandSource runs an external extractor and reads its stdout, e.g.
// `python3 ingest_py.py <root>`.
type CommandSource struct {
	name string
	argv []string
	dir  string

	cmd    *exec.Cmd
	stderr *tailBuffer
}

func NewCommandSource(name string, argv []string, dir string) *CommandSource {
	return &CommandSource{name: name, argv: argv, dir: dir}
}

func (s *CommandSource) Name() string {
	return s.name
}

func (s *CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if len(s.argv) == 0 {
		return nil, fmt.Errorf("%s: empty command", s.name)
	}
	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	cmd.Dir = s.dir
	s.stderr = &tailBuffer{limit: 4096}
	cmd.Stderr = s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s: start %s: %w", s.name, s.argv[0], err)
	}
	s.cmd = cmd
	return stdout, nil
}

// CheckRecords is true: external extractors are held to the record schema.
func (s *CommandSource) CheckRecords() bool {
	return true
}

func (s *CommandSource) Wait() error {
	if s.cmd == nil {
		return fmt.Errorf("%s: source was never opened", s.name)
	}
	err := s.cmd.Wait()
	s.cmd = nil
	if err == nil {
		return nil
	}
	if tail := strings.TrimSpace(s.stderr.String()); tail != "" {
		return fmt.Errorf("%s: %w: %s", s.name, err, tail)
	}
	return fmt.Errorf("%s: %w", s.name, err)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(p)
	if over := b.buf.Len() - b.limit; over > 0 {
		b.buf.Next(over)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
