package core_test

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/toejough/automock/internal/core"
)

// Identifiers used across the core tests.
const (
	idAdd   = "calc.Add"
	idGreet = "greet.Hello"
	idLabel = "label.Text"
)

var errBoom = errors.New("boom")

// fixture is an isolated locator, registry, and set of slots.
type fixture struct {
	loc      *core.Locator
	registry *core.Registry
	logs     *syncBuffer

	label *core.Slot[func() string]
	greet *core.Slot[func(name string) string]
	add   *core.Slot[func(a, b int) (int, error)]
}

func newFixture(t *testing.T, opts ...core.Option) *fixture {
	t.Helper()

	loc := core.NewLocator()
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fix := &fixture{
		loc:  loc,
		logs: logs,
		label: core.NewSlotIn(loc, idLabel, func() string {
			return "real"
		}),
		greet: core.NewSlotIn(loc, idGreet, func(name string) string {
			return "hello " + name
		}),
		add: core.NewSlotIn(loc, idAdd, func(a, b int) (int, error) {
			return a + b, nil
		}),
	}

	fix.registry = core.New(append([]core.Option{core.WithLocator(loc), core.WithLogger(logger)}, opts...)...)

	return fix
}

// letterFactory builds a Mock returning "A", or the first argument when given.
func letterFactory(args ...any) (any, error) {
	value := "A"
	if len(args) > 0 {
		value, _ = args[0].(string)
	}

	return core.NewMock(value), nil
}

// scopeRecorder is a Scope that records its transitions into a shared log.
type scopeRecorder struct {
	name     string
	log      *[]string
	value    any
	enterErr error
	exitErr  error
}

func (s *scopeRecorder) Enter() (any, error) {
	*s.log = append(*s.log, "enter "+s.name)

	if s.enterErr != nil {
		return nil, s.enterErr
	}

	return s.value, nil
}

func (s *scopeRecorder) Exit() error {
	*s.log = append(*s.log, "exit "+s.name)

	return s.exitErr
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}
