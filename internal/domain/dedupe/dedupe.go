// Package dedupe remembers client request ids so a retried chat submission
// is answered once.
package dedupe

import (
	"container/list"
	"context"
	"strings"
	"sync"
)

const defaultMaxSize = 256

// Deduper records seen request ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. Blank ids are never recorded and never reported as seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so the request can be retried, used when the turn
	// fails before it completes.
	Unrecord(ctx context.Context, id string)

	Size() int
}

// window is a bounded set that evicts the oldest id first.
type window struct {
	mu      sync.Mutex
	order   *list.List
	index   map[string]*list.Element
	maxSize int
}

// New creates a deduper holding at most WithMaxSize ids.
func New(opts ...Option) Deduper {
	w := &window{
		order:   list.New(),
		index:   make(map[string]*list.Element),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *window) SeenAndRecord(_ context.Context, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index[id]; ok {
		return true
	}
	if w.maxSize > 0 && w.order.Len() >= w.maxSize {
		oldest := w.order.Back()
		w.order.Remove(oldest)
		delete(w.index, oldest.Value.(string))
	}
	w.index[id] = w.order.PushFront(id)
	return false
}

func (w *window) Unrecord(_ context.Context, id string) {
	id = strings.TrimSpace(id)
	w.mu.Lock()
	defer w.mu.Unlock()
	if el, ok := w.index[id]; ok {
		w.order.Remove(el)
		delete(w.index, id)
	}
}

func (w *window) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.order.Len()
}
