package fetch

import (
	"context"
	"sync"
	"time"

	"contentdesk/internal/logging"
)

const DefaultDebounce = 300 * time.Millisecond

type Opts[T any] struct {
	// Fetch retrieves a full snapshot. It is called from a background goroutine.
	Fetch func(ctx context.Context) (T, error)
	// Debounce coalesces Notify calls; defaults to DefaultDebounce.
	Debounce time.Duration

	OnLoad  func(T)
	OnError func(error)
	Log     *logging.Logger
}

// Loader fetches record snapshots for one mounted view.
//
// Mount issues at most one initial fetch per mount. Notify schedules a debounced
// re-fetch (anchor navigation). Refresh fetches immediately (after a save). Every
// request gets a sequence number and a response older than the newest one already
// delivered is dropped, so a slow early request can never overwrite a later one.
// A failed fetch keeps the previous snapshot and is reported through OnError.
type Loader[T any] struct {
	fetch    func(ctx context.Context) (T, error)
	debounce time.Duration
	onLoad   func(T)
	onError  func(error)
	log      *logging.Logger

	mu        sync.Mutex
	timer     *time.Timer
	mounted   bool
	fetched   bool
	seq       uint64
	delivered uint64
	data      T
	hasData   bool
	lastErr   error
	inflight  sync.WaitGroup
}

func NewLoader[T any](opts Opts[T]) *Loader[T] {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Loader[T]{
		fetch:    opts.Fetch,
		debounce: debounce,
		onLoad:   opts.OnLoad,
		onError:  opts.OnError,
		log:      opts.Log,
	}
}

// Mount starts the initial fetch unless one already ran for this mount. It reports
// whether a fetch was issued.
func (l *Loader[T]) Mount() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	l.mounted = true
	if l.fetched {
		l.mu.Unlock()
		return false
	}
	l.fetched = true
	seq := l.nextSeqLocked()
	l.mu.Unlock()

	l.start(seq)
	return true
}

// Unmount ends the mount lifecycle. Pending debounced fetches are cancelled and
// responses to requests issued before Unmount are dropped.
func (l *Loader[T]) Unmount() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.mounted = false
	l.fetched = false
	if l.timer != nil {
		l.timer.Stop()
	}
	l.delivered = l.seq
	l.mu.Unlock()
}

// Refresh fetches immediately.
func (l *Loader[T]) Refresh() {
	if l == nil {
		return
	}
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return
	}
	seq := l.nextSeqLocked()
	l.mu.Unlock()

	l.start(seq)
}

// Notify schedules a re-fetch after the debounce window. Calls inside the window
// collapse into a single fetch.
func (l *Loader[T]) Notify() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return
	}
	if l.timer == nil {
		l.timer = time.AfterFunc(l.debounce, l.onTimer)
		return
	}
	l.timer.Reset(l.debounce)
}

// Snapshot returns the last delivered records. ok is false before the first load.
func (l *Loader[T]) Snapshot() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data, l.hasData
}

// Err returns the error of the most recent delivered request, if it failed.
func (l *Loader[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Wait blocks until every issued fetch has returned.
func (l *Loader[T]) Wait() {
	l.inflight.Wait()
}

// Close unmounts and waits for in-flight fetches.
func (l *Loader[T]) Close() {
	if l == nil {
		return
	}
	l.Unmount()
	l.Wait()
}

func (l *Loader[T]) onTimer() {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return
	}
	seq := l.nextSeqLocked()
	l.mu.Unlock()

	l.start(seq)
}

func (l *Loader[T]) nextSeqLocked() uint64 {
	l.seq++
	return l.seq
}

func (l *Loader[T]) start(seq uint64) {
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		l.run(seq)
	}()
}

func (l *Loader[T]) run(seq uint64) {
	if l.fetch == nil {
		return
	}
	l.log.Debug("fetch start", "seq", seq)
	data, err := l.fetch(context.Background())

	l.mu.Lock()
	if seq <= l.delivered {
		l.mu.Unlock()
		l.log.Debug("fetch stale; dropped", "seq", seq)
		return
	}
	l.delivered = seq
	l.lastErr = err
	if err == nil {
		l.data = data
		l.hasData = true
	}
	onLoad, onError := l.onLoad, l.onError
	l.mu.Unlock()

	if err != nil {
		l.log.Warn("fetch failed", "seq", seq, "err", err)
		if onError != nil {
			onError(err)
		}
		return
	}
	if onLoad != nil {
		onLoad(data)
	}
}
