package scan

import (
	"runtime"
	"sync"
)

// Dispatcher runs closures on the interaction queue.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs each closure immediately on the caller's goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// UIQueue is a serial interaction queue: a dedicated goroutine, locked to its
// OS thread, runs posted closures one at a time in posting order.
type UIQueue struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// NewUIQueue starts an interaction queue with room for buffer pending closures.
func NewUIQueue(buffer int) *UIQueue {
	q := &UIQueue{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	q.wg.Add(1)
	go q.loop()
	return q
}

func (q *UIQueue) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer q.wg.Done()

	for {
		select {
		case fn := <-q.tasks:
			fn()
		case <-q.done:
			// run what was posted before Close
			for {
				select {
				case fn := <-q.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Dispatch posts fn to the queue. Closures posted after Close are dropped.
func (q *UIQueue) Dispatch(fn func()) {
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.tasks <- fn:
	case <-q.done:
	}
}

// Sync posts fn and waits for it to run. It returns false if the queue is
// closed before fn runs. Must not be called from the queue itself.
func (q *UIQueue) Sync(fn func()) bool {
	ran := make(chan struct{})
	q.Dispatch(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
		return true
	case <-q.done:
		q.wg.Wait()
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close stops the queue after running the closures already posted.
func (q *UIQueue) Close() {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
}
