package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ironsheep/scan-overlay-mcp/internal/capture"
	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
	"github.com/ironsheep/scan-overlay-mcp/internal/ocr"
)

var (
	// ErrBusy is returned when a pass is started while another is running.
	ErrBusy = errors.New("scan already in progress")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("orchestrator closed")

	// ErrMalformedObservation aborts a pass whose recognizer reported a
	// region without any candidate text or without a usable bounding box.
	ErrMalformedObservation = errors.New("malformed observation")

	// ErrCaptureCancelled is returned by HandleCapture when the user backed
	// out of the capture.
	ErrCaptureCancelled = errors.New("capture cancelled")

	// ErrNoPages is returned by HandleCapture for a capture without pages.
	ErrNoPages = errors.New("capture returned no pages")
)

// Presenter is the presentation surface a pass reports to. All methods are
// called through the orchestrator's Dispatcher.
type Presenter interface {
	ShowImage(img image.Image)
	ClearOverlays()
	LoadOverlays(boxes []geometry.Rect)
	SetText(text string)
	SetTriggerEnabled(enabled bool)

	// Layout returns the rectangle the current image occupies and the
	// bounds of its container.
	Layout() (display geometry.Rect, container geometry.Size)
}

// Region is one recognized line with its box in both coordinate spaces.
type Region struct {
	Text       string                 `json:"text"`
	Confidence float64                `json:"confidence"`
	Normalized geometry.NormalizedBox `json:"normalized"`
	Screen     geometry.Rect          `json:"screen"`
}

// Result is the outcome of one pass.
type Result struct {
	// Text holds every recognized line, each followed by a line break.
	Text      string        `json:"text"`
	Regions   []Region      `json:"regions"`
	Display   geometry.Rect `json:"display_rect"`
	Container geometry.Size `json:"container"`
	Engine    string        `json:"engine"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Err       error         `json:"-"`
}

// Options configures an Orchestrator. Zero fields take defaults.
type Options struct {
	// Config is passed unchanged to every Recognize call.
	// Default: ocr.DefaultConfig().
	Config *ocr.Config

	// Mapper converts normalized boxes to screen boxes.
	// Default: geometry.DefaultMapper().
	Mapper *geometry.Mapper

	// Dispatcher runs presenter mutations. Default: Inline.
	Dispatcher Dispatcher

	// Logger receives diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

type job struct {
	img image.Image
	out chan Result
}

// Orchestrator runs recognition passes on a single background worker.
type Orchestrator struct {
	recognizer ocr.Recognizer
	presenter  Presenter
	cfg        ocr.Config
	mapper     geometry.Mapper
	ui         Dispatcher
	logger     *slog.Logger

	idle   atomic.Bool
	closed atomic.Bool

	// mu orders the hand-off of a job against Close.
	mu sync.Mutex

	jobs    chan job
	done    chan struct{}
	started sync.Once
	stopped sync.Once
	wg      sync.WaitGroup
}

// New creates an Orchestrator. Call Start before the first Process.
func New(recognizer ocr.Recognizer, presenter Presenter, opts Options) *Orchestrator {
	o := &Orchestrator{
		recognizer: recognizer,
		presenter:  presenter,
		cfg:        ocr.DefaultConfig(),
		mapper:     geometry.DefaultMapper(),
		ui:         opts.Dispatcher,
		logger:     opts.Logger,
		jobs:       make(chan job, 1),
		done:       make(chan struct{}),
	}
	if opts.Config != nil {
		o.cfg = *opts.Config
	}
	if opts.Mapper != nil {
		o.mapper = *opts.Mapper
	}
	if o.ui == nil {
		o.ui = Inline
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", "scan", "engine", recognizer.Name())
	o.idle.Store(true)
	return o
}

// Start launches the worker. Calling it more than once has no effect.
func (o *Orchestrator) Start() {
	o.started.Do(func() {
		o.wg.Add(1)
		go o.worker()
	})
}

// Close stops the worker after the in-flight pass, if any, completes. Passes
// queued but not yet started complete with ErrClosed.
func (o *Orchestrator) Close() {
	o.stopped.Do(func() {
		o.mu.Lock()
		o.closed.Store(true)
		o.mu.Unlock()

		close(o.done)
		o.wg.Wait()
		for {
			select {
			case j := <-o.jobs:
				o.complete(j, Result{Engine: o.recognizer.Name(), Err: ErrClosed})
			default:
				return
			}
		}
	})
}

// TriggerEnabled reports whether a new pass may be started.
func (o *Orchestrator) TriggerEnabled() bool {
	return o.idle.Load() && !o.closed.Load()
}

// Config returns the recognition configuration used for every pass.
func (o *Orchestrator) Config() ocr.Config { return o.cfg }

// HandleCapture starts a pass over the first page of a successful capture.
// Cancelled, failed and empty captures are logged and start nothing.
func (o *Orchestrator) HandleCapture(res capture.Result) (<-chan Result, error) {
	switch {
	case res.Err != nil:
		o.logger.Error("capture failed", "error", res.Err)
		return nil, fmt.Errorf("capture failed: %w", res.Err)
	case res.Cancelled:
		o.logger.Debug("capture cancelled")
		return nil, ErrCaptureCancelled
	}

	page, ok := res.FirstPage()
	if !ok {
		o.logger.Info("capture returned no pages")
		return nil, ErrNoPages
	}
	if len(res.Pages) > 1 {
		o.logger.Debug("using first page only", "pages", len(res.Pages))
	}
	return o.Process(page)
}

// Process starts a recognition pass over img. The returned channel receives
// exactly one Result and is then closed.
func (o *Orchestrator) Process(img image.Image) (<-chan Result, error) {
	if img == nil {
		return nil, errors.New("no image to process")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed.Load() {
		return nil, ErrClosed
	}
	if !o.idle.CompareAndSwap(true, false) {
		return nil, ErrBusy
	}

	out := make(chan Result, 1)
	o.ui.Dispatch(func() {
		o.presenter.ShowImage(img)
		o.presenter.ClearOverlays()
		o.presenter.SetText("")
		o.presenter.SetTriggerEnabled(false)
	})

	o.jobs <- job{img: img, out: out}
	return out, nil
}

func (o *Orchestrator) worker() {
	defer o.wg.Done()
	for {
		select {
		case j := <-o.jobs:
			o.run(j)
		case <-o.done:
			return
		}
	}
}

func (o *Orchestrator) run(j job) {
	start := time.Now()
	b := j.img.Bounds()
	o.logger.Debug("recognition started", "width", b.Dx(), "height", b.Dy(), "level", o.cfg.Level)

	res := Result{Engine: o.recognizer.Name()}
	obs, err := o.recognizer.Recognize(context.Background(), j.img, o.cfg)
	if err != nil {
		o.logger.Error("recognition failed", "error", err)
		res.Err = fmt.Errorf("recognition failed: %w", err)
	} else {
		res.Text, res.Regions, res.Err = o.collect(obs)
		if res.Err != nil {
			o.logger.Error("recognition aborted", "error", res.Err)
			res.Text, res.Regions = "", nil
		}
	}
	res.Elapsed = time.Since(start)

	o.complete(j, res)
}

// collect builds the text block and one region per observation. Any
// observation without a top candidate or a valid box aborts the pass.
func (o *Orchestrator) collect(obs []ocr.Observation) (string, []Region, error) {
	var sb strings.Builder
	regions := make([]Region, 0, len(obs))

	for i, ob := range obs {
		top, ok := ob.TopCandidate()
		if !ok {
			return "", nil, fmt.Errorf("%w: observation %d has no candidate", ErrMalformedObservation, i)
		}
		if top.Box == nil {
			return "", nil, fmt.Errorf("%w: observation %d (%q) has no bounding box", ErrMalformedObservation, i, top.Text)
		}
		if !top.Box.Valid() {
			return "", nil, fmt.Errorf("%w: observation %d has box %s outside the unit square", ErrMalformedObservation, i, top.Box)
		}

		sb.WriteString(top.Text)
		sb.WriteString("\n")
		regions = append(regions, Region{
			Text:       top.Text,
			Confidence: top.Confidence,
			Normalized: *top.Box,
		})
	}
	return sb.String(), regions, nil
}

// complete hands res to the interaction queue: the trigger comes back on,
// and on success the text and overlays are shown.
func (o *Orchestrator) complete(j job, res Result) {
	o.ui.Dispatch(func() {
		o.presenter.SetTriggerEnabled(true)
		o.idle.Store(true)

		if res.Err == nil {
			o.presenter.SetText(res.Text)

			display, container := o.presenter.Layout()
			screens := make([]geometry.Rect, len(res.Regions))
			for i := range res.Regions {
				res.Regions[i].Screen = o.mapper.ToScreen(res.Regions[i].Normalized, display, container)
				screens[i] = res.Regions[i].Screen
			}
			o.presenter.LoadOverlays(screens)
			res.Display, res.Container = display, container

			o.logger.Info("recognition completed",
				"lines", strings.Count(res.Text, "\n"),
				"boxes", len(res.Regions),
				"elapsed", res.Elapsed)
		}

		j.out <- res
		close(j.out)
	})
}
