package optimize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// Значения по умолчанию для прогресса
const (
	DefaultInterval = 300 * time.Millisecond
	DefaultStep     = 10
)

// MaxProgress прогресс, при котором запускается оценка
const MaxProgress = 100

// Params параметры запуска оптимизации
type Params = pkgapi.OptimizeRequest

// Snapshot состояние контроллера на момент события
type Snapshot struct {
	Err      error
	Result   *pkgapi.OptimizationResult
	Artifact Artifact
	State    State
	Progress int
}

// Controller ведет один документ через прогоны оптимизации.
// Все переходы сериализованы мьютексом, тики чужих прогонов отбрасываются по номеру поколения.
type Controller struct {
	evaluator Evaluator
	scheduler Scheduler
	logger    *slog.Logger

	done       chan struct{}
	stopTicker func()
	cancelEval context.CancelFunc
	result     *pkgapi.OptimizationResult
	err        error

	subscribers []subscriber
	pending     []Snapshot

	artifact   Artifact
	params     Params
	interval   time.Duration
	generation uint64
	startScore float64
	step       int
	progress   int
	nextSubID  int
	state      State
	evaluating bool
	draining   bool

	mu sync.Mutex
}

type subscriber struct {
	fn func(Snapshot)
	id int
}

// Option настраивает Controller
type Option func(*Controller)

// WithScheduler подменяет планировщик тиков
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

// WithInterval меняет интервал между тиками
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.interval = d
	}
}

// WithStep меняет шаг прогресса
func WithStep(step int) Option {
	return func(c *Controller) {
		c.step = step
	}
}

// WithLogger задает логгер
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController создает контроллер в состоянии Idle, привязанный к artifact
func NewController(artifact Artifact, evaluator Evaluator, opts ...Option) *Controller {
	c := &Controller{
		artifact:  artifact,
		evaluator: evaluator,
		scheduler: TickerScheduler{},
		interval:  DefaultInterval,
		step:      DefaultStep,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.step <= 0 {
		c.step = DefaultStep
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	return c
}

// Start запускает прогон. Допустим только из Idle.
// Некорректный тип оптимизации возвращает *ValidationError, состояние не меняется.
func (c *Controller) Start(params Params) error {
	c.mu.Lock()

	if c.state != Idle {
		state := c.state
		c.mu.Unlock()
		return &InvalidStateError{Op: "start", State: state}
	}
	if err := params.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}

	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(context.Background())

	c.state = Running
	c.progress = 0
	c.params = params
	c.result = nil
	c.err = nil
	c.evaluating = false
	c.startScore = c.artifact.QualityScore
	c.cancelEval = cancel
	c.done = make(chan struct{})
	c.stopTicker = c.scheduler.Every(c.interval, func() {
		c.tick(ctx, gen)
	})

	c.logger.Info("optimization started",
		"artifact", c.artifact.ID,
		"kind", string(c.artifact.Kind),
		"type", string(params.OptimizationType),
	)
	c.emitLocked()
	c.mu.Unlock()

	c.flush()
	return nil
}

// Cancel останавливает прогон. Допустим только из Running.
// После возврата тики, результат и Completed для этого прогона не наблюдаются.
func (c *Controller) Cancel() error {
	c.mu.Lock()

	if c.state != Running {
		state := c.state
		c.mu.Unlock()
		return &InvalidStateError{Op: "cancel", State: state}
	}

	c.generation++
	c.stopLocked()
	c.state = Cancelled
	c.result = nil
	close(c.done)

	c.logger.Info("optimization cancelled", "artifact", c.artifact.ID, "progress", c.progress)
	c.emitLocked()
	c.mu.Unlock()

	c.flush()
	return nil
}

// Reset возвращает контроллер в Idle и привязывает его к artifact.
// Допустим только из Completed, Cancelled или Failed.
func (c *Controller) Reset(artifact Artifact) error {
	c.mu.Lock()

	if !c.state.Terminal() {
		state := c.state
		c.mu.Unlock()
		return &InvalidStateError{Op: "reset", State: state}
	}

	c.state = Idle
	c.progress = 0
	c.result = nil
	c.err = nil
	c.artifact = artifact
	c.params = Params{}

	c.emitLocked()
	c.mu.Unlock()

	c.flush()
	return nil
}

// Snapshot возвращает текущее состояние
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe регистрирует наблюдателя. Наблюдатели получают события по одному, в порядке переходов.
// Возвращает функцию отписки.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubID++
	id := c.nextSubID
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subscribers = slices.DeleteFunc(c.subscribers, func(s subscriber) bool {
			return s.id == id
		})
	}
}

// Wait блокируется до завершения текущего прогона
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	done := c.done
	state := c.state
	c.mu.Unlock()

	if done == nil || state == Idle {
		return Snapshot{}, &InvalidStateError{Op: "wait for", State: state}
	}

	select {
	case <-done:
		return c.Snapshot(), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (c *Controller) tick(ctx context.Context, gen uint64) {
	c.mu.Lock()

	// Тик отмененного или чужого прогона
	if gen != c.generation || c.state != Running || c.evaluating {
		c.mu.Unlock()
		return
	}

	c.progress = min(c.progress+c.step, MaxProgress)
	c.emitLocked()

	if c.progress < MaxProgress {
		c.mu.Unlock()
		c.flush()
		return
	}

	// 100%: останавливаем тикер и считаем результат вне блокировки
	c.stopTicker()
	c.stopTicker = nil
	c.evaluating = true
	artifact := c.artifact
	params := c.params
	c.mu.Unlock()
	c.flush()

	result, err := c.evaluator.Evaluate(ctx, artifact, params)
	c.finish(gen, result, err)
}

func (c *Controller) finish(gen uint64, result *pkgapi.OptimizationResult, err error) {
	c.mu.Lock()

	// Прогон отменен во время оценки
	if gen != c.generation || c.state != Running {
		c.mu.Unlock()
		return
	}

	if err == nil {
		err = checkResult(result)
	}

	c.evaluating = false
	c.stopLocked()
	close(c.done)

	if err != nil {
		c.state = Failed
		c.err = err
		c.logger.Error("optimization failed", "artifact", c.artifact.ID, "error", err)
	} else {
		res := cloneResult(result)
		res.OriginalScore = c.startScore
		c.result = res
		c.artifact = c.artifact.optimized(res.NewScore)
		c.state = Completed
		c.logger.Info("optimization completed",
			"artifact", c.artifact.ID,
			"original_score", res.OriginalScore,
			"new_score", res.NewScore,
		)
	}

	c.emitLocked()
	c.mu.Unlock()

	c.flush()
}

// stopLocked останавливает тикер и отменяет оценку текущего прогона
func (c *Controller) stopLocked() {
	if c.stopTicker != nil {
		c.stopTicker()
		c.stopTicker = nil
	}
	if c.cancelEval != nil {
		c.cancelEval()
		c.cancelEval = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:    c.state,
		Progress: c.progress,
		Artifact: c.artifact,
		Result:   cloneResult(c.result),
		Err:      c.err,
	}
}

func (c *Controller) emitLocked() {
	c.pending = append(c.pending, c.snapshotLocked())
}

// flush доставляет накопленные события.
// Доставкой занимается одна горутина, вложенные вызовы из наблюдателей только добавляют события.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	for len(c.pending) > 0 {
		batch := c.pending
		c.pending = nil
		subs := slices.Clone(c.subscribers)
		c.mu.Unlock()

		for _, snap := range batch {
			for _, s := range subs {
				s.fn(snap)
			}
		}

		c.mu.Lock()
	}

	c.draining = false
	c.mu.Unlock()
}

func checkResult(result *pkgapi.OptimizationResult) error {
	if result == nil {
		return fmt.Errorf("evaluator returned no result")
	}
	if len(result.Improvements) == 0 || len(result.Suggestions) == 0 {
		return ErrEmptyResult
	}
	if err := validNewScore(result.NewScore); err != nil {
		return err
	}
	return nil
}

func validNewScore(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return &ValidationError{Field: "newScore", Reason: "must be within [0,1]"}
	}
	return nil
}

func cloneResult(r *pkgapi.OptimizationResult) *pkgapi.OptimizationResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Improvements = slices.Clone(r.Improvements)
	out.Suggestions = slices.Clone(r.Suggestions)
	return &out
}
