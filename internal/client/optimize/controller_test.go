package optimize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// manualScheduler тикает только по команде теста
type manualScheduler struct {
	fn       func()
	interval time.Duration
	starts   int
	stops    int
	stopped  bool
	mu       sync.Mutex
}

func (m *manualScheduler) Every(interval time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	m.interval = interval
	m.starts++
	m.stopped = false
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.stops++
		m.stopped = true
	}
}

// Tick вызывает fn, если планировщик не остановлен
func (m *manualScheduler) Tick() {
	m.mu.Lock()
	fn, stopped := m.fn, m.stopped
	m.mu.Unlock()
	if fn != nil && !stopped {
		fn()
	}
}

// FireStale вызывает fn даже после остановки, как тик, уже находившийся в полете
func (m *manualScheduler) FireStale() {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *manualScheduler) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// newEvaluatorMock возвращает мок, отдающий заготовленный результат
func newEvaluatorMock(result *pkgapi.OptimizationResult, err error) *EvaluatorMock {
	return &EvaluatorMock{
		EvaluateFunc: func(ctx context.Context, artifact Artifact, params Params) (*pkgapi.OptimizationResult, error) {
			return result, err
		},
	}
}

// blockingEvaluator ждет отмены контекста или release
type blockingEvaluator struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func newBlockingEvaluator() *blockingEvaluator {
	return &blockingEvaluator{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
}

func (b *blockingEvaluator) Evaluate(ctx context.Context, artifact Artifact, params Params) (*pkgapi.OptimizationResult, error) {
	close(b.started)
	select {
	case <-ctx.Done():
		b.ctxErr <- ctx.Err()
		return nil, ctx.Err()
	case <-b.release:
		return sampleResult(), nil
	}
}

func sampleResult() *pkgapi.OptimizationResult {
	return &pkgapi.OptimizationResult{
		OriginalScore: 0.45,
		NewScore:      0.78,
		Improvements:  []string{"Enhanced professional summary"},
		Suggestions:   []string{"Add more quantifiable achievements"},
	}
}

func testResume() *pkgapi.Resume {
	return &pkgapi.Resume{
		ID:           "r-1",
		Title:        "Backend Engineer",
		QualityScore: 0.45,
		Content: pkgapi.ResumeContent{
			Summary:    "Go developer building distributed systems",
			Experience: "5 years of Go, Kubernetes and PostgreSQL",
		},
		Skills: pkgapi.ResumeSkills{TechnicalSkills: []string{"Go", "Kubernetes"}},
	}
}

// recorder собирает события наблюдателя
type recorder struct {
	events []Snapshot
	mu     sync.Mutex
}

func (r *recorder) record(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) Events() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.events...)
}

func newTestController(evaluator Evaluator) (*Controller, *manualScheduler, *recorder) {
	scheduler := &manualScheduler{}
	c := NewController(FromResume(testResume()), evaluator, WithScheduler(scheduler))
	rec := &recorder{}
	c.Subscribe(rec.record)
	return c, scheduler, rec
}

func tickN(s *manualScheduler, n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

func TestController_InitialState(t *testing.T) {
	c := NewController(FromResume(testResume()), newEvaluatorMock(nil, nil))

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, 0, snap.Progress)
	assert.Nil(t, snap.Result)
	assert.Equal(t, DefaultInterval, c.interval)
	assert.Equal(t, DefaultStep, c.step)
}

func TestController_RunToCompletion(t *testing.T) {
	evaluator := newEvaluatorMock(sampleResult(), nil)
	c, scheduler, rec := newTestController(evaluator)

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeComprehensive}))
	assert.Equal(t, Running, c.Snapshot().State)
	assert.Equal(t, 300*time.Millisecond, scheduler.interval)

	// 9 тиков: 90%, результата еще нет
	tickN(scheduler, 9)
	snap := c.Snapshot()
	assert.Equal(t, Running, snap.State)
	assert.Equal(t, 90, snap.Progress)
	assert.Nil(t, snap.Result)
	assert.Empty(t, evaluator.EvaluateCalls())

	scheduler.Tick()

	snap = c.Snapshot()
	assert.Equal(t, Completed, snap.State)
	assert.Equal(t, 100, snap.Progress)
	require.NotNil(t, snap.Result)
	assert.InDelta(t, 0.45, snap.Result.OriginalScore, 1e-9)
	assert.InDelta(t, 0.78, snap.Result.NewScore, 1e-9)
	assert.NotEmpty(t, snap.Result.Improvements)
	assert.NotEmpty(t, snap.Result.Suggestions)
	assert.Len(t, evaluator.EvaluateCalls(), 1)
	assert.True(t, scheduler.Stopped())

	// Отчетный документ помечен как оптимизированный
	assert.True(t, snap.Artifact.AIOptimized)
	assert.InDelta(t, 0.78, snap.Artifact.QualityScore, 1e-9)
	require.NotNil(t, snap.Artifact.Resume)
	assert.True(t, snap.Artifact.Resume.AIOptimized)
	assert.InDelta(t, 0.78, snap.Artifact.Resume.QualityScore, 1e-9)

	// Лишние тики после завершения ничего не меняют
	scheduler.FireStale()
	assert.Len(t, evaluator.EvaluateCalls(), 1)

	// Прогресс растет шагами по 10 и заканчивается Completed
	events := rec.Events()
	require.Len(t, events, 12)
	assert.Equal(t, Running, events[0].State)
	assert.Equal(t, 0, events[0].Progress)
	for i := 1; i <= 10; i++ {
		assert.Equal(t, i*10, events[i].Progress)
		assert.Equal(t, Running, events[i].State)
	}
	assert.Equal(t, Completed, events[11].State)
}

func TestController_OriginalScoreTakenAtStart(t *testing.T) {
	result := sampleResult()
	result.OriginalScore = 0.99
	c, scheduler, _ := newTestController(newEvaluatorMock(result, nil))

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeContent}))
	tickN(scheduler, 10)

	assert.InDelta(t, 0.45, c.Snapshot().Result.OriginalScore, 1e-9)
}

func TestController_ProgressClampedAt100(t *testing.T) {
	scheduler := &manualScheduler{}
	c := NewController(FromResume(testResume()), newEvaluatorMock(sampleResult(), nil),
		WithScheduler(scheduler), WithStep(30), WithInterval(time.Millisecond))
	rec := &recorder{}
	c.Subscribe(rec.record)

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeStructure}))
	tickN(scheduler, 4)

	var progress []int
	for _, e := range rec.Events() {
		if e.State == Running {
			progress = append(progress, e.Progress)
		}
	}
	assert.Equal(t, []int{0, 30, 60, 90, 100}, progress)
	assert.Equal(t, Completed, c.Snapshot().State)
}

func TestController_StartValidation(t *testing.T) {
	tests := []struct {
		name  string
		typ   pkgapi.OptimizationType
		field string
	}{
		{name: "unknown type", typ: "magic", field: "optimizationType"},
		{name: "empty type", typ: "", field: "optimizationType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, scheduler, rec := newTestController(newEvaluatorMock(nil, nil))

			err := c.Start(Params{OptimizationType: tt.typ})

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Equal(t, Idle, c.Snapshot().State)
			assert.Equal(t, 0, scheduler.starts)
			assert.Empty(t, rec.Events())
		})
	}
}

func TestController_AllTypesAccepted(t *testing.T) {
	for _, typ := range pkgapi.OptimizationTypes {
		t.Run(string(typ), func(t *testing.T) {
			c, _, _ := newTestController(newEvaluatorMock(sampleResult(), nil))
			assert.NoError(t, c.Start(Params{OptimizationType: typ}))
		})
	}
}

func TestController_InvalidTransitions(t *testing.T) {
	c, scheduler, _ := newTestController(newEvaluatorMock(sampleResult(), nil))
	params := Params{OptimizationType: pkgapi.OptimizeKeywords}

	var stateErr *InvalidStateError

	// Idle
	require.ErrorAs(t, c.Cancel(), &stateErr)
	assert.Equal(t, "cancel", stateErr.Op)
	assert.Equal(t, Idle, stateErr.State)
	require.ErrorAs(t, c.Reset(FromResume(testResume())), &stateErr)

	// Running
	require.NoError(t, c.Start(params))
	require.ErrorAs(t, c.Start(params), &stateErr)
	assert.Equal(t, Running, stateErr.State)
	require.ErrorAs(t, c.Reset(FromResume(testResume())), &stateErr)
	assert.Equal(t, 1, scheduler.starts)

	// Completed
	tickN(scheduler, 10)
	require.Equal(t, Completed, c.Snapshot().State)
	require.ErrorAs(t, c.Start(params), &stateErr)
	assert.Equal(t, Completed, stateErr.State)
	require.ErrorAs(t, c.Cancel(), &stateErr)
	assert.Contains(t, stateErr.Error(), "completed")

	// Reset разрешает новый прогон
	require.NoError(t, c.Reset(FromResume(testResume())))
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, 0, snap.Progress)
	assert.Nil(t, snap.Result)
	assert.NoError(t, c.Start(params))
	assert.Equal(t, 2, scheduler.starts)
}

func TestController_Cancel(t *testing.T) {
	evaluator := newEvaluatorMock(sampleResult(), nil)
	c, scheduler, rec := newTestController(evaluator)

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeComprehensive}))
	tickN(scheduler, 5)

	require.NoError(t, c.Cancel())
	assert.True(t, scheduler.Stopped())

	snap := c.Snapshot()
	assert.Equal(t, Cancelled, snap.State)
	assert.Equal(t, 50, snap.Progress)
	assert.Nil(t, snap.Result)

	// Тик, гонявшийся с Cancel, отбрасывается
	eventsBefore := len(rec.Events())
	for i := 0; i < 10; i++ {
		scheduler.FireStale()
	}
	assert.Equal(t, Cancelled, c.Snapshot().State)
	assert.Equal(t, 50, c.Snapshot().Progress)
	assert.Empty(t, evaluator.EvaluateCalls())
	assert.Len(t, rec.Events(), eventsBefore)

	events := rec.Events()
	assert.Equal(t, Cancelled, events[len(events)-1].State)
	for _, e := range events {
		assert.NotEqual(t, Completed, e.State)
	}
}

func TestController_CancelDuringEvaluation(t *testing.T) {
	evaluator := newBlockingEvaluator()
	c, scheduler, rec := newTestController(evaluator)

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeComprehensive}))
	tickN(scheduler, 9)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		scheduler.Tick()
	}()
	<-evaluator.started

	require.NoError(t, c.Cancel())

	select {
	case err := <-evaluator.ctxErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("evaluation context was not cancelled")
	}
	<-finished

	snap := c.Snapshot()
	assert.Equal(t, Cancelled, snap.State)
	assert.Nil(t, snap.Result)
	assert.Nil(t, snap.Err)
	for _, e := range rec.Events() {
		assert.NotEqual(t, Completed, e.State)
		assert.NotEqual(t, Failed, e.State)
	}
}

func TestController_EvaluatorFailure(t *testing.T) {
	tests := []struct {
		evaluator *EvaluatorMock
		wantErr   error
		name      string
	}{
		{
			name:      "evaluator error",
			evaluator: newEvaluatorMock(nil, errors.New("server unavailable")),
		},
		{
			name:      "empty improvements",
			evaluator: newEvaluatorMock(&pkgapi.OptimizationResult{NewScore: 0.5, Suggestions: []string{"x"}}, nil),
			wantErr:   ErrEmptyResult,
		},
		{
			name:      "nil result",
			evaluator: newEvaluatorMock(nil, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, scheduler, _ := newTestController(tt.evaluator)

			require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeContent}))
			tickN(scheduler, 10)

			snap := c.Snapshot()
			assert.Equal(t, Failed, snap.State)
			require.Error(t, snap.Err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, snap.Err, tt.wantErr)
			}
			assert.Nil(t, snap.Result)
			assert.False(t, snap.Artifact.AIOptimized)

			// Failed терминальное состояние, выход через Reset
			var stateErr *InvalidStateError
			assert.ErrorAs(t, c.Start(Params{OptimizationType: pkgapi.OptimizeContent}), &stateErr)
			assert.NoError(t, c.Reset(FromResume(testResume())))
		})
	}
}

func TestController_SubscriberMayCancel(t *testing.T) {
	scheduler := &manualScheduler{}
	c := NewController(FromResume(testResume()), newEvaluatorMock(sampleResult(), nil), WithScheduler(scheduler))

	rec := &recorder{}
	c.Subscribe(func(s Snapshot) {
		rec.record(s)
		if s.State == Running && s.Progress == 50 {
			assert.NoError(t, c.Cancel())
		}
	})

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeComprehensive}))
	tickN(scheduler, 10)

	events := rec.Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, Cancelled, last.State)
	assert.Equal(t, 50, last.Progress)
	assert.Equal(t, 50, events[len(events)-2].Progress)
}

func TestController_Unsubscribe(t *testing.T) {
	scheduler := &manualScheduler{}
	c := NewController(FromResume(testResume()), newEvaluatorMock(sampleResult(), nil), WithScheduler(scheduler))

	rec := &recorder{}
	unsubscribe := c.Subscribe(rec.record)

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeComprehensive}))
	unsubscribe()
	tickN(scheduler, 10)

	assert.Len(t, rec.Events(), 1)
}

func TestController_Wait(t *testing.T) {
	c, scheduler, _ := newTestController(newEvaluatorMock(sampleResult(), nil))

	var stateErr *InvalidStateError
	_, err := c.Wait(context.Background())
	require.ErrorAs(t, err, &stateErr)

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeComprehensive}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go tickN(scheduler, 10)

	snap, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Completed, snap.State)
}

func TestController_WithTickerScheduler(t *testing.T) {
	resume := testResume()
	c := NewController(FromResume(resume), LocalEvaluator{}, WithInterval(time.Millisecond))

	require.NoError(t, c.Start(Params{OptimizationType: pkgapi.OptimizeKeywords, AdditionalRequirements: "Go, Terraform"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := c.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, Completed, snap.State)
	assert.Equal(t, MaxProgress, snap.Progress)
	require.NotNil(t, snap.Result)
	assert.GreaterOrEqual(t, snap.Result.NewScore, snap.Result.OriginalScore)

	// Исходный документ не меняется
	assert.False(t, resume.AIOptimized)
	assert.InDelta(t, 0.45, resume.QualityScore, 1e-9)
}

func TestTickerScheduler_Stop(t *testing.T) {
	var mu sync.Mutex
	var calls int
	stop := TickerScheduler{}.Every(time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0
	}, time.Second, time.Millisecond)

	stop()
	stop()

	// Даем возможному тику в полете завершиться
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	after := calls
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, calls)
}
