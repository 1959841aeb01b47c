package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines         int
	Duration           time.Duration
	Simulations        int
	Terminals          int // Simulations that ended on a decided position
	EvaluatorFallbacks int
	IsTreeReused       bool
}

type MoveMetric struct {
	Step     int
	Player   int // 0 or 1
	Position string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         string // Player name, empty on a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector gathers the statistics of one search. Counters may be bumped
// concurrently by the search goroutines.
type Collector interface {
	Start(goroutines int)
	SetTreeReused(value bool)
	AddSimulation()
	AddTerminal()
	AddEvaluatorFallback()
	Complete() SearchMetric
}

type collector struct {
	goroutines   int
	startTime    time.Time
	simulations  atomic.Int32
	terminals    atomic.Int32
	fallbacks    atomic.Int32
	isTreeReused atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReused(value bool) {
	m.isTreeReused.Store(value)
}

func (m *collector) Start(goroutines int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.simulations.Store(0)
	m.terminals.Store(0)
	m.fallbacks.Store(0)
}

func (m *collector) AddSimulation() {
	m.simulations.Add(1)
}

func (m *collector) AddTerminal() {
	m.terminals.Add(1)
}

func (m *collector) AddEvaluatorFallback() {
	m.fallbacks.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:         m.goroutines,
		Duration:           time.Since(m.startTime),
		Simulations:        int(m.simulations.Load()),
		Terminals:          int(m.terminals.Load()),
		EvaluatorFallbacks: int(m.fallbacks.Load()),
		IsTreeReused:       m.isTreeReused.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines int)     {}
func (m *dummyCollector) SetTreeReused(value bool) {}
func (m *dummyCollector) AddSimulation()           {}
func (m *dummyCollector) AddTerminal()             {}
func (m *dummyCollector) AddEvaluatorFallback()    {}
func (m *dummyCollector) Complete() SearchMetric   { return SearchMetric{} }
