package searcher

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"gomoku/evaluator"
	"gomoku/experiments/metrics"
	"gomoku/game"
)

var (
	// ErrTreeInvariant means the tree and the board disagree. The move that
	// triggered it is rejected; the tree is left as it was.
	ErrTreeInvariant  = errors.New("search tree does not match the board")
	ErrGameOver       = errors.New("game is over")
	ErrNotPlayersTurn = errors.New("not this player's turn")
)

type Option func(t *Tree)

// TurnResult is the outcome of one search.
type TurnResult struct {
	Position game.Position
	Board    game.Board             // Board after the move
	Policy   [game.NumCells]float32 // Root visit distribution, zero for occupied or unvisited cells
	GameOver bool
	Draw     bool
	Metric   metrics.SearchMetric
}

// Tree is one player's search tree. The root is always the current position;
// after each move the matching child becomes the root and keeps its
// statistics. A Tree is driven by one caller at a time.
type Tree struct {
	player      game.Player
	board       game.Board
	root        *node
	evaluator   evaluator.Evaluator
	goroutines  int
	duration    time.Duration
	simulations int
	cpuct       float64
	selection   Selection
	temperature float64
	rng         *rand.Rand
	metrics     metrics.Collector
}

func WithSimulations(simulations int) Option {
	return func(t *Tree) {
		if simulations > 0 {
			t.simulations = simulations
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(t *Tree) {
		if duration > 0 {
			t.duration = duration
		}
	}
}

func WithGoroutines(goroutines int) Option {
	return func(t *Tree) {
		if goroutines > 0 {
			t.goroutines = goroutines
		}
	}
}

func WithCpuct(cpuct float64) Option {
	return func(t *Tree) {
		if cpuct > 0 {
			t.cpuct = cpuct
		}
	}
}

// WithSelection sets how the move is picked from the root visit counts. The
// temperature only matters for Proportional.
func WithSelection(selection Selection, temperature float64) Option {
	return func(t *Tree) {
		t.selection = selection
		if temperature > 0 {
			t.temperature = temperature
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(t *Tree) {
		t.rng = rand.New(rand.NewSource(seed))
	}
}

func WithMetrics() Option {
	return func(t *Tree) {
		t.metrics = metrics.NewCollector()
	}
}

// NewTree builds the tree of player for board with toMove to play. It panics
// when neither a simulation count nor a duration is given.
func NewTree(player game.Player, board game.Board, toMove game.Player, eval evaluator.Evaluator, options ...Option) *Tree {
	t := &Tree{ // Default values
		player:      player,
		board:       board,
		root:        newRoot(toMove),
		evaluator:   eval,
		goroutines:  1,
		cpuct:       DefaultCpuct,
		selection:   MaxVisits,
		temperature: 1,
		rng:         rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(t)
	}
	if t.simulations <= 0 && t.duration <= 0 {
		panic("Must specify search simulations or duration")
	}
	if eval == nil {
		panic("Must specify an evaluator")
	}
	return t
}

func (t *Tree) Player() game.Player {
	return t.player
}

// Board returns the tree's copy of the current position.
func (t *Tree) Board() game.Board {
	return t.board
}

// ToMove reports whose turn it is at the root.
func (t *Tree) ToMove() game.Player {
	return t.root.toMove
}

// Expand evaluates the root if it has not been expanded yet and returns its
// value for the side to move.
func (t *Tree) Expand() float64 {
	if t.root.terminal {
		return -t.root.outcome
	}
	board := t.board
	value, expanded := t.root.tryExpand(&board, t.evaluator, t.metrics)
	if !expanded {
		return 0
	}
	t.root.backup(-value, false)
	return value
}

// Turn searches board, which must be the tree's current position with the
// tree's player to move, then plays the chosen move.
func (t *Tree) Turn(board game.Board) (TurnResult, error) {
	if board != t.board {
		return TurnResult{}, fmt.Errorf("%w: board passed to turn differs from the tree's board", ErrTreeInvariant)
	}
	if t.root.terminal && t.root.outcome == Win {
		return TurnResult{GameOver: true}, ErrGameOver
	}
	if board.Full() {
		return TurnResult{Board: board, GameOver: true, Draw: true}, nil
	}
	if t.root.toMove != t.player {
		return TurnResult{}, fmt.Errorf("%w: %s to move", ErrNotPlayersTurn, t.root.toMove)
	}

	_, visits := t.root.stats()
	t.metrics.Start(t.goroutines)
	t.metrics.SetTreeReused(visits > 0)

	if !t.root.expanded.Load() {
		t.Expand()
	}
	t.search(t.root, board)
	metric := t.metrics.Complete()

	policy, counts := t.policy()
	ordinal := t.pick(counts)
	child := t.root.children[ordinal]

	next := board
	if err := next.Place(child.pos, t.player); err != nil {
		return TurnResult{}, fmt.Errorf("%w: %v", ErrTreeInvariant, err)
	}
	won := game.Wins(&next, t.player, child.pos)
	draw := !won && next.Full()

	t.board = next
	t.root = child

	log.Debug().
		Str("player", t.player.String()).
		Str("move", child.pos.String()).
		Int("simulations", metric.Simulations).
		Msg("turn")

	return TurnResult{
		Position: child.pos,
		Board:    next,
		Policy:   policy,
		GameOver: won || draw,
		Draw:     draw,
		Metric:   metric,
	}, nil
}

// UpdateTurn advances the tree past the opponent's move to pos. board is the
// position before the move.
func (t *Tree) UpdateTurn(board game.Board, pos game.Position) error {
	if board != t.board {
		return fmt.Errorf("%w: board passed to update differs from the tree's board", ErrTreeInvariant)
	}
	if t.root.terminal {
		return ErrGameOver
	}
	if t.root.toMove == t.player {
		return fmt.Errorf("%w: expected a move by %s", ErrNotPlayersTurn, t.player)
	}
	if !pos.Valid() {
		return fmt.Errorf("%w: row %d col %d", game.ErrInvalidPosition, pos.Row, pos.Col)
	}
	if !board.IsEmpty(pos) {
		return fmt.Errorf("%w: %s", game.ErrOccupied, pos)
	}

	if !t.root.expanded.Load() {
		t.Expand()
	}

	ordinal, err := board.Ordinal(pos)
	if err != nil {
		return err
	}
	child := t.root.child(ordinal)
	if child == nil || child.pos != pos {
		return fmt.Errorf("%w: no child for %s at ordinal %d", ErrTreeInvariant, pos, ordinal)
	}

	next := board
	if err := next.Place(pos, t.root.toMove); err != nil {
		return fmt.Errorf("%w: %v", ErrTreeInvariant, err)
	}
	t.board = next
	t.root = child
	if !child.terminal && !child.expanded.Load() {
		t.Expand()
	}
	return nil
}

func (t *Tree) search(root *node, board game.Board) {
	done := make(chan any)
	if t.duration > 0 {
		timer := time.AfterFunc(t.duration, func() { close(done) })
		defer timer.Stop()
	}

	if t.simulations > 0 {
		t.iterate(root, board, done)
	} else {
		t.countdown(root, board, done)
	}
}

func (t *Tree) iterate(root *node, board game.Board, done <-chan any) {
	task := make(chan any, t.simulations)
	for i := 0; i < t.simulations; i++ {
		task <- nil
	}
	close(task)

	var wg sync.WaitGroup
	for i := 0; i < t.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range task {
				select {
				case <-done:
					return
				default:
				}
				t.simulate(root, board)
				t.metrics.AddSimulation()
			}
		}()
	}

	wg.Wait()
}

func (t *Tree) countdown(root *node, board game.Board, done <-chan any) {
	var wg sync.WaitGroup
	for i := 0; i < t.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for {
				select {
				case <-done:
					return
				default:
					t.simulate(root, board)
					t.metrics.AddSimulation()
				}
			}
		}()
	}

	wg.Wait()
}

// simulate runs one selection, expansion and backup pass from root. board is
// a private copy.
func (t *Tree) simulate(root *node, board game.Board) {
	path := []*node{root}
	n := root
	var value float64 // For the player who moved into n
	for {
		if n.terminal {
			value = n.outcome
			t.metrics.AddTerminal()
			break
		}
		if !n.expanded.Load() {
			if v, ok := n.tryExpand(&board, t.evaluator, t.metrics); ok {
				value = -v
				break
			}
		}
		child := n.selectChild(t.cpuct)
		// Children only cover empty cells of this position
		_ = board.Place(child.pos, n.toMove)
		path = append(path, child)
		n = child
	}
	backup(path, value)
}

func backup(path []*node, value float64) {
	for i := len(path) - 1; i >= 0; i-- {
		path[i].backup(value, i > 0)
		value = -value
	}
}

// policy returns the root visit distribution by cell and the raw counts by
// ordinal.
func (t *Tree) policy() ([game.NumCells]float32, []float64) {
	var policy [game.NumCells]float32
	counts := make([]float64, len(t.root.children))
	total := 0.0
	for i, child := range t.root.children {
		_, visits := child.stats()
		counts[i] = visits
		total += visits
	}
	if total > 0 {
		for i, child := range t.root.children {
			policy[child.pos.Index()] = float32(counts[i] / total)
		}
	}
	return policy, counts
}
