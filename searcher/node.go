package searcher

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"gomoku/evaluator"
	"gomoku/experiments/metrics"
	"gomoku/game"
)

// node is one position in a player's tree. rewards and visits are from the
// perspective of the player who made the move leading to the node. A node owns
// its children; children[i] is the move to the i-th empty cell in row-major
// order at this node.
type node struct {
	sync.RWMutex
	expandMu sync.Mutex
	expanded atomic.Bool

	pos      game.Position // Move leading to this node
	toMove   game.Player
	prior    float64
	terminal bool
	outcome  float64 // Value for the mover when terminal

	children []*node
	rewards  float64
	visits   float64
}

func newRoot(toMove game.Player) *node {
	return &node{toMove: toMove}
}

// expand materializes the children of n for board b, which must be the
// position at n. It returns the value of b for the side to move.
func (n *node) expand(b *game.Board, eval evaluator.Evaluator, collector metrics.Collector) float64 {
	pred, err := eval.Infer(game.Encode(b, n.toMove))
	if err != nil {
		log.Warn().Err(err).Msg("evaluator failed, using uniform prior")
		collector.AddEvaluatorFallback()
		pred = evaluator.Prediction{}
	}
	pred, repaired := evaluator.Sanitize(pred, b)
	if repaired && err == nil {
		log.Debug().Msg("evaluator returned invalid values, repaired")
		collector.AddEvaluatorFallback()
	}

	value := float64(pred.Value)
	empties := b.EmptyCells()
	children := make([]*node, len(empties))
	for i, pos := range empties {
		child := &node{
			pos:    pos,
			toMove: n.toMove.Opponent(),
			prior:  float64(pred.Policy[pos.Index()]),
		}
		if game.WinsIfPlaced(b, n.toMove, pos) {
			child.terminal = true
			child.outcome = Win
			// The side to move wins on the spot
			value = Win
		} else if len(empties) == 1 {
			// Last cell: the board is full after this move
			child.terminal = true
			child.outcome = Draw
		}
		children[i] = child
	}

	n.children = children
	n.expanded.Store(true)
	return value
}

// tryExpand expands n unless another goroutine got there first.
func (n *node) tryExpand(b *game.Board, eval evaluator.Evaluator, collector metrics.Collector) (float64, bool) {
	n.expandMu.Lock()
	defer n.expandMu.Unlock()

	if n.expanded.Load() {
		return 0, false
	}
	return n.expand(b, eval, collector), true
}

// selectChild picks the child with the highest PUCT score and applies a
// virtual loss to it.
func (n *node) selectChild(cpuct float64) *node {
	n.Lock()
	defer n.Unlock()

	policy := newPUCT(cpuct, n.visits)

	var best *node
	maxScore := math.Inf(-1)
	for _, child := range n.children {
		if score := child.score(policy); score > maxScore {
			maxScore = score
			best = child
		}
	}
	best.applyLoss()
	return best
}

func (n *node) score(policy *puct) float64 {
	n.RLock()
	defer n.RUnlock()

	return policy.evaluate(n.rewards, n.visits, n.prior)
}

func (n *node) applyLoss() {
	n.Lock()
	defer n.Unlock()

	n.rewards += Loss
	n.visits++
}

func (n *node) reverseLoss() {
	n.rewards -= Loss
	n.visits--
}

// backup records value, seen from the player who moved into n.
func (n *node) backup(value float64, selected bool) {
	n.Lock()
	defer n.Unlock()

	if selected { // Reached through selection, carries a virtual loss
		n.reverseLoss()
	}
	n.rewards += value
	n.visits++
}

func (n *node) stats() (rewards float64, visits float64) {
	n.RLock()
	defer n.RUnlock()

	return n.rewards, n.visits
}

// child returns the child at ordinal, nil if n has not been expanded or
// ordinal is out of range.
func (n *node) child(ordinal int) *node {
	if !n.expanded.Load() || ordinal < 0 || ordinal >= len(n.children) {
		return nil
	}
	return n.children[ordinal]
}
