// meta/meta.go
package meta

import "fmt"

// Engine identity reported by ABOUT.
const (
	Name    = "gomoku-mcts"
	Version = "1.0"
	Author  = "gomoku authors"
	Country = "CH"
)

// GOROUTINES defines the number of goroutines to use per search.
const GOROUTINES = 4

// SIMULATIONS defines the number of simulations per move.
const SIMULATIONS = 800

// QUEUE_SIZE defines how many commands may be read ahead of processing.
const QUEUE_SIZE = 16

// MAX_MOVES caps a self-play game.
const MAX_MOVES = 361

func About() string {
	return fmt.Sprintf("name=%q, version=%q, author=%q, country=%q", Name, Version, Author, Country)
}
