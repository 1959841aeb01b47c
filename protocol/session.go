package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gomoku/game"
	"gomoku/meta"
	"gomoku/searcher"
)

const (
	respOK    = "OK"
	respError = "ERROR"
)

// TreeFactory builds the engine's search tree once the session knows which
// side the engine plays.
type TreeFactory func(player game.Player, board game.Board, toMove game.Player) *searcher.Tree

type Option func(s *Session)

// WithQueueSize bounds the number of commands read ahead of processing.
func WithQueueSize(size int) Option {
	return func(s *Session) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// Session runs the protocol over one input and output stream. Only the
// processing task touches the board and the tree; the reader hands over
// immutable Command values.
type Session struct {
	in        io.Reader
	out       io.Writer
	newTree   TreeFactory
	queueSize int

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc

	board    game.Board
	tree     *searcher.Tree
	started  bool
	gameOver bool
}

func NewSession(in io.Reader, out io.Writer, newTree TreeFactory, options ...Option) *Session {
	s := &Session{
		in:        in,
		out:       out,
		newTree:   newTree,
		queueSize: meta.QUEUE_SIZE,
		board:     game.NewBoard(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Run serves commands until END, end of input, a read error, Stop or ctx is
// done. When in is an io.Closer it is closed on the way out so that a blocked
// read on a pollable input returns. Run does not wait for the reader: a read
// on a blocking descriptor only returns with the next line or end of input.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.running.Store(true)
	defer s.running.Store(false)

	commands := make(chan Command, s.queueSize)
	readErr := make(chan error, 1)
	go s.read(ctx, commands, readErr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.process(gctx, commands, readErr)
	})
	if closer, ok := s.in.(io.Closer); ok {
		g.Go(func() error {
			<-gctx.Done()
			if err := closer.Close(); err != nil {
				log.Debug().Err(err).Msg("closing command input")
			}
			return nil
		})
	}

	err := g.Wait()
	log.Info().Err(err).Msg("session ended")
	return err
}

func (s *Session) Running() bool {
	return s.running.Load()
}

// Stop ends a running session.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running.Store(false)
	if s.cancel != nil {
		s.cancel()
	}
}

// Board is the processor's board. Read it only once Run has returned.
func (s *Session) Board() game.Board {
	return s.board
}

// read hands parsed lines to commands until end of input or ctx is done. A
// read error is sent on errc before commands is closed.
func (s *Session) read(ctx context.Context, commands chan<- Command, errc chan<- error) {
	defer close(commands)

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		cmd := ParseCommand(scanner.Text())
		if cmd.Raw == "" {
			continue
		}
		select {
		case commands <- cmd:
		case <-ctx.Done():
			return
		}
	}
	s.running.Store(false)

	err := scanner.Err()
	if err == nil || ctx.Err() != nil || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
		return
	}
	errc <- fmt.Errorf("failed to read command: %w", err)
}

func (s *Session) process(ctx context.Context, commands <-chan Command, readErr <-chan error) error {
	defer s.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd, ok := <-commands:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if cmd.Kind == End {
				log.Info().Msg("end requested")
				return nil
			}
			resp := s.handle(cmd)
			if _, err := fmt.Fprintln(s.out, resp); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
	}
}

func (s *Session) handle(cmd Command) string {
	log.Debug().Str("command", cmd.Raw).Msg("received")

	var resp string
	var err error
	switch cmd.Kind {
	case Start:
		resp, err = s.start(cmd.Args)
	case Turn:
		resp, err = s.turn(cmd.Args)
	case Begin:
		resp, err = s.begin()
	case About:
		resp = meta.About()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Raw)
	}

	if err != nil {
		log.Warn().Err(err).Str("command", cmd.Raw).Msg("rejected")
		return respError
	}
	return resp
}

func (s *Session) reset() {
	s.board = game.NewBoard()
	s.tree = nil
	s.started = true
	s.gameOver = false
}

func (s *Session) start(args []string) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("%w: START takes at most one argument", ErrMalformed)
	}
	if len(args) == 1 {
		size, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("%w: board size %q", ErrMalformed, args[0])
		}
		if size != game.Size {
			return "", fmt.Errorf("%w: unsupported board size %d", ErrMalformed, size)
		}
	}
	s.reset()
	return respOK, nil
}

// turn records the opponent's stone and answers with the engine's move.
func (s *Session) turn(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: TURN needs x,y", ErrMalformed)
	}
	pos, err := game.ParsePosition(strings.Join(args, ""))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !s.started {
		s.reset()
	}
	if s.gameOver {
		return "", searcher.ErrGameOver
	}
	if !s.board.IsEmpty(pos) {
		return "", fmt.Errorf("%w: %s", game.ErrOccupied, pos)
	}

	if s.tree == nil {
		// The opponent moved first
		s.tree = s.newTree(game.PlayerTwo, s.board, game.PlayerOne)
	}
	opponent := s.tree.Player().Opponent()
	if err := s.tree.UpdateTurn(s.board, pos); err != nil {
		return "", err
	}
	if err := s.board.Place(pos, opponent); err != nil {
		return "", err
	}

	if game.Wins(&s.board, opponent, pos) {
		s.gameOver = true
		return "", fmt.Errorf("%w: %s won with %s", searcher.ErrGameOver, opponent, pos)
	}
	return s.reply()
}

func (s *Session) begin() (string, error) {
	if !s.started {
		s.reset()
	}
	if s.tree != nil || s.board.Stones() > 0 {
		return "", fmt.Errorf("%w: BEGIN only opens a fresh game", ErrMalformed)
	}
	s.tree = s.newTree(game.PlayerOne, s.board, game.PlayerOne)
	return s.reply()
}

// reply searches and plays the engine's move.
func (s *Session) reply() (string, error) {
	if s.board.Full() {
		s.gameOver = true
		return "", fmt.Errorf("%w: board is full", searcher.ErrGameOver)
	}
	result, err := s.tree.Turn(s.board)
	if err != nil {
		return "", err
	}

	s.board = result.Board
	if result.GameOver {
		s.gameOver = true
		log.Info().Bool("draw", result.Draw).Msgf("game over after %s", result.Position)
	}
	log.Debug().
		Int("simulations", result.Metric.Simulations).
		Dur("duration", result.Metric.Duration).
		Msgf("playing %s", result.Position)
	return result.Position.String(), nil
}
