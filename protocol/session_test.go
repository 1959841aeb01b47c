package protocol

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gomoku/evaluator"
	"gomoku/game"
	"gomoku/searcher"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Fields(b.buf.String())
}

func newTestTree(player game.Player, board game.Board, toMove game.Player) *searcher.Tree {
	return searcher.NewTree(player, board, toMove, evaluator.NewUniform(), searcher.WithSimulations(50))
}

func runScript(t *testing.T, script string) ([]string, *Session) {
	t.Helper()
	out := &syncBuffer{}
	s := NewSession(strings.NewReader(script), out, newTestTree)

	require.NoError(t, s.Run(context.Background()))
	require.False(t, s.Running())
	return out.Lines(), s
}

func TestSessionScenario(t *testing.T) {
	lines, s := runScript(t, "START\nTURN 9,9\nFOO\nTURN abc,9\nEND\n")

	require.Len(t, lines, 4)
	require.Equal(t, "OK", lines[0])
	reply, err := game.ParsePosition(lines[1])
	require.NoError(t, err, "TURN should be answered with coordinates")
	require.Equal(t, "ERROR", lines[2])
	require.Equal(t, "ERROR", lines[3])

	board := s.Board()
	require.Equal(t, 2, board.Stones(), "Malformed TURN should leave the board unchanged")
	require.Equal(t, game.StoneOne, board.Get(game.Position{Row: 9, Col: 9}))
	require.Equal(t, game.StoneTwo, board.Get(reply), "Engine plays second after an opening TURN")
}

func TestSessionCommands(t *testing.T) {
	t.Run("begin makes the engine player one", func(t *testing.T) {
		lines, s := runScript(t, "START\nBEGIN\n")

		require.Len(t, lines, 2)
		pos, err := game.ParsePosition(lines[1])
		require.NoError(t, err)
		board := s.Board()
		require.Equal(t, game.StoneOne, board.Get(pos))
	})

	t.Run("unsupported board size", func(t *testing.T) {
		lines, _ := runScript(t, "START 15\nSTART 19\nSTART x\n")

		require.Equal(t, []string{"ERROR", "OK", "ERROR"}, lines)
	})

	t.Run("turn before start is an implicit start", func(t *testing.T) {
		lines, _ := runScript(t, "TURN 0,0\n")

		require.Len(t, lines, 1)
		_, err := game.ParsePosition(lines[0])
		require.NoError(t, err)
	})

	t.Run("occupied and out of range cells", func(t *testing.T) {
		lines, s := runScript(t, "START\nTURN 3,4\nTURN 3,4\nTURN 19,0\nTURN -1,2\n")

		require.Len(t, lines, 5)
		require.Equal(t, []string{"ERROR", "ERROR", "ERROR"}, lines[2:])
		board := s.Board()
		require.Equal(t, 2, board.Stones())
	})

	t.Run("begin after moves is rejected", func(t *testing.T) {
		lines, _ := runScript(t, "START\nTURN 3,4\nBEGIN\n")

		require.Equal(t, "ERROR", lines[2])
	})

	t.Run("start resets the game", func(t *testing.T) {
		lines, s := runScript(t, "START\nTURN 3,4\nSTART\nBEGIN\n")

		require.Len(t, lines, 4)
		board := s.Board()
		require.Equal(t, 1, board.Stones())
	})

	t.Run("about", func(t *testing.T) {
		out := &syncBuffer{}
		s := NewSession(strings.NewReader("ABOUT\n"), out, newTestTree)
		require.NoError(t, s.Run(context.Background()))

		require.Contains(t, out.buf.String(), `name="gomoku-mcts"`)
	})

	t.Run("blank lines are ignored and END stops reading", func(t *testing.T) {
		lines, _ := runScript(t, "\n\nSTART\nEND\nBEGIN\n")

		require.Equal(t, []string{"OK"}, lines)
	})
}

func TestSessionGameOver(t *testing.T) {
	t.Run("opponent win ends the game", func(t *testing.T) {
		s := NewSession(strings.NewReader(""), io.Discard, newTestTree)
		s.reset()
		for col := 0; col < 4; col++ {
			require.NoError(t, s.board.Place(game.Position{Row: 0, Col: col}, game.PlayerOne))
		}
		for col := 10; col < 14; col++ {
			require.NoError(t, s.board.Place(game.Position{Row: 18, Col: col}, game.PlayerTwo))
		}
		s.tree = newTestTree(game.PlayerTwo, s.board, game.PlayerOne)

		require.Equal(t, "ERROR", s.handle(ParseCommand("TURN 4,0")))
		require.True(t, s.gameOver)
		require.Equal(t, "ERROR", s.handle(ParseCommand("TURN 5,5")), "No move after the game is decided")
		require.Equal(t, 9, s.board.Stones())
	})

	t.Run("engine win ends the game", func(t *testing.T) {
		s := NewSession(strings.NewReader(""), io.Discard, func(player game.Player, board game.Board, toMove game.Player) *searcher.Tree {
			return searcher.NewTree(player, board, toMove, evaluator.NewUniform(), searcher.WithSimulations(600))
		})
		s.reset()
		for col := 0; col < 4; col++ {
			require.NoError(t, s.board.Place(game.Position{Row: 6, Col: col}, game.PlayerTwo))
		}
		for col := 10; col < 13; col++ {
			require.NoError(t, s.board.Place(game.Position{Row: 12, Col: col}, game.PlayerOne))
		}

		require.Equal(t, "4,6", s.handle(ParseCommand("TURN 0,18")))
		require.True(t, s.gameOver)
		require.Equal(t, "ERROR", s.handle(ParseCommand("TURN 5,5")))
	})

	t.Run("engine filling the last cell ends the game", func(t *testing.T) {
		s := NewSession(strings.NewReader(""), io.Discard, newTestTree)
		s.reset()
		last := game.Position{Row: game.Size - 1, Col: game.Size - 1}
		for r := 0; r < game.Size; r++ {
			for c := 0; c < game.Size; c++ {
				if pos := (game.Position{Row: r, Col: c}); pos != last {
					// No run longer than two in any direction
					require.NoError(t, s.board.Place(pos, game.Player(((c+2*r)%4)/2)))
				}
			}
		}
		s.tree = newTestTree(game.PlayerTwo, s.board, game.PlayerTwo)

		resp, err := s.reply()

		require.NoError(t, err)
		require.Equal(t, "18,18", resp)
		require.True(t, s.board.Full())
		require.True(t, s.gameOver, "A drawing move should end the game")
		require.Equal(t, "ERROR", s.handle(ParseCommand("TURN 5,5")))
	})
}

func TestSessionTermination(t *testing.T) {
	t.Run("stop unblocks a pending read", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		out := &syncBuffer{}
		s := NewSession(pr, out, newTestTree)

		errc := make(chan error, 1)
		go func() { errc <- s.Run(context.Background()) }()

		_, err := io.WriteString(pw, "START\n")
		require.NoError(t, err)
		require.Eventually(t, func() bool { return len(out.Lines()) == 1 }, 2*time.Second, 5*time.Millisecond)
		require.True(t, s.Running())

		s.Stop()

		select {
		case err := <-errc:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("session did not stop")
		}
		require.False(t, s.Running())
		require.Equal(t, []string{"OK"}, out.Lines())
	})

	t.Run("context cancellation ends the session", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		s := NewSession(pr, io.Discard, newTestTree)
		ctx, cancel := context.WithCancel(context.Background())

		errc := make(chan error, 1)
		go func() { errc <- s.Run(ctx) }()
		require.Eventually(t, s.Running, 2*time.Second, 5*time.Millisecond)

		cancel()

		select {
		case err := <-errc:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("session did not stop")
		}
	})

	t.Run("read error clears running and is reported", func(t *testing.T) {
		pr, pw := io.Pipe()
		s := NewSession(pr, io.Discard, newTestTree)

		errc := make(chan error, 1)
		go func() { errc <- s.Run(context.Background()) }()
		pw.CloseWithError(io.ErrUnexpectedEOF)

		select {
		case err := <-errc:
			require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		case <-time.After(2 * time.Second):
			t.Fatal("session did not stop")
		}
		require.False(t, s.Running())
	})
}
