package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAbout(t *testing.T) {
	require.Equal(t, `name="gomoku-mcts", version="1.0", author="gomoku authors", country="CH"`, About())
}
