//go:build unix

package main

import (
	"os"
	"syscall"

	"github.com/rs/zerolog/log"
)

// commandInput returns stdin registered with the runtime poller so that
// closing it wakes a pending read. A terminal is left alone since its file
// description is shared with the shell.
func commandInput() *os.File {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return os.Stdin
	}
	if err := syscall.SetNonblock(0, true); err != nil {
		log.Debug().Err(err).Msg("stdin stays blocking")
		return os.Stdin
	}
	return os.NewFile(0, "/dev/stdin")
}
