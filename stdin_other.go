//go:build !unix

package main

import "os"

func commandInput() *os.File {
	return os.Stdin
}
