package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/stenciltools/stencil/pkg/style"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, style.Error(err.Error()))
		os.Exit(1)
	}
}

// exitCodeError carries a non-default exit code out of a command that
// has already printed its own output (validate's warning-only state).
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string { return fmt.Sprintf("exit code %d", e.code) }
