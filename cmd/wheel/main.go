package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // All practices approved, or the command succeeded
	ExitNotApproved = 1 // One or more practices were not approved
	ExitError       = 2 // Configuration or runtime error
)

// NotApprovedError indicates that evaluation ran successfully, but one or
// more practices did not reach the approve decision.
type NotApprovedError struct {
	Message string
}

func (e *NotApprovedError) Error() string {
	return e.Message
}

func main() {
	os.Exit(exitCode(execute()))
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(os.Stderr, err)

	var notApproved *NotApprovedError
	if errors.As(err, &notApproved) {
		return ExitNotApproved
	}
	return ExitError
}
