// Package process terminates the headless browser launched for report
// rendering together with its helper processes.
package process

import "errors"

// ErrInvalidPID is returned for pid <= 0, which would address the caller's
// own process group.
var ErrInvalidPID = errors.New("invalid pid")
