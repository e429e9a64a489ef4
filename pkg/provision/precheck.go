package provision

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kubemetalio/nixup/pkg/util"
)

type PreconditionReason string

const (
	ReasonNotRoot       PreconditionReason = "NotRoot"
	ReasonTargetMounted PreconditionReason = "TargetMounted"
)

type PreconditionError struct {
	Reason  PreconditionReason
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// CheckPreconditions verifies the process runs as root and nothing is
// mounted at mountRoot yet.
func CheckPreconditions(runner util.Runner, euid int, mountRoot string) error {
	if euid != 0 {
		return &PreconditionError{Reason: ReasonNotRoot, Message: "nixup must be run as root"}
	}

	_, err := runner.Run("mountpoint", "-q", mountRoot)
	if err == nil {
		return &PreconditionError{Reason: ReasonTargetMounted, Message: fmt.Sprintf("something is already mounted at %s", mountRoot)}
	}

	// mountpoint exits 1 or 32 for "not a mount point"; anything else means
	// the check itself did not run
	var cmdErr *util.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitStatus() > 0 {
		return nil
	}
	return errors.Wrapf(err, "failed to check whether %s is a mount point", mountRoot)
}
