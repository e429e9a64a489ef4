package provision

import (
	"github.com/pkg/errors"

	"github.com/kubemetalio/nixup/pkg/util"
)

// GenerateConfig writes the hardware configuration of the mounted target.
func GenerateConfig(runner util.Runner, mountRoot string) error {
	if _, err := runner.Run("nixos-generate-config", "--root", mountRoot); err != nil {
		return errors.Wrap(err, "failed to generate system configuration")
	}
	return nil
}

// Install hands the mounted target over to the platform installer. The
// installer asks the operator for the root password, so it runs attached to
// the terminal.
func Install(runner util.InteractiveRunner, mountRoot string) error {
	if err := runner.RunAttached("nixos-install", "--root", mountRoot); err != nil {
		return errors.Wrap(err, "failed to install system")
	}
	return nil
}
