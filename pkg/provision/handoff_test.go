package provision

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfig(t *testing.T) {
	runner := newFakeRunner()
	require.NoError(t, GenerateConfig(runner, "/mnt"))
	assert.Equal(t, []string{"nixos-generate-config --root /mnt"}, runner.commands)
	assert.Empty(t, runner.attached)
}

func TestInstallRunsAttached(t *testing.T) {
	runner := newFakeRunner()
	require.NoError(t, Install(runner, "/mnt"))
	assert.Equal(t, []string{"nixos-install --root /mnt"}, runner.attached)
	assert.NotContains(t, runner.commands[0], "--no-root-passwd")
}

func TestInstallFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.hooks["nixos-install"] = func([]string) error { return errors.New("build failed") }
	err := Install(runner, "/target")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install system")
	assert.Equal(t, []string{"nixos-install --root /target"}, runner.attached)
}
