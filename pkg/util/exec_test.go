package util

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"
)

func fakeExecWith(fcmd *testingexec.FakeCmd) *testingexec.FakeExec {
	return &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd {
				return testingexec.InitFakeCmd(fcmd, cmd, args...)
			},
		},
	}
}

func TestCommandRunnerRun(t *testing.T) {
	fcmd := &testingexec.FakeCmd{
		CombinedOutputScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return []byte("done\n"), nil, nil },
		},
	}
	runner := NewCommandRunner(fakeExecWith(fcmd))

	out, err := runner.Run("parted", "-s", "/dev/sda", "--", "mklabel", "gpt")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"parted", "-s", "/dev/sda", "--", "mklabel", "gpt"}, fcmd.Argv)
	assert.Equal(t, 1, fcmd.CombinedOutputCalls)
}

func TestCommandRunnerRunFailure(t *testing.T) {
	fcmd := &testingexec.FakeCmd{
		CombinedOutputScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) {
				return []byte("mkfs.ext4: No such file or directory\n"), nil, &testingexec.FakeExitError{Status: 1}
			},
		},
	}
	runner := NewCommandRunner(fakeExecWith(fcmd))

	_, err := runner.Run("mkfs.ext4", "-F", "-L", "nixos", "/dev/sda1")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "mkfs.ext4 -F -L nixos /dev/sda1", cmdErr.Command)
	assert.Equal(t, "mkfs.ext4: No such file or directory", cmdErr.Output)
	assert.Equal(t, 1, cmdErr.ExitStatus())
	assert.Contains(t, err.Error(), "No such file or directory")
}

func TestCommandErrorExitStatusWithoutExit(t *testing.T) {
	err := &CommandError{Command: "mount", Err: errors.New("executable file not found")}
	assert.Equal(t, -1, err.ExitStatus())
}

func TestCommandRunnerRunAttached(t *testing.T) {
	fcmd := &testingexec.FakeCmd{
		RunScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return nil, nil, nil },
			func() ([]byte, []byte, error) { return nil, nil, &testingexec.FakeExitError{Status: 1} },
		},
	}
	fexec := &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd { return testingexec.InitFakeCmd(fcmd, cmd, args...) },
			func(cmd string, args ...string) utilexec.Cmd { return testingexec.InitFakeCmd(fcmd, cmd, args...) },
		},
	}
	stdin := strings.NewReader("hunter2\nhunter2\n")
	stdout := &bytes.Buffer{}
	runner := NewCommandRunner(fexec)
	runner.stdin, runner.stdout, runner.stderr = stdin, stdout, stdout

	require.NoError(t, runner.RunAttached("nixos-install", "--root", "/mnt"))
	assert.Equal(t, []string{"nixos-install", "--root", "/mnt"}, fcmd.Argv)
	assert.Equal(t, stdin, fcmd.Stdin)
	assert.Equal(t, stdout, fcmd.Stdout)
	assert.Equal(t, 1, fcmd.RunCalls)

	err := runner.RunAttached("nixos-install", "--root", "/mnt")
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 1, cmdErr.ExitStatus())
}
