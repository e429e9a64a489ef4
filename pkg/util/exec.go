package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"k8s.io/klog/v2"
	utilexec "k8s.io/utils/exec"
)

// Runner runs an external command and blocks until it exits.
type Runner interface {
	Run(name string, args ...string) (string, error)
}

// InteractiveRunner can also run commands that prompt the operator.
type InteractiveRunner interface {
	Runner
	RunAttached(name string, args ...string) error
}

// CommandError is returned when a command exits non-zero or cannot be started.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("exec [%s], output: %s, err: %v", e.Command, e.Output, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitStatus returns the exit code of the command, or -1 if it never ran.
func (e *CommandError) ExitStatus() int {
	if exitErr, ok := e.Err.(utilexec.ExitError); ok {
		return exitErr.ExitStatus()
	}
	return -1
}

type CommandRunner struct {
	exec   utilexec.Interface
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewCommandRunner(exec utilexec.Interface) *CommandRunner {
	if exec == nil {
		exec = utilexec.New()
	}
	return &CommandRunner{exec: exec, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

// Run executes name with args, echoing the command line before it starts.
// Combined output is returned with the trailing newline trimmed.
func (r *CommandRunner) Run(name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	klog.Infof(">>> %s", cmdline)
	output, err := r.exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return "", &CommandError{Command: cmdline, Output: strings.TrimSpace(string(output)), Err: err}
	}
	result := strings.TrimSuffix(string(output), "\n")
	klog.V(4).Infof("Exec command [%s] output: %s", cmdline, result)
	return result, nil
}

// RunAttached executes name with args connected to the operator's terminal.
// Output is not captured, so a CommandError from it carries no output.
func (r *CommandRunner) RunAttached(name string, args ...string) error {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	klog.Infof(">>> %s", cmdline)
	cmd := r.exec.Command(name, args...)
	cmd.SetStdin(r.stdin)
	cmd.SetStdout(r.stdout)
	cmd.SetStderr(r.stderr)
	if err := cmd.Run(); err != nil {
		return &CommandError{Command: cmdline, Err: err}
	}
	return nil
}
