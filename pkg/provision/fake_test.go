package provision

import (
	"bytes"
	"flag"
	"os"
	"strings"
	"testing"
	"time"

	"k8s.io/klog/v2"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/kubemetalio/nixup/pkg/util"
)

// fakeRunner records every command line and lets tests hook commands by
// name to inject failures or side effects.
type fakeRunner struct {
	commands []string
	attached []string
	hooks    map[string]func(args []string) error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{hooks: map[string]func(args []string) error{}}
}

func (f *fakeRunner) Run(name string, args ...string) (string, error) {
	f.commands = append(f.commands, strings.Join(append([]string{name}, args...), " "))
	if hook, ok := f.hooks[name]; ok {
		return "", hook(args)
	}
	return "", nil
}

func (f *fakeRunner) RunAttached(name string, args ...string) error {
	f.attached = append(f.attached, strings.Join(append([]string{name}, args...), " "))
	_, err := f.Run(name, args...)
	return err
}

func (f *fakeRunner) count(name string) int {
	n := 0
	for _, cmd := range f.commands {
		if strings.HasPrefix(cmd, name+" ") {
			n++
		}
	}
	return n
}

func newFakePoller() (*util.Poller, *testingclock.FakeClock) {
	clk := testingclock.NewFakeClock(time.Unix(0, 0))
	return util.NewPoller(util.DefaultPollAttempts, util.DefaultPollInterval, clk), clk
}

// captureLogs redirects klog into the returned buffer for the rest of the test.
// Call klog.Flush before reading it.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	flags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(flags)
	_ = flags.Set("logtostderr", "false")
	_ = flags.Set("alsologtostderr", "false")
	buf := &bytes.Buffer{}
	klog.SetOutput(buf)
	t.Cleanup(func() {
		klog.Flush()
		_ = flags.Set("logtostderr", "true")
		klog.SetOutput(os.Stderr)
	})
	return buf
}
