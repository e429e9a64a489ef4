package provision

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"

	"github.com/kubemetalio/nixup/pkg/util"
)

// Mounter mounts the entries of a MountPlan. An entry nested below another
// entry of the same plan is refused until its parent is mounted.
type Mounter struct {
	runner  util.Runner
	fs      afero.Fs
	plan    MountPlan
	mounted map[string]bool
}

func NewMounter(runner util.Runner, fs afero.Fs, plan MountPlan) *Mounter {
	return &Mounter{runner: runner, fs: fs, plan: plan, mounted: map[string]bool{}}
}

func (m *Mounter) MountAll() error {
	for _, entry := range m.plan {
		if err := m.Mount(entry); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mounter) Mount(entry MountEntry) error {
	target := filepath.Clean(entry.Target)
	if parent := m.parentOf(target); parent != "" && !m.mounted[parent] {
		return errors.Errorf("refusing to mount %s before %s is mounted", entry.Target, parent)
	}

	if entry.CreateTarget {
		klog.Infof("Creating mount point %s", entry.Target)
		if err := m.fs.MkdirAll(entry.Target, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create mount point %s", entry.Target)
		}
	}

	if _, err := m.runner.Run("mount", entry.Source, entry.Target); err != nil {
		return errors.Wrapf(err, "failed to mount %s at %s", entry.Source, entry.Target)
	}
	m.mounted[target] = true
	return nil
}

func (m *Mounter) Mounted(target string) bool {
	return m.mounted[filepath.Clean(target)]
}

// parentOf returns the closest plan target that target lives under.
func (m *Mounter) parentOf(target string) string {
	parent := ""
	for _, entry := range m.plan {
		candidate := filepath.Clean(entry.Target)
		if candidate == target || !isUnder(target, candidate) {
			continue
		}
		if len(candidate) > len(parent) {
			parent = candidate
		}
	}
	return parent
}

func isUnder(path, dir string) bool {
	if dir == "/" {
		return path != "/"
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
