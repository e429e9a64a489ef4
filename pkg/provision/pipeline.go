package provision

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"

	"github.com/kubemetalio/nixup/pkg/util"
)

type Stage int

const (
	StageDiscover Stage = iota
	StageTableCreated
	StageNodesReady
	StageFormatted
	StageLabelsReady
	StageRootMounted
	StageBootMounted
	StageDone
	StageAborted
)

var stageNames = map[Stage]string{
	StageDiscover:     "Discover",
	StageTableCreated: "TableCreated",
	StageNodesReady:   "NodesReady",
	StageFormatted:    "Formatted",
	StageLabelsReady:  "LabelsReady",
	StageRootMounted:  "RootMounted",
	StageBootMounted:  "BootMounted",
	StageDone:         "Done",
	StageAborted:      "Aborted",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// StageError is returned when the pipeline aborts while moving to Stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("failed to reach stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type PipelineOptions struct {
	Disk           string
	BootMode       BootMode
	RootFileSystem FileSystemType
	MountRoot      string
	Poller         *util.Poller
}

// Pipeline provisions one disk. Stages run strictly in order; each stage
// method refuses to run unless the previous stage completed.
type Pipeline struct {
	Disk    string
	Plan    *PartitionPlan
	Mounts  MountPlan
	Devices []string

	runner  util.Runner
	fs      afero.Fs
	poller  *util.Poller
	mounter *Mounter
	stage   Stage
}

func NewPipeline(runner util.Runner, fs afero.Fs, opts PipelineOptions) (*Pipeline, error) {
	if opts.Disk == "" {
		return nil, errors.New("no disk selected")
	}
	plan, err := NewPartitionPlan(opts.BootMode, opts.RootFileSystem)
	if err != nil {
		return nil, err
	}
	poller := opts.Poller
	if poller == nil {
		poller = util.DefaultPoller()
	}
	mountRoot := opts.MountRoot
	if mountRoot == "" {
		mountRoot = DefaultMountRoot
	}
	mounts := NewMountPlan(plan, mountRoot)

	return &Pipeline{
		Disk:    opts.Disk,
		Plan:    plan,
		Mounts:  mounts,
		Devices: plan.DevicePaths(opts.Disk),
		runner:  runner,
		fs:      fs,
		poller:  poller,
		mounter: NewMounter(runner, fs, mounts),
		stage:   StageDiscover,
	}, nil
}

func (p *Pipeline) Stage() Stage {
	return p.stage
}

func (p *Pipeline) Run() error {
	klog.Infof("Provisioning %s for %s boot", DevicePath(p.Disk), p.Plan.Mode)

	steps := []func() error{
		p.CreateTable,
		p.WaitForNodes,
		p.Format,
		p.RefreshLabels,
		p.MountRoot,
	}
	if p.Plan.Index(RoleBoot) > 0 {
		steps = append(steps, p.MountBoot)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	p.stage = StageDone
	klog.Infof("Provisioned %s, target mounted at %s", DevicePath(p.Disk), p.Mounts[0].Target)
	return nil
}

func (p *Pipeline) CreateTable() error {
	return p.advance(StageDiscover, StageTableCreated, func() error {
		return CreatePartitionTable(p.runner, p.Disk, p.Plan)
	})
}

// WaitForNodes waits for the root partition node to show up. Running out of
// tries only warns: formatting will fail on its own if the node is missing.
func (p *Pipeline) WaitForNodes() error {
	return p.advance(StageTableCreated, StageNodesReady, func() error {
		node := p.Devices[p.Plan.Index(RoleRoot)-1]
		if p.poller.Until(p.exists(node), nil) == util.TimedOut {
			klog.Warningf("Waited for %s to show up but it never did, things may break", node)
		}
		return nil
	})
}

func (p *Pipeline) Format() error {
	return p.advance(StageNodesReady, StageFormatted, func() error {
		return FormatPartitions(p.runner, p.Plan, p.Devices)
	})
}

// RefreshLabels makes the kernel re-read the partition table until the root
// label link appears. blockdev regularly fails with EBUSY here, which is
// retried like any other miss.
func (p *Pipeline) RefreshLabels() error {
	return p.advance(StageFormatted, StageLabelsReady, func() error {
		root, _ := p.Plan.Get(RoleRoot)
		label := LabelPath(root.Label)
		reread := func() error {
			_, err := p.runner.Run("blockdev", "--rereadpt", DevicePath(p.Disk))
			return err
		}
		if p.poller.Until(p.exists(label), reread) == util.TimedOut {
			klog.Warningf("Failed to re-read the block index on %s, %s is still missing, things may break",
				DevicePath(p.Disk), label)
		}
		return nil
	})
}

func (p *Pipeline) MountRoot() error {
	return p.advance(StageLabelsReady, StageRootMounted, func() error {
		return p.mounter.Mount(p.Mounts[0])
	})
}

func (p *Pipeline) MountBoot() error {
	return p.advance(StageRootMounted, StageBootMounted, func() error {
		if len(p.Mounts) < 2 {
			return errors.Errorf("%s boot has no boot partition to mount", p.Plan.Mode)
		}
		return p.mounter.Mount(p.Mounts[1])
	})
}

func (p *Pipeline) advance(from, to Stage, fn func() error) error {
	if p.stage != from {
		return errors.Errorf("cannot enter stage %s from %s, expected %s", to, p.stage, from)
	}
	if err := fn(); err != nil {
		p.stage = StageAborted
		return &StageError{Stage: to, Err: err}
	}
	klog.V(2).Infof("pipeline stage %s -> %s", from, to)
	p.stage = to
	return nil
}

func (p *Pipeline) exists(path string) func() bool {
	return func() bool {
		ok, err := afero.Exists(p.fs, path)
		if err != nil {
			klog.V(4).Infof("stat %s: %v", path, err)
		}
		return ok
	}
}
