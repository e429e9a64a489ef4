package install

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/kubemetalio/nixup/pkg/provision"
	"github.com/kubemetalio/nixup/pkg/util"
)

func NewInstallCmd() *cobra.Command {
	option := NewInstallOptions()
	cmd := &cobra.Command{
		Use:          "install",
		Short:        "partition, format and mount a disk, then install NixOS onto it",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := option.Complete(cmd.Flags()); err != nil {
				klog.Errorf("fail to complete the install option: %v", err)
				return err
			}
			if err := option.Validate(); err != nil {
				klog.Errorf("install option is invalid: %v", err)
				return err
			}
			if err := option.RunInstall(); err != nil {
				klog.Errorf("fail to install: %v", err)
				return err
			}
			return nil
		},
	}

	fs := cmd.Flags()
	option.AddFlags(fs)
	return cmd
}

func (o *InstallOptions) RunInstall() error {
	klog.V(4).Info("install begin")

	if err := provision.CheckPreconditions(o.runner, o.euid(), o.MountRoot); err != nil {
		return err
	}

	if err := o.confirm(); err != nil {
		return err
	}

	pipeline, err := provision.NewPipeline(o.runner, o.fs, provision.PipelineOptions{
		Disk:           o.Disk,
		BootMode:       o.bootMode,
		RootFileSystem: provision.FileSystemType(o.FileSystemType),
		MountRoot:      o.MountRoot,
		Poller:         util.NewPoller(o.PollAttempts, o.PollInterval, nil),
	})
	if err != nil {
		return err
	}
	if err := pipeline.Run(); err != nil {
		return err
	}

	if o.SkipInstall {
		fmt.Fprintf(o.out, "\n%s is mounted at %s, skipping installation.\n", provision.DevicePath(o.Disk), o.MountRoot)
		return nil
	}
	if err := provision.GenerateConfig(o.runner, o.MountRoot); err != nil {
		return err
	}
	if err := provision.Install(o.runner, o.MountRoot); err != nil {
		return err
	}

	fmt.Fprintln(o.out, welcome)
	klog.V(4).Info("install end")
	return nil
}

// confirm warns about the data loss and, unless --yes was given, waits for
// the operator to type "yes" before starting the countdown.
func (o *InstallOptions) confirm() error {
	device := provision.DevicePath(o.Disk)
	size := ""
	if o.device != nil {
		size = fmt.Sprintf(" (%s)", humanize.IBytes(uint64(o.device.Size)))
	}
	fmt.Fprintf(o.out, "Proceeding will entail repartitioning and formatting %s%s for %s boot.\n\n", device, size, o.bootMode)
	color.New(color.FgRed, color.Bold).Fprintf(o.out, "!!! ALL DATA ON %s WILL BE LOST !!!\n\n", device)

	if !o.Yes {
		scanner := bufio.NewScanner(o.in)
		for {
			fmt.Fprint(o.out, "Are you sure you'd like to proceed? If so, please type 'yes' in full, otherwise Ctrl-C: ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return errors.Wrap(err, "failed to read confirmation")
				}
				return errors.New("aborted: no confirmation given")
			}
			if strings.TrimSpace(scanner.Text()) == "yes" {
				break
			}
		}
		fmt.Fprintln(o.out)
	}

	if o.Delay > 0 {
		fmt.Fprintf(o.out, "Ok, will begin installing in %s. Press Ctrl-C to cancel.\n\n", o.Delay)
		time.Sleep(o.Delay)
	}
	return nil
}

const welcome = `
================================================================================
            Welcome to the NixOS community! We're happy to have you!

  * Your system configuration lives in /etc/nixos/configuration.nix. Edit it
    and run 'sudo nixos-rebuild switch' to apply your changes.
  * The NixOS manual (https://nixos.org/manual/nixos/stable/) is a great
    resource if you get stuck.

To get started with your new installation: 'sudo shutdown now', remove the
installation media, and reboot your system!
================================================================================`
