package app

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/version/verflag"
	"k8s.io/klog/v2"

	"github.com/kubemetalio/nixup/pkg/nixup/cmd/disk"
	"github.com/kubemetalio/nixup/pkg/nixup/cmd/install"
)

func NewNixupCommand() *cobra.Command {
	cmds := &cobra.Command{
		Use:   "nixup",
		Short: "nixup partitions, formats and mounts a disk and installs NixOS onto it",
		Run: func(cmd *cobra.Command, _ []string) {
			verflag.PrintAndExitIfRequested()
			cliflag.PrintFlags(cmd.Flags())
			cmd.Help()
		},
	}

	cmds.AddCommand(disk.DiskCmd)
	cmds.AddCommand(install.NewInstallCmd())
	cmds.AddCommand(newCompletionCmd(cmds))

	verflag.AddFlags(cmds.PersistentFlags())
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Set("logtostderr", "false")
	pflag.Set("alsologtostderr", "true")
	pflag.Set("log_file", fmt.Sprintf("%s/nixup.log", os.TempDir()))

	return cmds
}

const bashCompleteFile = "/etc/bash_completion.d/nixup.bash_complete"

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "write the bash completion script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.GenBashCompletionFile(file)
		},
	}
	cmd.Flags().StringVar(&file, "file", bashCompleteFile, "where to write the completion script")
	return cmd
}
