package disk

import (
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var DiskCmd = &cobra.Command{
	Use:   "disk",
	Short: "inspect the disks nixup can install onto",
}

func init() {
	DiskCmd.AddCommand(NewListCmd())
}

func NewListCmd() *cobra.Command {
	option := NewDiskOptions()
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "list physical disks with vendor, model and size",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := option.Validate(); err != nil {
				klog.Errorf("list option is invalid: %v", err)
				return err
			}
			if err := option.RunList(); err != nil {
				klog.Errorf("fail to list disks: %v", err)
				return err
			}
			return nil
		},
	}

	fs := cmd.Flags()
	option.AddFlags(fs)
	return cmd
}
