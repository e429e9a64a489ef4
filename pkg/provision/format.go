package provision

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/kubemetalio/nixup/pkg/util"
)

// FormatPartitions creates the file system of every partition in plan on the
// matching entry of devices. Failures are not retried.
func FormatPartitions(runner util.Runner, plan *PartitionPlan, devices []string) error {
	if len(devices) != len(plan.Partitions) {
		return errors.Errorf("plan has %d partitions but %d devices were given", len(plan.Partitions), len(devices))
	}
	for i, part := range plan.Partitions {
		device := devices[i]
		if err := makeFS(runner, part.FileSystem, part.Label, device); err != nil {
			return errors.Wrapf(err, "failed to format %s partition %s", part.Role, device)
		}
	}
	return nil
}

func makeFS(runner util.Runner, fsType FileSystemType, label, device string) error {
	klog.Infof("Formatting %s as %s with label %q", device, fsType, label)

	var err error
	switch fsType {
	case FileSystemTypeFAT32:
		_, err = runner.Run("mkfs.fat", "-F", "32", "-n", label, device)
	case FileSystemTypeEXT4:
		_, err = runner.Run("mkfs.ext4", "-F", "-L", label, device)
	case FileSystemTypeXFS:
		_, err = runner.Run("mkfs.xfs", "-f", "-L", label, device)
	default:
		err = errors.Errorf("unsupported file system type: %q", fsType)
	}
	return err
}
