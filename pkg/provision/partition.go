package provision

import (
	"strconv"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/kubemetalio/nixup/pkg/util"
)

// CreatePartitionTable writes a fresh partition table to disk and creates the
// partitions of plan in order. Commands are not retried; a half-written
// table is left as is.
func CreatePartitionTable(runner util.Runner, disk string, plan *PartitionPlan) error {
	klog.Infof("Creating %s partition table on %s for %s boot", plan.TableType, DevicePath(disk), plan.Mode)

	if err := parted(runner, disk, "mklabel", plan.TableType); err != nil {
		return errors.Wrapf(err, "failed to create %s partition table", plan.TableType)
	}

	for i, part := range plan.Partitions {
		args := []string{"mkpart", part.Name}
		if part.FileSystem == FileSystemTypeFAT32 {
			args = append(args, string(part.FileSystem))
		}
		args = append(args, part.Start, part.End)
		if err := parted(runner, disk, args...); err != nil {
			return errors.Wrapf(err, "failed to create %s partition", part.Role)
		}

		for _, flag := range part.Flags {
			if err := parted(runner, disk, "set", strconv.Itoa(i+1), flag, "on"); err != nil {
				return errors.Wrapf(err, "failed to set %s flag on %s partition", flag, part.Role)
			}
		}
	}
	return nil
}

func parted(runner util.Runner, disk string, args ...string) error {
	_, err := runner.Run("parted", append([]string{"-s", DevicePath(disk), "--"}, args...)...)
	return err
}
