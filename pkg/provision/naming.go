package provision

import (
	"fmt"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"
)

const devDir = "/dev"

var (
	// sda + 1 => sda1
	directAppendPrefixes = []string{"sd", "hd", "vd"}
	// nvme0n1 + 1 => nvme0n1p1
	separatorPrefixes = []string{"nvme", "mmcblk", "nbd", "loop"}
)

// PartitionName returns the kernel name of partition index on disk. known is
// false when the disk belongs to a naming family we have no rule for, in
// which case the name is a direct-append guess.
func PartitionName(disk string, index int) (name string, known bool) {
	for _, prefix := range separatorPrefixes {
		if strings.HasPrefix(disk, prefix) {
			return fmt.Sprintf("%sp%d", disk, index), true
		}
	}
	for _, prefix := range directAppendPrefixes {
		if strings.HasPrefix(disk, prefix) {
			return fmt.Sprintf("%s%d", disk, index), true
		}
	}
	return fmt.Sprintf("%s%d", disk, index), false
}

// PartitionDevicePath returns the device node of partition index on disk.
// It never fails: for an unrecognised naming family it warns and returns a
// direct-append guess.
func PartitionDevicePath(disk string, index int) string {
	name, known := PartitionName(disk, index)
	if !known {
		klog.Warningf("Device %s uses a partition naming scheme that has not been tested, assuming partition %d is %s",
			disk, index, name)
	}
	return DevicePath(name)
}

func DevicePath(name string) string {
	return filepath.Join(devDir, name)
}

func LabelPath(label string) string {
	return filepath.Join(devDir, "disk", "by-label", label)
}
