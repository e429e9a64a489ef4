package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/klog/v2"
)

func TestPartitionName(t *testing.T) {
	tests := []struct {
		disk  string
		index int
		want  string
		known bool
	}{
		{disk: "sda", index: 1, want: "sda1", known: true},
		{disk: "sdb", index: 2, want: "sdb2", known: true},
		{disk: "sdaa", index: 12, want: "sdaa12", known: true},
		{disk: "vda", index: 1, want: "vda1", known: true},
		{disk: "hda", index: 3, want: "hda3", known: true},
		{disk: "nvme0n1", index: 1, want: "nvme0n1p1", known: true},
		{disk: "nvme1n2", index: 2, want: "nvme1n2p2", known: true},
		{disk: "mmcblk0", index: 1, want: "mmcblk0p1", known: true},
		{disk: "nbd0", index: 1, want: "nbd0p1", known: true},
		{disk: "loop7", index: 2, want: "loop7p2", known: true},
		{disk: "xvda", index: 1, want: "xvda1", known: false},
		{disk: "dasda", index: 1, want: "dasda1", known: false},
	}
	for _, tt := range tests {
		t.Run(tt.disk, func(t *testing.T) {
			got, known := PartitionName(tt.disk, tt.index)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestPartitionDevicePath(t *testing.T) {
	assert.Equal(t, "/dev/sda1", PartitionDevicePath("sda", 1))
	assert.Equal(t, "/dev/nvme0n1p2", PartitionDevicePath("nvme0n1", 2))
	// unknown families still get a best guess
	assert.Equal(t, "/dev/xvda1", PartitionDevicePath("xvda", 1))
}

func TestLabelPath(t *testing.T) {
	assert.Equal(t, "/dev/disk/by-label/nixos", LabelPath(RootLabel))
	assert.Equal(t, "/dev/disk/by-label/boot", LabelPath(BootLabel))
}

func TestPartitionDevicePathWarnsOnUnknownFamily(t *testing.T) {
	logs := captureLogs(t)

	assert.Equal(t, "/dev/sda2", PartitionDevicePath("sda", 2))
	klog.Flush()
	assert.Empty(t, logs.String())

	assert.Equal(t, "/dev/xvda1", PartitionDevicePath("xvda", 1))
	klog.Flush()
	assert.Contains(t, logs.String(), "Device xvda uses a partition naming scheme that has not been tested")
	assert.Contains(t, logs.String(), "assuming partition 1 is xvda1")
}
