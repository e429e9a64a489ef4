package provision

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"
)

const (
	sysBlockDir = "/sys/block"
	// the kernel reports block device sizes in 512 byte sectors regardless of
	// the logical block size
	sectorSize = 512
)

type BlockDevice struct {
	Name   string `json:"name"`
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
	Size   int64  `json:"size"` // unit: byte
}

type Inventory struct {
	fs      afero.Fs
	sysRoot string
}

func NewInventory(fs afero.Fs) *Inventory {
	return &Inventory{fs: fs, sysRoot: sysBlockDir}
}

// ListBlockDevices lists the physical disks under /sys/block. Entries without
// a device link (loop, ram, dm) are skipped.
func (i *Inventory) ListBlockDevices() ([]BlockDevice, error) {
	entries, err := afero.ReadDir(i.fs, i.sysRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", i.sysRoot)
	}

	disks := make([]BlockDevice, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		base := filepath.Join(i.sysRoot, name)
		if ok, _ := afero.DirExists(i.fs, filepath.Join(base, "device")); !ok {
			klog.V(4).Infof("skip block device [%s] without backing device", name)
			continue
		}

		sectors, err := readInt(i.fs, filepath.Join(base, "size"))
		if err != nil {
			klog.Warningf("Skipping block device %s: %v", name, err)
			continue
		}

		disks = append(disks, BlockDevice{
			Name:   name,
			Vendor: i.readMetadata(name, "vendor"),
			Model:  i.readMetadata(name, "model"),
			Size:   sectors * sectorSize,
		})
	}
	return disks, nil
}

// ErrDiskNotFound is returned by Lookup when the inventory was read but has
// no disk of that name.
var ErrDiskNotFound = errors.New("disk not found")

// Lookup returns the disk called name.
func (i *Inventory) Lookup(name string) (*BlockDevice, error) {
	disks, err := i.ListBlockDevices()
	if err != nil {
		return nil, err
	}
	for _, disk := range disks {
		if disk.Name == name {
			return &disk, nil
		}
	}
	return nil, errors.Wrapf(ErrDiskNotFound, "%s in %s", name, i.sysRoot)
}

// vendor and model are not always present, e.g. nvme exposes no vendor
func (i *Inventory) readMetadata(name, field string) string {
	path := filepath.Join(i.sysRoot, name, "device", field)
	value, err := readFirstLine(i.fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			klog.Warningf("Unable to read %s of %s: %v", field, name, err)
		}
		return ""
	}
	return value
}

func readFirstLine(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}

func readInt(fs afero.Fs, path string) (int64, error) {
	line, err := readFirstLine(fs, path)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value in %s", path)
	}
	return value, nil
}
