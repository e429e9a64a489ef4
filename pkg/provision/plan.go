package provision

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	efiFirmwareDir   = "/sys/firmware/efi"
	DefaultMountRoot = "/mnt"
)

type BootMode string

const (
	BootModeEFI    BootMode = "efi"
	BootModeLegacy BootMode = "legacy"
)

// DetectBootMode reports EFI when the firmware exposes its EFI directory.
func DetectBootMode(fs afero.Fs) BootMode {
	if ok, _ := afero.DirExists(fs, efiFirmwareDir); ok {
		return BootModeEFI
	}
	return BootModeLegacy
}

type PartitionRole string

const (
	RoleBoot PartitionRole = "boot"
	RoleRoot PartitionRole = "root"
)

type FileSystemType string

const (
	FileSystemTypeFAT32 FileSystemType = "fat32"
	FileSystemTypeEXT4  FileSystemType = "ext4"
	FileSystemTypeXFS   FileSystemType = "xfs"
)

const (
	BootLabel = "boot"
	RootLabel = "nixos"
)

// PartitionSpec describes one partition of the install disk. Start and End
// are parted unit expressions.
type PartitionSpec struct {
	Role       PartitionRole
	Name       string
	FileSystem FileSystemType
	Label      string
	Start      string
	End        string
	Flags      []string
}

type PartitionPlan struct {
	Mode       BootMode
	TableType  string
	Partitions []PartitionSpec
}

// NewPartitionPlan returns the fixed layout for mode: an ESP followed by root
// on a GPT table for EFI, a single root partition on an msdos table otherwise.
func NewPartitionPlan(mode BootMode, rootFS FileSystemType) (*PartitionPlan, error) {
	if rootFS == "" {
		rootFS = FileSystemTypeEXT4
	}
	if rootFS != FileSystemTypeEXT4 && rootFS != FileSystemTypeXFS {
		return nil, errors.Errorf("unsupported root file system type %q", rootFS)
	}

	switch mode {
	case BootModeEFI:
		return &PartitionPlan{
			Mode:      mode,
			TableType: "gpt",
			Partitions: []PartitionSpec{
				{Role: RoleBoot, Name: "ESP", FileSystem: FileSystemTypeFAT32, Label: BootLabel, Start: "1MiB", End: "512MiB", Flags: []string{"esp"}},
				{Role: RoleRoot, Name: "primary", FileSystem: rootFS, Label: RootLabel, Start: "512MiB", End: "100%"},
			},
		}, nil
	case BootModeLegacy:
		return &PartitionPlan{
			Mode:      mode,
			TableType: "msdos",
			Partitions: []PartitionSpec{
				{Role: RoleRoot, Name: "primary", FileSystem: rootFS, Label: RootLabel, Start: "1MiB", End: "100%"},
			},
		}, nil
	default:
		return nil, errors.Errorf("unknown boot mode %q", mode)
	}
}

// Index returns the 1-based partition number of role, or 0 if the plan has
// no such partition.
func (p *PartitionPlan) Index(role PartitionRole) int {
	for i, part := range p.Partitions {
		if part.Role == role {
			return i + 1
		}
	}
	return 0
}

func (p *PartitionPlan) Get(role PartitionRole) (PartitionSpec, bool) {
	if i := p.Index(role); i > 0 {
		return p.Partitions[i-1], true
	}
	return PartitionSpec{}, false
}

// DevicePaths resolves the device node of every partition of the plan on
// disk, in plan order.
func (p *PartitionPlan) DevicePaths(disk string) []string {
	paths := make([]string, len(p.Partitions))
	for i := range p.Partitions {
		paths[i] = PartitionDevicePath(disk, i+1)
	}
	return paths
}

type MountEntry struct {
	Source       string
	Target       string
	CreateTarget bool
}

type MountPlan []MountEntry

// NewMountPlan mounts root at mountRoot and, when the plan has one, boot
// under it. Root always comes first.
func NewMountPlan(plan *PartitionPlan, mountRoot string) MountPlan {
	root, _ := plan.Get(RoleRoot)
	mounts := MountPlan{{Source: LabelPath(root.Label), Target: mountRoot}}
	if boot, ok := plan.Get(RoleBoot); ok {
		mounts = append(mounts, MountEntry{
			Source:       LabelPath(boot.Label),
			Target:       filepath.Join(mountRoot, "boot"),
			CreateTarget: true,
		})
	}
	return mounts
}
