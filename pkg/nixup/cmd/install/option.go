package install

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/kubemetalio/nixup/pkg/nixup/types"
	"github.com/kubemetalio/nixup/pkg/provision"
	"github.com/kubemetalio/nixup/pkg/util"
)

const (
	BootModeAuto = "auto"

	defaultDelay = 10 * time.Second
)

type InstallOptions struct {
	Disk           string
	BootMode       string
	FileSystemType string
	MountRoot      string
	ConfigFile     string
	Yes            bool
	Delay          time.Duration
	SkipInstall    bool
	PollAttempts   int
	PollInterval   time.Duration

	fs       afero.Fs
	runner   util.InteractiveRunner
	in       io.Reader
	out      io.Writer
	euid     func() int
	bootMode provision.BootMode
	device   *provision.BlockDevice
}

func NewInstallOptions() *InstallOptions {
	return &InstallOptions{
		fs:     afero.NewOsFs(),
		runner: util.NewCommandRunner(nil),
		in:     os.Stdin,
		out:    os.Stdout,
		euid:   os.Geteuid,
	}
}

func (o *InstallOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Disk, "disk", "", "disk to install onto, e.g. sda or nvme0n1; ALL DATA ON IT WILL BE LOST")
	fs.StringVar(&o.BootMode, "boot-mode", BootModeAuto, "boot mode: auto, efi or legacy")
	fs.StringVar(&o.FileSystemType, "file-system", string(provision.FileSystemTypeEXT4), "root file system type: ext4 or xfs")
	fs.StringVar(&o.MountRoot, "mount-root", provision.DefaultMountRoot, "where the new system is mounted")
	fs.StringVar(&o.ConfigFile, "config", "", "install template file (yaml); flags set on the command line take precedence")
	fs.BoolVarP(&o.Yes, "yes", "y", false, "do not ask for confirmation before wiping the disk")
	fs.DurationVar(&o.Delay, "delay", defaultDelay, "grace period before partitioning starts")
	fs.BoolVar(&o.SkipInstall, "skip-install", false, "stop after mounting, do not run nixos-generate-config and nixos-install")
	fs.IntVar(&o.PollAttempts, "poll-attempts", util.DefaultPollAttempts, "how many times to look for partition nodes and labels")
	fs.DurationVar(&o.PollInterval, "poll-interval", util.DefaultPollInterval, "delay between two polls")
}

// Complete merges the template file into the options and resolves the boot
// mode. Flags changed on the command line are left untouched.
func (o *InstallOptions) Complete(flags *pflag.FlagSet) error {
	if o.ConfigFile != "" {
		template, err := types.LoadTemplate(o.fs, o.ConfigFile)
		if err != nil {
			return err
		}
		if err := o.applyTemplate(template, flags); err != nil {
			return err
		}
	}

	o.Disk = strings.TrimPrefix(o.Disk, "/dev/")

	switch o.BootMode {
	case BootModeAuto:
		o.bootMode = provision.DetectBootMode(o.fs)
	default:
		o.bootMode = provision.BootMode(o.BootMode)
	}
	return nil
}

func (o *InstallOptions) applyTemplate(template *types.Template, flags *pflag.FlagSet) error {
	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}
	if template.Disk != "" && !changed("disk") {
		o.Disk = template.Disk
	}
	if template.BootMode != "" && !changed("boot-mode") {
		o.BootMode = template.BootMode
	}
	if template.FileSystem != "" && !changed("file-system") {
		o.FileSystemType = template.FileSystem
	}
	if template.MountRoot != "" && !changed("mount-root") {
		o.MountRoot = template.MountRoot
	}
	if template.SkipInstall && !changed("skip-install") {
		o.SkipInstall = true
	}
	if template.Poll.Attempts != 0 && !changed("poll-attempts") {
		o.PollAttempts = template.Poll.Attempts
	}
	if template.Poll.Interval != "" && !changed("poll-interval") {
		interval, err := time.ParseDuration(template.Poll.Interval)
		if err != nil {
			return errors.Wrapf(err, "invalid poll interval in %s", o.ConfigFile)
		}
		o.PollInterval = interval
	}
	return nil
}

func (o *InstallOptions) Validate() error {
	allErrs := field.ErrorList{}

	diskPath := field.NewPath("disk")
	if o.Disk == "" {
		allErrs = append(allErrs, field.Required(diskPath, "select the disk to install onto"))
	} else {
		device, err := provision.NewInventory(o.fs).Lookup(o.Disk)
		switch {
		case errors.Is(err, provision.ErrDiskNotFound):
			allErrs = append(allErrs, field.NotFound(diskPath, o.Disk))
		case err != nil:
			allErrs = append(allErrs, field.InternalError(diskPath, err))
		}
		o.device = device
	}

	if o.bootMode != provision.BootModeEFI && o.bootMode != provision.BootModeLegacy {
		allErrs = append(allErrs, field.NotSupported(field.NewPath("bootMode"), o.BootMode,
			[]string{BootModeAuto, string(provision.BootModeEFI), string(provision.BootModeLegacy)}))
	}

	switch provision.FileSystemType(o.FileSystemType) {
	case provision.FileSystemTypeEXT4, provision.FileSystemTypeXFS:
	default:
		allErrs = append(allErrs, field.NotSupported(field.NewPath("fileSystem"), o.FileSystemType,
			[]string{string(provision.FileSystemTypeEXT4), string(provision.FileSystemTypeXFS)}))
	}

	if !filepath.IsAbs(o.MountRoot) || filepath.Clean(o.MountRoot) == "/" {
		allErrs = append(allErrs, field.Invalid(field.NewPath("mountRoot"), o.MountRoot, "must be an absolute path other than /"))
	}

	pollPath := field.NewPath("poll")
	if o.PollAttempts < 1 {
		allErrs = append(allErrs, field.Invalid(pollPath.Child("attempts"), o.PollAttempts, "must be at least 1"))
	}
	if o.PollInterval < 0 {
		allErrs = append(allErrs, field.Invalid(pollPath.Child("interval"), o.PollInterval.String(), "must not be negative"))
	}
	if o.Delay < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("delay"), o.Delay.String(), "must not be negative"))
	}

	return allErrs.ToAggregate()
}
