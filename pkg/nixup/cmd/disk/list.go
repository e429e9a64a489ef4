package disk

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/kubemetalio/nixup/pkg/provision"
)

func (o *DiskOptions) RunList() error {
	disks, err := provision.NewInventory(o.fs).ListBlockDevices()
	if err != nil {
		return err
	}
	if len(disks) == 0 {
		return errors.New("no disk devices found")
	}

	if o.Output == OutputFormatJSON {
		data, err := json.MarshalIndent(disks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(o.out, string(data))
		return nil
	}

	fmt.Fprintf(o.out, "Detected the following disks:\n\n")
	for i, disk := range disks {
		fmt.Fprintf(o.out, "%d: %-17s %s %s %10s total\n",
			i+1, provision.DevicePath(disk.Name), column(disk.Vendor, 12), column(disk.Model, 32),
			humanize.IBytes(uint64(disk.Size)))
	}
	return nil
}

var unknown = color.New(color.Faint)

// column pads value to width before colouring, escape codes would otherwise
// count towards the width.
func column(value string, width int) string {
	if value == "" {
		return unknown.Sprint(fmt.Sprintf("%-*s", width, "-"))
	}
	return fmt.Sprintf("%-*s", width, value)
}
