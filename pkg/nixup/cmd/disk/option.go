package disk

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
)

type DiskOptions struct {
	Output string

	fs  afero.Fs
	out io.Writer
}

func NewDiskOptions() *DiskOptions {
	return &DiskOptions{fs: afero.NewOsFs(), out: os.Stdout}
}

func (o *DiskOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", OutputFormatTable, "output format: table or json")
}

func (o *DiskOptions) Validate() error {
	allErrs := field.ErrorList{}
	if o.Output != OutputFormatTable && o.Output != OutputFormatJSON {
		allErrs = append(allErrs, field.NotSupported(field.NewPath("output"), o.Output,
			[]string{OutputFormatTable, OutputFormatJSON}))
	}
	return allErrs.ToAggregate()
}
