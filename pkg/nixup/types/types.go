package types

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Template
//
//	disk: nvme0n1
//	bootMode: auto
//	fileSystem: ext4
//	mountRoot: /mnt
//	skipInstall: false
//	poll:
//	  attempts: 10
//	  interval: 1s
type Template struct {
	Disk        string `json:"disk,omitempty"`
	BootMode    string `json:"bootMode,omitempty"`
	FileSystem  string `json:"fileSystem,omitempty"`
	MountRoot   string `json:"mountRoot,omitempty"`
	SkipInstall bool   `json:"skipInstall,omitempty"`
	Poll        Poll   `json:"poll,omitempty"`
}

type Poll struct {
	Attempts int    `json:"attempts,omitempty"`
	Interval string `json:"interval,omitempty"`
}

// LoadTemplate reads a YAML or JSON template from path.
func LoadTemplate(fs afero.Fs, path string) (*Template, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read template %s", path)
	}
	template := &Template{}
	if err := yaml.UnmarshalStrict(data, template); err != nil {
		return nil, errors.Wrapf(err, "failed to parse template %s", path)
	}
	return template, nil
}
