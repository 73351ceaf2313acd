// pkg/meta/file.go

package meta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"RasterSwap/pkg/utils"
)

type fileMeta struct {
	conf *Config
	path string
}

func init() {
	Register("file", newFileMeta)
}

// newFileMeta keeps the format in <addr>/thisFile.
func newFileMeta(driver, addr string, conf *Config) (Meta, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty directory")
	}
	return &fileMeta{conf: conf, path: filepath.Join(addr, ThisFile)}, nil
}

func (m *fileMeta) Name() string {
	return "file"
}

func (m *fileMeta) Init(format Format, force bool) error {
	if m.conf.ReadOnly {
		return fmt.Errorf("read-only meta")
	}
	if old, err := m.Load(); err == nil {
		if err = checkUpdate(*old, format, force); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	data, err := json.MarshalIndent(format, "", "  ")
	if err != nil {
		return fmt.Errorf("json: %s", err)
	}
	if err = os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	return utils.WriteFileAtomic(m.path, data, 0644)
}

func (m *fileMeta) Load() (*Format, error) {
	body, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	var format Format
	if err = json.Unmarshal(body, &format); err != nil {
		return nil, fmt.Errorf("json: %s", err)
	}
	return &format, nil
}

func (m *fileMeta) Destroy() error {
	err := os.Remove(m.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
