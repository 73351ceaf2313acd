// pkg/meta/interface.go

package meta

import (
	"fmt"
	"strings"

	"RasterSwap/pkg/utils"
)

var logger = utils.GetLogger("rasterswap")

// ThisFile is the name of the metadata file inside a grid directory.
const ThisFile = "thisFile"

// Meta stores the Format of a grid.
type Meta interface {
	// Name of the backend.
	Name() string
	// Init saves the format; an existing different format is only replaced with force.
	Init(format Format, force bool) error
	// Load returns the saved format.
	Load() (*Format, error)
	// Destroy removes the saved format.
	Destroy() error
}

type Creator func(driver, addr string, conf *Config) (Meta, error)

var metaDrivers = make(map[string]Creator)

func Register(name string, register Creator) {
	metaDrivers[name] = register
}

// NewClient creates a Meta for uri; a plain path means the file backend.
func NewClient(uri string, conf *Config) (Meta, error) {
	if conf == nil {
		conf = &Config{}
	}
	if !strings.Contains(uri, "://") {
		uri = "file://" + uri
	}
	p := strings.Index(uri, "://")
	driver := uri[:p]
	f, ok := metaDrivers[driver]
	if !ok {
		return nil, fmt.Errorf("invalid meta driver: %s", driver)
	}
	m, err := f(driver, uri[p+3:], conf)
	if err != nil {
		return nil, fmt.Errorf("meta %s: %s", uri, err)
	}
	logger.Debugf("meta address: %s", uri)
	return m, nil
}

// checkUpdate refuses to silently replace a different format.
func checkUpdate(old, format Format, force bool) error {
	if old == format {
		return nil
	}
	if force {
		logger.Warnf("Existing format will be overwritten: %+v", old)
		return nil
	}
	return fmt.Errorf("cannot update format from %+v to %+v", old, format)
}
