// pkg/version/version.go

package version

import "fmt"

// set by the linker
var (
	version      = "0.1.0-dev"
	revision     = "$Format:%h$"
	revisionDate = "$Format:%as$"
)

// Version returns `VERSION (REVISIONDATE REVISION)`.
func Version() string {
	return fmt.Sprintf("%v (%v %v)", version, revisionDate, revision)
}

// Creator is stored in the format of new grids.
func Creator() string {
	return "rasterswap/" + version
}
