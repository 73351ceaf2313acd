// pkg/chunk/id.go

package chunk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ID addresses a chunk within the chunk grid of a raster.
type ID struct {
	Row int
	Col int
}

// String is also the name of the chunk's swap file.
func (id ID) String() string {
	return fmt.Sprintf("%d_%d", id.Row, id.Col)
}

// Less orders ids row-major.
func (id ID) Less(o ID) bool {
	if id.Row != o.Row {
		return id.Row < o.Row
	}
	return id.Col < o.Col
}

// ParseID parses the "<row>_<col>" form.
func ParseID(s string) (ID, error) {
	ps := strings.Split(s, "_")
	if len(ps) != 2 {
		return ID{}, errors.Errorf("invalid chunk id %q", s)
	}
	r, err := strconv.Atoi(ps[0])
	if err != nil || r < 0 {
		return ID{}, errors.Errorf("invalid chunk row in %q", s)
	}
	c, err := strconv.Atoi(ps[1])
	if err != nil || c < 0 {
		return ID{}, errors.Errorf("invalid chunk col in %q", s)
	}
	return ID{r, c}, nil
}
