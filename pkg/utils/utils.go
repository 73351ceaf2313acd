// pkg/utils/utils.go

package utils

import (
	"os"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFileAtomic writes data into a temporary file next to `name` and renames it,
// so readers never observe a partially written file.
func WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Chmod(perm)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), name)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
	}
	return err
}

// NewProgressBar returns a bar counting up to total, drawn only on a terminal.
// A total of 0 leaves it open until SetTotal.
func NewProgressBar(title string, total int64, quiet bool) (*mpb.Progress, *mpb.Bar) {
	opts := []mpb.ContainerOption{mpb.WithWidth(64)}
	if quiet || !isTerminal(os.Stdout) {
		opts = append(opts, mpb.WithOutput(nil))
	}
	progress := mpb.New(opts...)
	bar := progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(title, decor.WCSyncWidth),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done"),
		),
	)
	return progress, bar
}
