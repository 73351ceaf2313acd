// pkg/swap/limit.go

package swap

import (
	"io"

	"github.com/juju/ratelimit"
)

type limitedWriter struct {
	io.Writer
	w *ratelimit.Bucket
}

func (l *limitedWriter) Write(buf []byte) (int, error) {
	if l.w != nil {
		l.w.Wait(int64(len(buf)))
	}
	return l.Writer.Write(buf)
}

type limitedReader struct {
	io.Reader
	r *ratelimit.Bucket
}

func (l *limitedReader) Read(buf []byte) (int, error) {
	n, err := l.Reader.Read(buf)
	if l.r != nil {
		l.r.Wait(int64(n))
	}
	return n, err
}

// newBucket returns nil for an unlimited rate.
func newBucket(rate int64) *ratelimit.Bucket {
	if rate <= 0 {
		return nil
	}
	// leave some room for the filesystem's own overhead
	return ratelimit.NewBucketWithRate(float64(rate)*0.85, rate)
}
