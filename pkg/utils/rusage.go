// pkg/utils/rusage.go

package utils

import "golang.org/x/sys/unix"

type Rusage struct {
	unix.Rusage
}

func (ru *Rusage) GetUtime() float64 {
	return float64(ru.Utime.Sec) + float64(ru.Utime.Usec)/1e6
}

func (ru *Rusage) GetStime() float64 {
	return float64(ru.Stime.Sec) + float64(ru.Stime.Usec)/1e6
}

// MaxRSS returns the peak resident set size in bytes.
func (ru *Rusage) MaxRSS() uint64 {
	// linux reports KiB
	return uint64(ru.Maxrss) << 10
}

func GetRusage() *Rusage {
	var ru unix.Rusage
	_ = unix.Getrusage(unix.RUSAGE_SELF, &ru)
	return &Rusage{ru}
}
