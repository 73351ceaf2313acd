// pkg/utils/logger.go

package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var mu sync.Mutex
var loggers = make(map[string]*logHandle)

type logHandle struct {
	logrus.Logger

	name     string
	colorful bool
}

var levelColors = map[logrus.Level]int{
	logrus.PanicLevel: 35,
	logrus.FatalLevel: 35,
	logrus.ErrorLevel: 31,
	logrus.WarnLevel:  33,
	logrus.DebugLevel: 36,
	logrus.TraceLevel: 90,
}

func (l *logHandle) Format(e *logrus.Entry) ([]byte, error) {
	const timeFormat = "2006/01/02 15:04:05.000000"
	lvl := strings.ToUpper(e.Level.String())
	if c, ok := levelColors[e.Level]; ok && l.colorful {
		lvl = fmt.Sprintf("\033[1;%dm%s\033[0m", c, lvl)
	}
	str := fmt.Sprintf("%s %s[%d] <%s>: %s",
		e.Time.Format(timeFormat), l.name, os.Getpid(), lvl, e.Message)
	if len(e.Data) != 0 {
		str += fmt.Sprintf(" %v", e.Data)
	}
	return []byte(str + "\n"), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func newLogger(name string) *logHandle {
	l := &logHandle{name: name, colorful: isTerminal(os.Stderr)}
	l.Out = os.Stderr
	l.Formatter = l
	l.Level = logrus.InfoLevel
	l.Hooks = make(logrus.LevelHooks)
	return l
}

// GetLogger returns the logger of `name`, creating it on first use.
func GetLogger(name string) *logHandle {
	mu.Lock()
	defer mu.Unlock()

	if logger, ok := loggers[name]; ok {
		return logger
	}
	logger := newLogger(name)
	loggers[name] = logger
	return logger
}

// SetLogLevel sets Level to all the loggers in the map
func SetLogLevel(lvl logrus.Level) {
	mu.Lock()
	defer mu.Unlock()
	for _, logger := range loggers {
		logger.SetLevel(lvl)
	}
}

// SetOutFile redirects all the loggers to the file `name`, without colors.
func SetOutFile(name string) error {
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	for _, logger := range loggers {
		logger.SetOutput(file)
		logger.colorful = false
	}
	return nil
}
