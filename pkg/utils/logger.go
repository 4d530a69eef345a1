// pkg/utils/logger.go

package utils

import (
	"fmt"
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
	lvl      *logrus.Level
	colorful bool
}

func colorize(lvl logrus.Level, s string) string {
	var color int
	switch lvl {
	case logrus.DebugLevel, logrus.TraceLevel:
		color = 34 // blue
	case logrus.WarnLevel:
		color = 33 // yellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		color = 31 // red
	default:
		return s
	}
	return fmt.Sprintf("\033[1;%dm%s\033[0m", color, s)
}

func (l *logHandle) Format(e *logrus.Entry) ([]byte, error) {
	lvl := e.Level
	if l.lvl != nil {
		lvl = *l.lvl
	}

	const timeFormat = "2006/01/02 15:04:05.000000"
	timestamp := e.Time.Format(timeFormat)

	level := strings.ToUpper(lvl.String())
	if l.colorful {
		level = colorize(lvl, level)
	}
	str := fmt.Sprintf("%v %s[%d] <%v>: %v",
		timestamp,
		l.name,
		os.Getpid(),
		level,
		e.Message)

	if len(e.Data) != 0 {
		str += fmt.Sprintf(" %v", e.Data)
	}

	str += "\n"
	return []byte(str), nil
}

func newLogger(name string) *logHandle {
	l := &logHandle{name: name, colorful: isatty.IsTerminal(os.Stderr.Fd())}
	l.Out = os.Stderr
	l.Formatter = l
	l.Level = logrus.InfoLevel
	l.Hooks = make(logrus.LevelHooks)
	return l
}

// GetLogger returns a logger mapped to `name`
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
		logger.Level = lvl
	}
}

// SetOutFile redirects all the loggers to the file name, appending to it.
func SetOutFile(name string) error {
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	for _, logger := range loggers {
		logger.colorful = false
		logger.SetOutput(file)
	}
	return nil
}
