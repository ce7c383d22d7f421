package config

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

type LogLevel int32

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

var logLevelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < LogDebug || l > LogError {
		return fmt.Sprintf("LogLevel(%d)", int32(l))
	}
	return logLevelNames[l]
}

func ParseLogLevel(name string) (LogLevel, error) {
	for i, n := range logLevelNames {
		if strings.EqualFold(n, name) {
			return LogLevel(i), nil
		}
	}
	return LogInfo, errors.Errorf("Unknown log level %q", name)
}

var currentLogLevel int32 = int32(LogInfo)

func GetLogLevel() LogLevel {
	return LogLevel(atomic.LoadInt32(&currentLogLevel))
}

func SetLogLevel(l LogLevel) {
	atomic.StoreInt32(&currentLogLevel, int32(l))
}

// LogEnabled reports whether messages of level l pass the current filter.
func LogEnabled(l LogLevel) bool {
	return l >= GetLogLevel()
}

func logf(l LogLevel, format string, a ...interface{}) {
	if !LogEnabled(l) {
		return
	}
	log.Output(3, l.String()+" "+fmt.Sprintf(format, a...))
}

func Debugf(format string, a ...interface{}) { logf(LogDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LogInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LogWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LogError, format, a...) }
