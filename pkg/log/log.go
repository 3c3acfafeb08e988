package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

type Fields = logrus.Fields

// NewLogger returns the process logger. Output goes to stderr and, outside
// APP_ENV=test, to a rotated file under LOG_DIR (default ./storage/logs).
func NewLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.DebugLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			NoColors:        false,
			TimestampFormat: "02 Jan 06 - 15:04",
			HideKeys:        false,
			CallerFirst:     true,
			CustomCallerFormatter: func(f *runtime.Frame) string {
				s := strings.Split(f.Function, ".")
				funcName := s[len(s)-1]
				return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
			},
		})

		writers := []io.Writer{os.Stderr}

		if os.Getenv("APP_ENV") != "test" {
			dir := os.Getenv("LOG_DIR")
			if dir == "" {
				dir = "./storage/logs"
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   filepath.Join(dir, fmt.Sprintf("app-%s.log", time.Now().Format("2006-01-02"))),
				LocalTime:  true,
				Compress:   true,
				MaxSize:    100,
				MaxAge:     7,
				MaxBackups: 3,
			})
		}

		logger.SetOutput(io.MultiWriter(writers...))
		logger.SetReportCaller(true)
	})

	return logger
}

// ErrorWithTraceID logs at error level and returns the id a client can quote
// back. The request id is reused when present.
func ErrorWithTraceID(l *logrus.Logger, fields Fields, msg string) string {
	if fields == nil {
		fields = Fields{}
	}

	traceID, _ := fields["request_id"].(string)
	if traceID == "" || traceID == "unknown" {
		id, err := uuid.NewRandom()
		if err != nil {
			traceID = "unknown"
		} else {
			traceID = id.String()
		}
	}

	fields["trace_id"] = traceID
	l.WithFields(fields).Error(msg)

	return traceID
}
