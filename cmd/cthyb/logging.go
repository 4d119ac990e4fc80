package main

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newLogger maps verbosity 0..3 to the warn, info, debug and trace levels.
func newLogger(w io.Writer, verbosity int) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	switch {
	case verbosity <= 0:
		l.SetLevel(logrus.WarnLevel)
	case verbosity == 1:
		l.SetLevel(logrus.InfoLevel)
	case verbosity == 2:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.TraceLevel)
	}

	return l
}
