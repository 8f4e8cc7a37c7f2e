package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

func BoostrapLogger() {
	Log = &logrus.Logger{
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Formatter: &logrus.TextFormatter{
			DisableColors:    false,
			DisableQuote:     false,
			DisableTimestamp: false,
			FullTimestamp:    true,
			TimestampFormat:  "2006-01-02 15:04:05",
		},
		ReportCaller: false,
		Level:        logrus.DebugLevel,
		ExitFunc:     os.Exit,
	}

	Log.SetReportCaller(true)
}

// SetLevel applies the configured level once the config has been read.
func SetLevel(level string) {
	Log.SetLevel(parseLevel(level))
}

// parseLevel falls back to debug, the level the service always ran with.
func parseLevel(level string) logrus.Level {
	if level == "" {
		return logrus.DebugLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.DebugLevel
	}
	return lvl
}
