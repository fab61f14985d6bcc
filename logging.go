package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type flogger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// ThreadLogger tags every line with the worker it came from
type ThreadLogger struct {
	name string
}

func (tl *ThreadLogger) Printf(format string, v ...interface{}) {
	log.Printf("[%s] %s", tl.name, fmt.Sprintf(format, v...))
}

func (tl *ThreadLogger) Println(v ...interface{}) {
	log.Printf("[%s] %s", tl.name, fmt.Sprintln(v...))
}

// log to a rotating file, and to stdout too if asked
func setupLogging(settings configSettings, toStdout bool) (*lumberjack.Logger, error) {
	fname := settings.GetString(sLogFile)
	if fname == "" {
		return nil, fmt.Errorf("no %s configured", sLogFile)
	}

	logFile := &lumberjack.Logger{
		Filename:   fname,
		MaxSize:    settings.GetInt(sLogMaxSize),
		MaxBackups: settings.GetInt(sLogMaxBackups),
		MaxAge:     settings.GetInt(sLogMaxAge),
	}

	var out io.Writer = logFile
	if toStdout {
		out = io.MultiWriter(os.Stdout, logFile)
	}
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return logFile, nil
}
