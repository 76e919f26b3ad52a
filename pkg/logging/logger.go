// Package logger provides the leveled application log. Output goes to the
// console and to a size-rotated file under the log directory.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu       sync.Mutex
	debugLog *log.Logger
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	verbose  bool
)

// Init sets up the loggers. Rotation is handled by lumberjack; debug output
// is only emitted when debug is true (the REQUEST_DUMP config flag).
func Init(logDir string, debug bool) {
	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "wordspark.log"),
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	outWriter := io.MultiWriter(os.Stdout, rotated)
	errWriter := io.MultiWriter(os.Stderr, rotated)

	debugLog = log.New(outWriter, "DEBUG: ", log.Ldate|log.Ltime)
	infoLog = log.New(outWriter, "INFO: ", log.Ldate|log.Ltime)
	warnLog = log.New(outWriter, "WARNING: ", log.Ldate|log.Ltime)
	errorLog = log.New(errWriter, "ERROR: ", log.Ldate|log.Ltime)
	verbose = debug

	// Route Go's default log through the same writer.
	log.SetOutput(outWriter)
}

func callerInfo() string {
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	return runtime.FuncForPC(pc).Name()
}

func emit(l *log.Logger, format string, v ...interface{}) {
	if l == nil {
		log.Printf(format, v...)
		return
	}
	mu.Lock()
	defer mu.Unlock()
	l.Printf("[%s] %s", callerInfo(), fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) {
	if !verbose {
		return
	}
	emit(debugLog, format, v...)
}

func Info(format string, v ...interface{}) {
	emit(infoLog, format, v...)
}

func Warn(format string, v ...interface{}) {
	emit(warnLog, format, v...)
}

func Error(format string, v ...interface{}) {
	emit(errorLog, format, v...)
}
