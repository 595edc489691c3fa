package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Logging state. consoleLogOut is stdout for serve and stderr for console
// mode, where stdout carries replies.
var (
	logMu         sync.Mutex
	logFile       *os.File
	logFilePath   string
	consoleLogOut io.Writer = os.Stdout
	logLevel                = new(slog.LevelVar)
)

// setupLogger installs the default slog logger. Records go to console and,
// when path is non-empty and can be opened, are appended to that file too.
func setupLogger(path string, level string, console io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()

	if console != nil {
		consoleLogOut = console
	}
	if lvl, ok := parseLogLevel(level); ok {
		logLevel.Set(lvl)
	}
	logFilePath = path

	if err := installLoggerLocked(); err != nil {
		slog.Error("Persistent logging disabled", "file", path, "err", err)
		return
	}
	if logFile != nil {
		slog.Info("Persistent logging enabled", "file", path)
	}
}

// installLoggerLocked (re)opens the log file and swaps the default logger.
// On error the logger still writes to the console.
func installLoggerLocked() error {
	closeLogFileLocked()

	out := consoleLogOut
	var openErr error
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			openErr = err
		} else {
			logFile = f
			out = io.MultiWriter(consoleLogOut, f)
		}
	}

	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h).With("app", "resourcebot"))
	return openErr
}

func closeLogger() {
	logMu.Lock()
	defer logMu.Unlock()
	closeLogFileLocked()
}

func closeLogFileLocked() {
	if logFile == nil {
		return
	}
	_ = logFile.Sync()
	_ = logFile.Close()
	logFile = nil
}

// prunePersistentLogs drops log lines older than retentionHours from the
// persistent log file. Zero disables pruning.
func prunePersistentLogs(retentionHours int) {
	if retentionHours <= 0 {
		return
	}
	window := time.Duration(retentionHours) * time.Hour
	if err := prunePersistentLogsOlderThan(window); err != nil {
		slog.Error("Failed to prune persistent logs", "err", err, "retention", window.String())
		return
	}
	slog.Info("Persistent logs pruned", "retention", window.String())
}

func prunePersistentLogsOlderThan(window time.Duration) error {
	cutoff := time.Now().Add(-window)

	logMu.Lock()
	defer logMu.Unlock()
	if logFilePath == "" {
		return nil
	}

	// The file is rewritten in place, so stop appending while it happens.
	closeLogFileLocked()
	defer func() {
		if err := installLoggerLocked(); err != nil {
			slog.Error("Persistent logging disabled after pruning", "file", logFilePath, "err", err)
		}
	}()

	return filterLines(logFilePath, func(line string) bool {
		ts, ok := logLineTime(line)
		return !ok || !ts.Before(cutoff)
	})
}

// filterLines rewrites path keeping only the lines for which keep is true.
// The rewrite goes through a temp file and a rename. A missing file is left
// alone.
func filterLines(path string, keep func(string) bool) (err error) {
	in, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
		}
	}()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	w := bufio.NewWriter(out)
	for sc.Scan() {
		if !keep(sc.Text()) {
			continue
		}
		if _, err = fmt.Fprintln(w, sc.Text()); err != nil {
			return err
		}
	}
	if err = sc.Err(); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// logLineTime reads the time= attribute written by slog's text handler.
func logLineTime(line string) (time.Time, bool) {
	_, rest, found := strings.Cut(line, "time=")
	if !found || rest == "" {
		return time.Time{}, false
	}

	var raw string
	if rest[0] == '"' {
		v, _, closed := strings.Cut(rest[1:], `"`)
		if !closed {
			return time.Time{}, false
		}
		raw = v
	} else {
		raw, _, _ = strings.Cut(rest, " ")
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	return ts, err == nil
}
