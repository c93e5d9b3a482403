package repository

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"earningsbot/src/model"
)

// TradeLogFile is an append-only JSON Lines file, one OrderResult per line.
type TradeLogFile struct {
	path string
}

func NewTradeLogFile(path string) *TradeLogFile {
	return &TradeLogFile{path: path}
}

func (l *TradeLogFile) Path() string { return l.path }

// Append writes r as one line at the end of the log.
func (l *TradeLogFile) Append(r model.OrderResult) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create trade log dir: %w", err)
	}

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode trade: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open trade log %s: %w", l.path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append trade: %w", err)
	}
	return f.Close()
}

// ReadAll returns every record in file order. Unparsable lines are logged and skipped.
func (l *TradeLogFile) ReadAll() ([]model.OrderResult, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.OrderResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open trade log %s: %w", l.path, err)
	}
	defer f.Close()

	records := []model.OrderResult{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var r model.OrderResult
		if err := json.Unmarshal(line, &r); err != nil {
			logger.WithFields(map[string]interface{}{
				"repo": "TradeLogFile",
				"line": lineNo,
			}).WithError(err).Warn("Skipping malformed trade log line")
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan trade log: %w", err)
	}
	return records, nil
}

// Tail returns the last n records, oldest first. n <= 0 returns everything.
func (l *TradeLogFile) Tail(n int) ([]model.OrderResult, error) {
	records, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(records) {
		return records, nil
	}
	return records[len(records)-n:], nil
}
