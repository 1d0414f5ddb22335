// Package datalog writes the per-tick pack log as CSV.
package datalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Header is the first line of every data log.
var Header = []string{"Timestamp", "Voltage", "Current", "Temperature", "SoC"}

// Config controls the data log.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Path     string `json:"path"`
	Truncate bool   `json:"truncate"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "battery_data.csv"
	}
}

// Validate checks that an enabled log has a path.
func (c Config) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("datalog.path is required")
	}
	return nil
}

// CSVLogger appends one row per estimation tick. The header is written when
// the file is empty.
type CSVLogger struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewCSVLogger opens path for appending, or truncates it first when
// truncate is set.
func NewCSVLogger(path string, truncate bool) (*CSVLogger, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open data log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat data log: %w", err)
	}
	l := &CSVLogger{f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.write(Header); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return l, nil
}

// Log writes one row.
func (l *CSVLogger) Log(ts time.Time, voltage, current, temperature, soc float64) error {
	return l.write([]string{
		ts.Format(time.RFC3339),
		formatValue(voltage),
		formatValue(current),
		formatValue(temperature),
		formatValue(soc),
	})
}

func (l *CSVLogger) write(record []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Write(record); err != nil {
		return fmt.Errorf("write data log: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("flush data log: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (l *CSVLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		_ = l.f.Close()
		return err
	}
	return l.f.Close()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
