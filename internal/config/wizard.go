package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a wizard reading answers from in and prompting on out
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run asks for the common settings and returns the resulting config.
// An empty answer keeps the default shown in brackets.
func (w *Wizard) Run(dataDir string) (*Config, error) {
	fmt.Fprintln(w.out, "=== barrot configuration ===")
	fmt.Fprintln(w.out)

	cfg := DefaultConfig()
	cfg.DataDir = dataDir
	validator := NewValidator()

	dir, err := w.ask(fmt.Sprintf("Data directory [%s]: ", dataDir))
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.DataDir = dir
	}

	cache, err := w.ask("Cache tool results? (y/n) [y]: ")
	if err != nil {
		return nil, err
	}
	cfg.Tools.CacheEnabled = cache == "" || strings.EqualFold(cache, "y")

	if cfg.Tools.CacheEnabled {
		for {
			ttl, err := w.ask(fmt.Sprintf("Cache TTL in seconds [%d]: ", cfg.Tools.CacheTTLSeconds))
			if err != nil {
				return nil, err
			}
			if ttl == "" {
				break
			}
			seconds, err := strconv.Atoi(ttl)
			if err != nil || seconds <= 0 {
				fmt.Fprintf(w.out, "Error: TTL must be a positive integer\n")
				continue
			}
			cfg.Tools.CacheTTLSeconds = seconds
			break
		}
	}

	strict, err := w.ask("Validate parameter types strictly? (y/n) [n]: ")
	if err != nil {
		return nil, err
	}
	cfg.Tools.StrictTypes = strings.EqualFold(strict, "y")

	for {
		driver, err := w.ask("Execution log driver (json/sqlite) [json]: ")
		if err != nil {
			return nil, err
		}
		if driver == "" {
			break
		}
		if err := validator.ValidateDriver(driver); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}
		cfg.Tools.ExecutionLog.Driver = driver
		break
	}

	level, err := w.ask("Log level (debug/info/warn/error) [info]: ")
	if err != nil {
		return nil, err
	}
	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Fprintf(w.out, "Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete!")

	cfg.ApplyPaths()
	return cfg, nil
}

func (w *Wizard) ask(prompt string) (string, error) {
	fmt.Fprint(w.out, prompt)
	return w.readLine()
}

// readLine treats end of input as an empty answer
func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
