package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/roster/internal/config"
	"github.com/Iron-Ham/roster/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View roster logs",
	Long: `View and filter the roster log file.

Examples:
  # Show the last 50 entries
  roster logs

  # Show every entry
  roster logs -n 0

  # Follow new entries as they are written
  roster logs -f

  # Only warnings and errors from the controller
  roster logs --level warn --component controller

  # Entries from the last hour that mention a refresh
  roster logs --since 1h --grep refresh`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail      int
	logsFollow    bool
	logsLevel     string
	logsSince     string
	logsGrep      string
	logsComponent string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter entries matching pattern (regex)")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component (controller, source, tui, ...)")
}

// logEntry is one parsed JSON log line
type logEntry struct {
	Time      time.Time      `json:"time"`
	Level     string         `json:"level"`
	Msg       string         `json:"msg"`
	Component string         `json:"component,omitempty"`
	Operation string         `json:"operation,omitempty"`
	Extra     map[string]any `json:"-"`
}

// UnmarshalJSON captures fields beyond the known ones in Extra.
func (e *logEntry) UnmarshalJSON(data []byte) error {
	type alias logEntry
	if err := json.Unmarshal(data, (*alias)(e)); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"time", "level", "msg", "component", "operation"} {
		delete(all, k)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

// logFilter selects which entries are shown
type logFilter struct {
	minLevel  int
	since     time.Time
	grep      *regexp.Regexp
	component string
}

func (f logFilter) pass(e *logEntry) bool {
	if f.minLevel >= 0 && levelPriority(e.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && e.Time.Before(f.since) {
		return false
	}
	if f.component != "" && e.Component != f.component {
		return false
	}
	if f.grep != nil {
		text := e.Msg
		for _, v := range e.Extra {
			text += " " + fmt.Sprint(v)
		}
		if !f.grep.MatchString(text) {
			return false
		}
	}
	return true
}

var (
	logTimeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	logFieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	logLevelStyle = map[string]lipgloss.Style{
		logging.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		logging.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		logging.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		logging.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// levelPriority returns the priority of a log level for filtering
func levelPriority(level string) int {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return 0
	case logging.LevelInfo:
		return 1
	case logging.LevelWarn:
		return 2
	case logging.LevelError:
		return 3
	default:
		return -1
	}
}

// formatLogEntry renders an entry as a single terminal line
func formatLogEntry(e *logEntry) string {
	var sb strings.Builder

	sb.WriteString(logTimeStyle.Render("[" + e.Time.Format("15:04:05.000") + "]"))

	level := strings.ToUpper(e.Level)
	style, ok := logLevelStyle[level]
	if !ok {
		style = lipgloss.NewStyle()
	}
	sb.WriteString(" ")
	sb.WriteString(style.Render("[" + level + "]"))

	sb.WriteString(" ")
	sb.WriteString(e.Msg)

	if e.Component != "" {
		sb.WriteString(" " + logFieldStyle.Render("component=") + e.Component)
	}
	if e.Operation != "" {
		sb.WriteString(" " + logFieldStyle.Render("operation=") + e.Operation)
	}

	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" " + logFieldStyle.Render(k+"=") + fmt.Sprint(e.Extra[k]))
	}

	return sb.String()
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logPath := filepath.Join(cfg.Logging.ResolveDir(), logging.LogFileName)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No logs found.")
		fmt.Fprintln(out, "Logs are stored at:", logPath)
		return nil
	}

	filter := logFilter{minLevel: -1, component: logsComponent}
	if logsLevel != "" {
		filter.minLevel = levelPriority(logging.ParseLevel(logsLevel))
	}
	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		filter.since = time.Now().Add(-d)
	}
	if logsGrep != "" {
		re, err := regexp.Compile(logsGrep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
		filter.grep = re
	}

	if logsFollow {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return followLogs(ctx, out, logPath, filter)
	}
	return displayLogs(out, logPath, logsTail, filter)
}

// displayLogs prints the last tail entries of the log file that pass filter
func displayLogs(w io.Writer, logPath string, tail int, filter logFilter) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if line, ok := renderLine(scanner.Text(), filter); ok {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if tail > 0 && len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	if len(lines) == 0 {
		fmt.Fprintln(w, "No matching log entries found.")
	}
	return nil
}

// renderLine formats one raw line. Lines that are not JSON are shown as-is.
func renderLine(raw string, filter logFilter) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	var e logEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return raw, true
	}
	if !filter.pass(&e) {
		return "", false
	}
	return formatLogEntry(&e), true
}

// followLogs prints entries appended to the log file until ctx is done.
// The directory is watched rather than the file so that rotation, which
// renames roster.log and creates a new one, is followed.
func followLogs(ctx context.Context, w io.Writer, logPath string, filter logFilter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(logPath)); err != nil {
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Fprintf(w, "Following %s... (Ctrl+C to stop)\n\n", logPath)
	reader := bufio.NewReader(file)
	var pending string

	drain := func() error {
		for {
			line, err := reader.ReadString('\n')
			if err == io.EOF {
				// Hold a partial line until the rest is written.
				pending += line
				return nil
			}
			if err != nil {
				return fmt.Errorf("error reading log file: %w", err)
			}
			line, pending = pending+line, ""
			if out, ok := renderLine(line, filter); ok {
				fmt.Fprintln(w, out)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(logPath) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Write):
				if err := drain(); err != nil {
					return err
				}
			case ev.Has(fsnotify.Create):
				// Rotated: finish the old file and start on the new one.
				if err := drain(); err != nil {
					return err
				}
				next, err := os.Open(logPath)
				if err != nil {
					return fmt.Errorf("failed to reopen log file: %w", err)
				}
				_ = file.Close()
				file = next
				reader = bufio.NewReader(file)
				pending = ""
				if err := drain(); err != nil {
					return err
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("log watcher failed: %w", err)
		}
	}
}
