package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/roster/internal/config"
	"github.com/Iron-Ham/roster/internal/errors"
	"github.com/Iron-Ham/roster/internal/logging"
	"github.com/Iron-Ham/roster/internal/source"
	"github.com/Iron-Ham/roster/internal/user"
	"github.com/Iron-Ham/roster/internal/util"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Print a batch of users without the interactive interface",
	Long: `Fetch one batch of users from the configured service and print it.

Examples:
  # Print a table of 10 users (source.batch_size)
  roster fetch

  # Print 3 users as JSON, including every field the service returned
  roster fetch -n 3 --json

  # Only show users whose name matches a glob
  roster fetch -n 50 --match 'a*'`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var (
	fetchCount int
	fetchJSON  bool
	fetchMatch string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVarP(&fetchCount, "count", "n", 0, "Number of users to fetch (default: source.batch_size)")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print users as JSON")
	fetchCmd.Flags().StringVar(&fetchMatch, "match", "", "Only print users whose name matches (substring or glob)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	filter, err := user.CompileFilter(fetchMatch)
	if err != nil {
		return errors.Wrapf(err, "invalid --match pattern %q", fetchMatch)
	}

	count := fetchCount
	if count == 0 {
		count = cfg.Source.BatchSize
	}
	if err := source.ValidateCount(count); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
	users, err := newSource(cfg, logger).FetchBatch(ctx, count)
	if err != nil {
		return fetchError(err)
	}
	users = filter.Apply(users)

	out := cmd.OutOrStdout()
	if fetchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}
	printUsers(out, users, terminalWidth(out))
	return nil
}

// fetchError prefixes a source failure with what went wrong in plain words.
func fetchError(err error) error {
	switch {
	case errors.Is(err, errors.ErrTimeout):
		return errors.Wrap(err, "the user service did not answer in time")
	case errors.IsNetwork(err):
		return errors.Wrap(err, "could not reach the user service")
	case errors.IsParse(err):
		return errors.Wrap(err, "the user service sent an unexpected response")
	default:
		return errors.Wrap(err, "fetch failed")
	}
}

// terminalWidth returns the width of w when it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// printUsers writes users as an aligned table. When width is positive,
// avatar URLs are shortened so rows fit.
func printUsers(w io.Writer, users user.List, width int) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users.")
		return
	}

	header := lipgloss.NewStyle().Bold(true)
	uidWidth, nameWidth := len("UID"), len("NAME")
	for _, u := range users {
		uidWidth = max(uidWidth, lipgloss.Width(u.UID.String()))
		nameWidth = max(nameWidth, lipgloss.Width(u.DisplayName()))
	}

	const gap = "  "
	fmt.Fprintln(w, header.Render(util.Align("UID", uidWidth, false)+gap+util.Align("NAME", nameWidth, false)+gap+"AVATAR"))

	avatarWidth := 0
	if width > 0 {
		avatarWidth = max(1, width-uidWidth-nameWidth-2*len(gap))
	}
	for _, u := range users {
		avatar := u.Avatar
		if avatarWidth > 0 {
			avatar = util.TruncateMiddle(avatar, avatarWidth)
		}
		row := util.Align(u.UID.String(), uidWidth, false) + gap +
			util.Align(u.DisplayName(), nameWidth, false) + gap +
			avatar
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}
