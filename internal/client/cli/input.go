package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword so tests never touch the
// terminal.
var readPassword = term.ReadPassword

// promptText prints a prompt and reads one line, trimmed. A partial line at
// EOF is still returned.
func promptText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptInt reads a line and parses it as a positive integer. An empty line
// returns (0, nil) so callers can treat it as "done" or "skip".
func promptInt(reader *bufio.Reader, prompt string, w io.Writer) (int64, error) {
	raw, err := promptText(reader, prompt, w)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive number, got %q", raw)
	}
	return n, nil
}

// promptFloat reads a line and parses it as a non-negative number.
func promptFloat(reader *bufio.Reader, prompt string, w io.Writer) (float64, error) {
	raw, err := promptText(reader, prompt, w)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("expected a number, got %q", raw)
	}
	return f, nil
}

// promptPassword reads a password without echo.
func promptPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
