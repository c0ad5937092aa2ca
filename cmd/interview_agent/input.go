package main

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/logging"
)

// controller is the part of the session the terminal commands drive.
type controller interface {
	Skip() error
	SubmitText(text string) error
	Resume() error
	EndNow() error
}

// forwardInput reads stdin line by line. Slash commands go to the session, every
// other line is passed to the listener through w. w is closed at end of input.
func forwardInput(r io.Reader, w io.WriteCloser, s controller, logger logging.Logger) {
	defer func() { _ = w.Close() }()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		handled, err := dispatch(line, s)
		if handled {
			if err != nil && !errors.Is(err, interview.ErrSessionEnded) {
				logger.Warn("%v", err)
			}
			continue
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return
		}
	}
}

// dispatch runs a slash command. It reports false for lines that are not
// commands.
func dispatch(line string, s controller) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return false, nil
	}

	command, rest, _ := strings.Cut(trimmed, " ")
	switch strings.ToLower(command) {
	case "/skip":
		return true, s.Skip()
	case "/type":
		return true, s.SubmitText(rest)
	case "/resume":
		return true, s.Resume()
	case "/end", "/quit":
		return true, s.EndNow()
	default:
		return false, nil
	}
}
