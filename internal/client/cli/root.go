package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/icymath/guestbook/internal/client/services"
)

func (a *App) getStatus() string {
	switch a.bootstrap.State() {
	case services.StateReady:
		id, _ := a.bootstrap.CurrentIdentity()
		return fmt.Sprintf("(%s)", shortID(id))
	case services.StatePending:
		return "(connecting)"
	case services.StateFailed:
		return "(identity failed)"
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a *App) readLine() (string, bool) {
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), true
		}
		return "", false
	}
	return strings.TrimSpace(line), true
}

// Root runs the interactive loop. It reads a line, parses the first token
// as the command, and dispatches. The loop exits on EOF or when the user
// types "exit" or "quit".
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to the guestbook (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "gb %s> ", a.getStatus())
		line, ok := a.readLine()
		if !ok {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Guestbook: (l)ist, post, edit, save, cancel, delete")
			fmt.Fprintln(a.out, "Quiz:      quiz [sum|sub] [easy|medium|hard], answer <n>, score, reset")
			fmt.Fprintln(a.out, "Other:     help, exit")

		case "l", "list":
			a.list(ctx)
		case "post":
			a.post(ctx)
		case "edit":
			a.edit(ctx)
		case "save":
			a.save(ctx)
		case "cancel":
			a.cancelEdit()
		case "delete":
			a.delete(ctx)

		case "quiz":
			a.startQuiz(args)
		case "answer":
			a.answer(args)
		case "score":
			a.score()
		case "reset":
			a.resetScore()

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
