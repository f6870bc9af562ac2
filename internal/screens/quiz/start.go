package quiz

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skiquiz/internal/screen"
	"github.com/abhisek/skiquiz/internal/session"
)

// Starter is the part of the controller that begins a quiz.
type Starter interface {
	StartQuiz(free bool) (session.StartOutcome, error)
}

// Start returns a command that starts a quiz and navigates to it. Running
// out of tickets sends the player to the shop. A repeated start while a
// quiz is running does nothing.
func Start(s Starter, free bool) tea.Cmd {
	return func() tea.Msg {
		out, err := s.StartQuiz(free)
		if err != nil {
			return screen.StatusMsg{Text: fmt.Sprintf("Couldn't start the quiz: %v", err), Error: true}
		}
		switch out {
		case session.NeedTickets:
			return screen.NavigateMsg{To: screen.Shop, Status: "Out of tickets! Grab a pack to keep skiing."}
		case session.FreePlayUsed:
			return screen.StatusMsg{Text: "Today's free run is used. Come back tomorrow!", Error: true}
		case session.AlreadyRunning:
			return nil
		}
		return screen.NavigateMsg{To: screen.Quiz}
	}
}
