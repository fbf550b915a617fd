package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
)

// TxWatchModel is the Bubble Tea model that follows one pending transaction
// until it settles. Quitting stops observing; it does not cancel the
// transaction.
type TxWatchModel struct {
	Title       string
	ExplorerURL func(hash string) string

	tx       *txstatus.PendingTransaction
	status   txstatus.Status
	frame    int
	quitting bool
}

type txWatchTickMsg struct{}

func txWatchTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return txWatchTickMsg{}
	})
}

// NewTxWatch creates a watcher for tx.
func NewTxWatch(title string, tx *txstatus.PendingTransaction) TxWatchModel {
	return TxWatchModel{Title: title, tx: tx, status: tx.Status()}
}

// Status is the last observed status.
func (m TxWatchModel) Status() txstatus.Status { return m.status }

// Quit reports whether the user left before the transaction settled.
func (m TxWatchModel) Quit() bool { return m.quitting }

func (m TxWatchModel) Init() tea.Cmd { return txWatchTick() }

func (m TxWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case txWatchTickMsg:
		m.frame++
		m.status = m.tx.Status()
		if m.status.Phase.Terminal() || m.status.Detached {
			return m, tea.Quit
		}
		return m, txWatchTick()
	}
	return m, nil
}

var watchSteps = []txstatus.Phase{
	txstatus.PhasePreparing,
	txstatus.PhaseSubmitted,
	txstatus.PhaseIncluded,
	txstatus.PhaseFinalized,
}

func (m TxWatchModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("  "+m.Title) + "\n")

	cur := m.status.Phase
	for _, step := range watchSteps {
		var mark string
		switch {
		case cur == txstatus.PhaseFailed:
			mark = StyleMeta.Render("·")
		case step < cur || (step == cur && cur.Terminal()):
			mark = StyleSuccess.Render("✓")
		case step == cur:
			mark = StyleChain.Render(spinnerFrames[m.frame%len(spinnerFrames)])
		default:
			mark = StyleMeta.Render("·")
		}
		sb.WriteString("  " + mark + " " + step.String() + "\n")
	}

	if hash := m.tx.Hash(); hash != (common.Hash{}) {
		line := "  hash  " + Addr(hash.Hex())
		if m.ExplorerURL != nil {
			if u := m.ExplorerURL(hash.Hex()); u != "" {
				line += "\n  " + Meta(u)
			}
		}
		sb.WriteString("\n" + line + "\n")
	}
	if m.status.IsError && m.status.Err != nil {
		sb.WriteString("\n  " + Err(m.status.Err.Error()) + "\n")
	}
	if !m.quitting && !m.status.Phase.Terminal() {
		sb.WriteString("\n" + Meta("  [ q ] stop watching (the transaction keeps going)") + "\n")
	}
	return sb.String()
}

// RunTxWatch shows the watcher until the transaction settles or the user
// quits, and returns the final model.
func RunTxWatch(m TxWatchModel) (TxWatchModel, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return m, err
	}
	return final.(TxWatchModel), nil
}
