// Package tui renders the duel session in the terminal. It is pure
// presentation: every key press either becomes a session intent or is
// ignored, and everything drawn comes from session snapshots.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelichko/quizduel-client/internal/catalog"
	"github.com/avelichko/quizduel-client/internal/engine"
	"github.com/avelichko/quizduel-client/internal/restapi"
	"github.com/avelichko/quizduel-client/internal/session"
)

type snapshotMsg session.Snapshot

type snapsClosedMsg struct{}

type topicsMsg struct {
	topics []restapi.Topic
	err    error
}

type statsMsg struct {
	stats restapi.PvPStats
	err   error
}

type maxTasksMsg struct{ max int }

type errMsg struct{ err error }

type Model struct {
	sess          *session.Session
	resolver      *catalog.Resolver
	rest          *restapi.Client
	localPlayerID int

	snaps chan session.Snapshot
	snap  session.Snapshot

	input    textinput.Model
	joinMode bool

	topics   []restapi.Topic
	topicIdx int // 0 = any topic
	stats    *restapi.PvPStats

	taskCount int
	duration  int
	maxTasks  int

	localErr string
	width    int
}

func New(sess *session.Session, resolver *catalog.Resolver, rest *restapi.Client, localPlayerID int) Model {
	input := textinput.New()
	input.Placeholder = "answer"
	input.CharLimit = 128

	return Model{
		sess:          sess,
		resolver:      resolver,
		rest:          rest,
		localPlayerID: localPlayerID,
		snaps:         make(chan session.Snapshot, 8),
		input:         input,
		taskCount:     5,
		duration:      300,
		maxTasks:      catalog.MaxTasksCeiling,
	}
}

func (m Model) Init() tea.Cmd {
	m.sess.Inbox() <- session.Subscribe{ID: "tui", Outbox: m.snaps}
	return tea.Batch(m.waitSnapshot(), m.loadTopics(), m.loadStats(), m.resolveMax(nil))
}

func (m Model) waitSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.snaps
		if !ok {
			return snapsClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m Model) loadTopics() tea.Cmd {
	return func() tea.Msg {
		topics, err := m.rest.Topics(context.Background(), 50)
		return topicsMsg{topics: topics, err: err}
	}
}

func (m Model) loadStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.rest.Stats(context.Background())
		return statsMsg{stats: stats, err: err}
	}
}

func (m Model) resolveMax(topicID *int) tea.Cmd {
	return func() tea.Msg {
		return maxTasksMsg{max: m.resolver.ResolveMaxTasks(context.Background(), topicID)}
	}
}

func (m Model) selectedTopic() *int {
	if m.topicIdx == 0 || m.topicIdx > len(m.topics) {
		return nil
	}
	id := m.topics[m.topicIdx-1].ID
	return &id
}

// requestMatch resolves the configuration off the UI loop and only
// posts the intent if it validates.
func (m Model) requestMatch(create bool) tea.Cmd {
	cfg := catalog.MatchConfig{
		TopicID:       m.selectedTopic(),
		TaskCount:     m.taskCount,
		MatchDuration: m.duration,
	}
	return func() tea.Msg {
		resolved, err := m.resolver.Resolve(context.Background(), cfg)
		if err != nil {
			return errMsg{err: err}
		}
		if create {
			m.sess.Inbox() <- session.CreateRoom{
				TopicID:       resolved.TopicID,
				TaskCount:     resolved.TaskCount,
				MatchDuration: resolved.MatchDuration,
			}
		} else {
			m.sess.Inbox() <- session.FindMatch{
				TopicID:       resolved.TopicID,
				TaskCount:     resolved.TaskCount,
				MatchDuration: resolved.MatchDuration,
			}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		prevPhase := m.snap.State.Phase
		m.snap = session.Snapshot(msg)
		if m.snap.State.Phase != prevPhase {
			m.input.Reset()
			m.joinMode = false
			m.localErr = ""
			if m.snap.State.Phase == engine.PhaseIdle {
				return m, tea.Batch(m.waitSnapshot(), m.loadStats())
			}
		}
		return m, m.waitSnapshot()

	case snapsClosedMsg:
		return m, tea.Quit

	case topicsMsg:
		if msg.err == nil {
			m.topics = msg.topics
		}
		return m, nil

	case statsMsg:
		if msg.err == nil {
			m.stats = &msg.stats
		}
		return m, nil

	case maxTasksMsg:
		m.maxTasks = msg.max
		if m.taskCount > m.maxTasks {
			m.taskCount = m.maxTasks
		}
		return m, nil

	case errMsg:
		m.localErr = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.snap.ConnLost {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.snap.State.Phase {
	case engine.PhaseIdle:
		return m.handleLobbyKey(msg)
	case engine.PhaseQueued, engine.PhaseRoomPending:
		if msg.String() == "esc" {
			m.sess.Inbox() <- session.CancelSearch{}
		}
		return m, nil
	case engine.PhaseActive:
		return m.handlePlayingKey(msg)
	}
	return m, nil
}

func (m Model) handleLobbyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.joinMode {
		switch msg.String() {
		case "esc":
			m.joinMode = false
			m.input.Reset()
			return m, nil
		case "enter":
			m.sess.Inbox() <- session.JoinRoom{Code: m.input.Value()}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "f":
		return m, m.requestMatch(false)
	case "c":
		return m, m.requestMatch(true)
	case "j":
		m.joinMode = true
		m.input.Placeholder = "room code"
		m.input.Focus()
		return m, nil
	case "t":
		m.topicIdx = (m.topicIdx + 1) % (len(m.topics) + 1)
		return m, m.resolveMax(m.selectedTopic())
	case "up":
		if m.taskCount < m.maxTasks {
			m.taskCount++
		}
		return m, nil
	case "down":
		if m.taskCount > 1 {
			m.taskCount--
		}
		return m, nil
	case "right":
		if m.duration+60 <= catalog.MaxMatchDuration {
			m.duration += 60
		}
		return m, nil
	case "left":
		if m.duration-60 >= catalog.MinMatchDuration {
			m.duration -= 60
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handlePlayingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task := m.snap.State.CurrentTask

	switch msg.String() {
	case "ctrl+l":
		m.sess.Inbox() <- session.LeaveGame{}
		return m, nil
	case "enter":
		if task != nil && len(task.Options) == 0 {
			m.sess.Inbox() <- session.SubmitAnswer{Answer: strings.TrimSpace(m.input.Value())}
			m.input.Reset()
		}
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if task != nil && len(task.Options) > 0 {
			idx := int(msg.String()[0] - '1')
			if idx < len(task.Options) {
				// The chosen option's literal value is the answer.
				m.sess.Inbox() <- session.SubmitAnswer{Answer: task.Options[idx]}
			}
			return m, nil
		}
	}

	if task != nil && len(task.Options) == 0 {
		if !m.input.Focused() {
			m.input.Placeholder = "answer"
			m.input.Focus()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.snap.ConnLost {
		return boxStyle.Render(
			errorStyle.Render("Connection lost") + "\n\n" +
				m.snap.ConnError + "\n\n" +
				helpStyle.Render("Restart the client to reconnect. q to quit."))
	}

	switch m.snap.State.Phase {
	case engine.PhaseQueued:
		return m.viewWaiting("Searching for an opponent...")
	case engine.PhaseRoomPending:
		return m.viewRoom()
	case engine.PhaseCountdown:
		return boxStyle.Render(
			titleStyle.Render("Get ready") + "\n\n" +
				valueStyle.Render(fmt.Sprintf("   %d   ", m.snap.State.Countdown)))
	case engine.PhaseActive:
		return m.viewPlaying()
	case engine.PhaseFinished:
		return m.viewFinished()
	default:
		return m.viewLobby()
	}
}

func (m Model) viewLobby() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PvP Arena") + "\n\n")

	if m.stats != nil {
		b.WriteString(labelStyle.Render("rating ") + valueStyle.Render(fmt.Sprint(m.stats.Rating)))
		b.WriteString(labelStyle.Render("  w/l ") +
			valueStyle.Render(fmt.Sprintf("%d/%d", m.stats.Wins, m.stats.Losses)) + "\n\n")
	}

	topic := "any"
	if t := m.selectedTopic(); t != nil {
		topic = m.topics[m.topicIdx-1].Name
	}
	b.WriteString(labelStyle.Render("topic     ") + valueStyle.Render(topic) + "\n")
	b.WriteString(labelStyle.Render("tasks     ") + valueStyle.Render(fmt.Sprintf("%d (max %d)", m.taskCount, m.maxTasks)) + "\n")
	b.WriteString(labelStyle.Render("duration  ") + valueStyle.Render(fmt.Sprintf("%ds", m.duration)) + "\n\n")

	if m.joinMode {
		b.WriteString("Enter room code:\n" + m.input.View() + "\n\n")
		b.WriteString(helpStyle.Render("enter join · esc back"))
		return boxStyle.Render(b.String())
	}

	if m.snap.State.Notice != "" {
		b.WriteString(noticeStyle.Render(m.snap.State.Notice) + "\n\n")
	}
	if m.localErr != "" {
		b.WriteString(errorStyle.Render(m.localErr) + "\n\n")
	}
	if m.snap.ConnError != "" {
		b.WriteString(errorStyle.Render(m.snap.ConnError) + "\n\n")
	}

	b.WriteString(helpStyle.Render("f find match · c create room · j join room\nt topic · ↑/↓ tasks · ←/→ duration · q quit"))
	return boxStyle.Render(b.String())
}

func (m Model) viewWaiting(line string) string {
	return boxStyle.Render(line + "\n\n" + helpStyle.Render("esc cancel"))
}

func (m Model) viewRoom() string {
	return boxStyle.Render(
		"Room created. Share the code:\n\n" +
			roomCodeStyle.Render(m.snap.State.RoomCode) + "\n\n" +
			helpStyle.Render("esc cancel"))
}

func (m Model) viewPlaying() string {
	s := m.snap.State
	var b strings.Builder

	tStyle := timerStyle
	if s.Timer <= 10 {
		tStyle = timerLowStyle
	}
	opp := "solving"
	if s.OpponentAnswered {
		opp = "answered"
	}
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("you"), scoreMineStyle.Render(fmt.Sprint(s.Scores[m.localPlayerID])),
		labelStyle.Render("time"), tStyle.Render(fmt.Sprintf("%d:%02d", s.Timer/60, s.Timer%60)),
		labelStyle.Render("opponent"), scoreTheirs.Render(fmt.Sprintf("%d (%s)", s.OpponentScore, opp))))
	b.WriteString(labelStyle.Render(fmt.Sprintf("task %d/%d · attempts left %d", s.TaskNumber, s.TotalTasks, s.AttemptsLeft)) + "\n\n")

	if s.CurrentTask != nil {
		b.WriteString(valueStyle.Render(s.CurrentTask.Question) + "\n\n")
		if len(s.CurrentTask.Options) > 0 {
			for i, opt := range s.CurrentTask.Options {
				b.WriteString(optionStyle.Render(fmt.Sprintf("%d. %s", i+1, opt)) + "\n")
			}
			b.WriteString("\n" + helpStyle.Render("press 1-9 to answer"))
		} else {
			b.WriteString(m.input.View() + "\n" + helpStyle.Render("enter submit"))
		}
	}

	switch s.Feedback {
	case engine.FeedbackCorrect:
		b.WriteString("\n\n" + correctStyle.Render("Correct! +1 point"))
	case engine.FeedbackIncorrect:
		b.WriteString("\n\n" + incorrectStyle.Render("Incorrect"))
		if s.CorrectAnswer != "" {
			b.WriteString("\n" + noticeStyle.Render("Correct answer: "+s.CorrectAnswer))
		}
	}
	if m.snap.Pending {
		b.WriteString("\n\n" + labelStyle.Render("checking..."))
	}

	b.WriteString("\n\n" + helpStyle.Render("ctrl+l leave match (counts as a loss)"))
	return boxStyle.Render(b.String())
}

func (m Model) viewFinished() string {
	var headline string
	switch m.snap.Outcome {
	case engine.OutcomeWin:
		headline = correctStyle.Render("VICTORY")
	case engine.OutcomeForfeitWin:
		headline = correctStyle.Render("VICTORY") + noticeStyle.Render("  (opponent left)")
	case engine.OutcomeDraw:
		headline = noticeStyle.Render("DRAW")
	case engine.OutcomeForfeitLoss:
		headline = incorrectStyle.Render("DEFEAT") + noticeStyle.Render("  (you left)")
	default:
		headline = incorrectStyle.Render("DEFEAT")
	}

	delta := fmt.Sprintf("%+d", m.snap.RatingDelta)
	return boxStyle.Render(
		headline + "\n\n" +
			labelStyle.Render("rating change ") + valueStyle.Render(delta) + "\n\n" +
			helpStyle.Render("back to lobby in a few seconds"))
}

