package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// DefaultPollInterval is how often the monitor re-reads the engine status.
const DefaultPollInterval = time.Second

// Monitor is the sync status view following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type Monitor struct {
	ports    *Ports
	ctx      context.Context
	interval time.Duration

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	help    help.Model
	spinner spinner.Model
	bar     *status.Bar

	status   domain.SyncStatus
	counts   map[domain.InvoiceStatus]int
	syncing  bool
	spinning bool

	width int
}

// Ensure Monitor implements tea.Model.
var _ tea.Model = (*Monitor)(nil)

// NewMonitor creates a monitor over the given ports.
func NewMonitor(ports *Ports) (*Monitor, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating monitor: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &Monitor{
		ports:    ports,
		ctx:      context.Background(),
		interval: DefaultPollInterval,
		styles:   s,
		keymap:   km,
		help:     help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(s.Pending),
		),
		bar:    status.NewBar(s, km),
		status: ports.Sync.Status(),
		counts: make(map[domain.InvoiceStatus]int),
	}, nil
}

// WithContext sets the context passed to out-of-band cycles.
func (m *Monitor) WithContext(ctx context.Context) *Monitor {
	m.ctx = ctx
	return m
}

// WithPollInterval overrides the status poll interval.
func (m *Monitor) WithPollInterval(d time.Duration) *Monitor {
	if d > 0 {
		m.interval = d
	}
	return m
}

// Init implements tea.Model.
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("dealer-capture - sync monitor"),
		m.pollStatus,
		m.countQueue(),
	)
}

// Update implements tea.Model.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case messages.StatusPolled:
		m.status = msg.Status
		m.bar.SetConnectivity(msg.Status.State)
		return m, tea.Batch(m.schedulePoll(), m.countQueue(), m.startSpinner())

	case messages.QueueCounted:
		if msg.Err != nil {
			m.bar.SetState(status.StateError, msg.Err.Error())
			return m, nil
		}
		m.counts = msg.Counts
		return m, nil

	case messages.CycleCompleted:
		m.syncing = false
		if msg.Err != nil {
			m.bar.SetState(status.StateError, msg.Err.Error())
		} else {
			m.bar.SetState(status.StateIdle, msg.Summary())
		}
		return m, tea.Batch(m.pollStatus, m.countQueue())

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Monitor) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.SyncNow):
		if m.syncing {
			return nil
		}
		m.syncing = true
		m.bar.SetState(status.StateSyncing, "")
		return tea.Batch(m.triggerSync(), m.startSpinner())

	case key.Matches(msg, m.keymap.Refresh):
		return tea.Batch(m.pollStatus, m.countQueue())

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

// View implements tea.Model.
func (m *Monitor) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Dealer Capture · FBR Sync"))
	b.WriteString("\n")

	rows := []string{
		m.row("Connectivity", m.styles.Connectivity(m.status.State).Render(m.status.State.String())),
		m.row("Pending", m.styles.Pending.Render(fmt.Sprintf("%d", m.pending()))),
	}
	if m.ports.Invoices != nil {
		rows = append(rows,
			m.row("Synced", m.styles.Online.Render(fmt.Sprintf("%d", m.counts[domain.InvoiceStatusSynced]))),
			m.row("Failed", m.styles.Offline.Render(fmt.Sprintf("%d", m.counts[domain.InvoiceStatusFailed]))),
		)
	}
	rows = append(rows,
		m.row("Engine", m.engineState()),
		m.row("Last cycle", m.lastCycle()),
	)
	if m.status.Running && m.status.NextWait > 0 {
		rows = append(rows, m.row("Next cycle", m.styles.Value.Render("in "+m.status.NextWait.String())))
	}

	b.WriteString(m.styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	b.WriteString("\n")

	if m.help.ShowAll {
		b.WriteString(m.help.View(m.keymap))
		b.WriteString("\n")
	}

	b.WriteString(m.bar.View())
	return b.String()
}

func (m *Monitor) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Label.Render(label), value)
}

func (m *Monitor) engineState() string {
	switch {
	case m.busy():
		return m.spinner.View() + " " + m.styles.Pending.Render("syncing")
	case m.status.Running:
		return m.styles.Value.Render("running")
	default:
		return m.styles.Muted.Render("stopped")
	}
}

func (m *Monitor) lastCycle() string {
	if m.status.LastCycle.IsZero() {
		return m.styles.Muted.Render("never")
	}
	return m.styles.Value.Render(m.status.LastCycle.Local().Format("15:04:05"))
}

// pending prefers the queue count, which is fresh even before the first cycle.
func (m *Monitor) pending() int {
	if n, ok := m.counts[domain.InvoiceStatusPending]; ok {
		return n
	}
	return m.status.Pending
}

func (m *Monitor) busy() bool {
	return m.syncing || m.status.CycleInProgress
}

// startSpinner restarts the spinner tick loop when work begins.
func (m *Monitor) startSpinner() tea.Cmd {
	if !m.busy() || m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Monitor) pollStatus() tea.Msg {
	return messages.StatusPolled{Status: m.ports.Sync.Status()}
}

func (m *Monitor) schedulePoll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return m.pollStatus()
	})
}

func (m *Monitor) countQueue() tea.Cmd {
	invoices := m.ports.Invoices
	if invoices == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		list, err := invoices.List(ctx, "")
		if err != nil {
			return messages.QueueCounted{Err: err}
		}
		counts := map[domain.InvoiceStatus]int{domain.InvoiceStatusPending: 0}
		for i := range list {
			counts[list[i].Status]++
		}
		return messages.QueueCounted{Counts: counts}
	}
}

func (m *Monitor) triggerSync() tea.Cmd {
	svc := m.ports.Sync
	ctx := m.ctx
	return func() tea.Msg {
		result, err := svc.TriggerNow(ctx)
		return messages.CycleCompleted{Result: result, Err: err}
	}
}

// Run starts the monitor in the alternate screen and blocks until the user
// quits or ctx is done.
func Run(ctx context.Context, ports *Ports) error {
	m, err := NewMonitor(ports)
	if err != nil {
		return err
	}
	m.WithContext(ctx)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}
