package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rowview/rowview/pkg/api"
	"github.com/rowview/rowview/pkg/loader"
	"github.com/rowview/rowview/pkg/render"
	"github.com/rowview/rowview/pkg/rowstore"
	"github.com/rowview/rowview/pkg/viewport"
)

// framePeriod approximates one display frame; scroll recomputation is
// coalesced to at most one per frame.
const framePeriod = 16 * time.Millisecond

// bufferRows is how many extra rows are materialized above and below the
// viewport to avoid blank flashes during fast scrolling.
const bufferRows = 10

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("24"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

type progressMsg loader.Progress

type loadDoneMsg struct {
	result *loader.Result
	pool   *api.PoolStatus
}

type loadFailedMsg struct {
	err error
}

type frameMsg time.Time

type model struct {
	client  *api.Client
	loadCfg loader.Config

	store    *rowstore.Store
	vp       viewport.State
	sched    *viewport.FrameScheduler
	surface  *termSurface
	renderer *render.Renderer

	progressCh chan loader.Progress

	loading bool
	status  string
	err     error

	width  int
	height int
}

func newModel(client *api.Client, loadCfg loader.Config) *model {
	surface := &termSurface{}
	return &model{
		client:  client,
		loadCfg: loadCfg,
		store:   rowstore.New(),
		vp: viewport.State{
			RowHeight:  termRowHeight,
			BufferSize: bufferRows,
		},
		sched:      viewport.NewFrameScheduler(),
		surface:    surface,
		renderer:   render.NewRenderer(surface, termRowHeight),
		progressCh: make(chan loader.Progress, 16),
		status:     "loading…",
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.startLoad(), m.waitForProgress(), frameTick())
}

func frameTick() tea.Cmd {
	return tea.Tick(framePeriod, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// startLoad kicks off a full dataset load. The reload key is ignored while a
// load is in flight, so at most one load runs at a time.
func (m *model) startLoad() tea.Cmd {
	m.loading = true
	m.err = nil
	m.status = fmt.Sprintf("loading (%s)…", strategyLabel(m.loadCfg))

	// Leave no half-loaded table visible while the new dataset arrives.
	m.store.Reset()
	m.vp.Reset()
	m.renderer.Reset()

	ldr := loader.New(m.client, func(p loader.Progress) {
		select {
		case m.progressCh <- p:
		default:
		}
	})
	cfg := m.loadCfg
	client := m.client

	return func() tea.Msg {
		result, err := ldr.Load(context.Background(), cfg)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		// Pool status is informational; ignore its failure.
		pool, _ := client.PoolStatus(context.Background())
		return loadDoneMsg{result: result, pool: pool}
	}
}

func (m *model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		return progressMsg(<-m.progressCh)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.ContainerExtent = m.tableHeight()
		m.scheduleRecompute()
		return m, nil

	case frameMsg:
		m.sched.Tick()
		return m, frameTick()

	case progressMsg:
		if m.loading {
			m.status = fmt.Sprintf("loading (%s)… %d%% (%d/%d batches)",
				msg.Strategy, msg.Percent, msg.Completed, msg.Total)
		}
		return m, m.waitForProgress()

	case loadDoneMsg:
		m.loading = false
		m.store.Replace(msg.result.Rows)
		m.renderer.SetTotal(m.store.Count())
		m.vp.Reset()
		m.status = loadSummary(msg.result, msg.pool)
		m.scheduleRecompute()
		return m, nil

	case loadFailedMsg:
		// Failed load leaves the table cleared and the reload key ready.
		m.loading = false
		m.err = msg.err
		m.status = "load failed, press r to retry"
		return m, nil

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollBy(-3)
		case tea.MouseButtonWheelDown:
			m.scrollBy(3)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.scrollBy(-1)
	case "down", "j":
		m.scrollBy(1)
	case "pgup", "b":
		m.scrollBy(-m.tableHeight())
	case "pgdown", "f", " ":
		m.scrollBy(m.tableHeight())
	case "home", "g":
		m.scrollTo(0)
	case "end", "G":
		m.scrollTo(m.vp.MaxScrollOffset(m.store.Count()))
	case "r":
		if !m.loading {
			return m, m.startLoad()
		}
	}
	return m, nil
}

// tableHeight is the number of lines available for rows: total height minus
// header and status lines.
func (m *model) tableHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) scrollBy(delta int) {
	m.vp.ScrollBy(delta*termRowHeight, m.store.Count())
	m.scheduleRecompute()
}

func (m *model) scrollTo(offset int) {
	m.vp.ScrollTo(offset, m.store.Count())
	m.scheduleRecompute()
}

// scheduleRecompute coalesces scroll signals: only the latest recomputation
// runs, once, on the next frame tick.
func (m *model) scheduleRecompute() {
	m.sched.Schedule(func() {
		rng, ok := m.vp.Visible(m.store.Count())
		if !ok {
			return
		}
		m.renderer.Render(rng, m.store)
	})
}

func (m *model) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Width(m.width).Render(headerLine(m.width)))
	b.WriteString("\n")

	height := m.tableHeight()
	count := m.store.Count()
	for line := 0; line < height; line++ {
		offset := m.vp.ScrollOffset + line*termRowHeight
		if row, ok := m.surface.RowAt(offset); ok {
			b.WriteString(formatRow(row, m.width))
		} else if offset/termRowHeight < count {
			// Row inside the dataset but outside the materialized window;
			// next frame's render fills it in.
			b.WriteString("…")
		}
		b.WriteString("\n")
	}

	status := m.status
	if m.err != nil {
		status = errorStyle.Render(m.err.Error()) + "  " + status
	} else {
		status = statusStyle.Width(m.width).Render(status + scrollIndicator(m.vp, count))
	}
	b.WriteString(status)

	return b.String()
}

func scrollIndicator(vp viewport.State, count int) string {
	if count == 0 {
		return ""
	}
	top := vp.ScrollOffset/termRowHeight + 1
	return fmt.Sprintf("  ·  row %d/%d", top, count)
}

func strategyLabel(cfg loader.Config) string {
	switch cfg.Strategy {
	case loader.StrategySingle:
		return "single request"
	case loader.StrategySequential:
		return fmt.Sprintf("sequential ×%d", cfg.BatchSize)
	case loader.StrategyParallel:
		return fmt.Sprintf("parallel ×%d, limit %d", cfg.BatchSize, cfg.ParallelLimit)
	default:
		return string(cfg.Strategy)
	}
}

// loadSummary formats the completion line: record count, summed server time,
// wall-clock elapsed time, and strategy. Server time and elapsed time are
// different measurements and are labeled separately.
func loadSummary(result *loader.Result, pool *api.PoolStatus) string {
	poolLabel := "pool off"
	if result.ConnectionPool || (pool != nil && pool.UseConnectionPool) {
		poolLabel = "pool on"
	}
	return fmt.Sprintf("%d rows in %d batches  ·  server %s  ·  elapsed %s  ·  %s  ·  %s",
		len(result.Rows),
		result.Batches,
		result.ServerTime.Round(time.Millisecond),
		result.Elapsed.Round(time.Millisecond),
		result.Strategy,
		poolLabel,
	)
}
