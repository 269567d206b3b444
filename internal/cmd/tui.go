package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adrianmross/ga-context/internal/logging"
	"github.com/adrianmross/ga-context/pkg/selector"
)

var (
	stagedColor = lipgloss.Color("205")
	infoColor   = lipgloss.Color("244")
	errorColor  = lipgloss.Color("196")
)

var levels = []selector.Level{selector.LevelAccount, selector.LevelProperty, selector.LevelProfile}

var levelTitles = [...]string{"Select account", "Select web property", "Select profile"}

func newTuiCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var container string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive account, property and profile picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			// Log lines would corrupt the alt screen unless asked for.
			log := logging.Discard()
			if logLevelSet(cmd) {
				if log, err = newLogger(cmd, cfg); err != nil {
					return err
				}
			}
			st, closeStore, err := openStore(cmd.Context(), cfg, path)
			if err != nil {
				return err
			}
			defer closeStore()
			id := cfg.Container(container)

			if !isTerminal() {
				f, err := newFetcher(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				s := selector.New(id, st, selector.WithLogger(log), selector.WithErrorHandler(func(msg string) {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", msg)
				}))
				return runPromptFallback(cmd, s, f)
			}

			m := newTuiModel(selector.New(id, st, selector.WithLogger(log)), func(ctx context.Context) (selector.Fetcher, error) {
				return newFetcher(ctx, cfg)
			})
			finalModel, err := tea.NewProgram(m).Run()
			if err != nil {
				return err
			}
			fm := finalModel.(tuiModel)
			if fm.finalized {
				table, _ := fm.sel.TableID()
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s for %s\n", table, id)
			}
			return fm.err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	cmd.Flags().StringVarP(&container, "container", "n", "", "Container id (default: current)")
	return cmd
}

// isTerminal checks if stdout is a TTY.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runPromptFallback walks the three levels with numbered prompts for non-TTY use.
func runPromptFallback(cmd *cobra.Command, s *selector.Selector, f selector.Fetcher) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.Load(ctx, f); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, l := range levels {
		if s.State() == selector.StateHalted {
			return errors.New(s.Err())
		}
		d := s.Dropdown(l)
		if len(d.Options) == 0 {
			return fmt.Errorf("no %s found", l)
		}
		fmt.Fprintf(out, "Select %s (0 keeps the marked entry):\n", l)
		current := ""
		for i, o := range d.Options {
			marker := " "
			if o.Selected {
				marker = "*"
				current = o.ID
			}
			fmt.Fprintf(out, "%s%d) %s (%s)\n", marker, i+1, o.Name, o.ID)
		}
		idx, err := readChoiceZero(cmd, len(d.Options))
		if err != nil {
			return err
		}
		id := current
		if idx >= 0 {
			id = d.Options[idx].ID
		}
		switch l {
		case selector.LevelAccount, selector.LevelProperty:
			if id == current {
				continue
			}
			var req *selector.Request
			if l == selector.LevelAccount {
				req, err = s.ChangeAccount(id)
			} else {
				req, err = s.ChangeProperty(id)
			}
			if err != nil {
				return err
			}
			if err := s.Run(ctx, f, req); err != nil {
				return err
			}
		default:
			if err := s.ChangeProfile(id); err != nil {
				return err
			}
		}
	}
	table, err := s.TableID()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Selected %s for %s\n", table, s.ContainerID())
	return nil
}

func readChoiceZero(cmd *cobra.Command, n int) (int, error) {
	var choice int
	if _, err := fmt.Fscan(cmd.InOrStdin(), &choice); err != nil {
		return 0, err
	}
	if choice == 0 {
		return -1, nil
	}
	if choice < 1 || choice > n {
		return 0, fmt.Errorf("invalid choice")
	}
	return choice - 1, nil
}

type optionItem struct{ selector.Option }

func (o optionItem) Title() string       { return o.Name }
func (o optionItem) Description() string { return o.ID }
func (o optionItem) FilterValue() string { return o.Name }

type markedItem struct {
	base  list.Item
	title string
}

func (m markedItem) Title() string       { return m.title }
func (m markedItem) Description() string { return "" }
func (m markedItem) FilterValue() string { return m.base.FilterValue() }

func withStageMarker(item optionItem) list.Item {
	return markedItem{base: item, title: "[*] " + item.Title()}
}

func configureDefaultDelegateDensity(d *list.DefaultDelegate, ultraCompact bool) {
	if ultraCompact {
		d.SetHeight(1)
		d.SetSpacing(0)
		d.ShowDescription = false
		return
	}
	d.SetHeight(2)
	d.SetSpacing(0)
	d.ShowDescription = true
}

// selectionDelegate colors the entry currently selected at its level.
type selectionDelegate struct {
	list.DefaultDelegate
}

func newSelectionDelegate(ultraCompact bool) *selectionDelegate {
	d := list.NewDefaultDelegate()
	configureDefaultDelegateDensity(&d, ultraCompact)
	return &selectionDelegate{DefaultDelegate: d}
}

func (d *selectionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	if it, ok := listItem.(optionItem); ok && it.Selected {
		origNormalTitle := d.Styles.NormalTitle
		origNormalDesc := d.Styles.NormalDesc
		origTitle := d.Styles.SelectedTitle
		origDesc := d.Styles.SelectedDesc
		stagedTitle := origTitle.Foreground(stagedColor).Bold(true)
		stagedDesc := origDesc.Foreground(stagedColor).Bold(true)
		d.Styles.NormalTitle = stagedTitle
		d.Styles.NormalDesc = stagedDesc
		d.Styles.SelectedTitle = stagedTitle
		d.Styles.SelectedDesc = stagedDesc
		d.DefaultDelegate.Render(w, m, index, withStageMarker(it))
		d.Styles.NormalTitle = origNormalTitle
		d.Styles.NormalDesc = origNormalDesc
		d.Styles.SelectedTitle = origTitle
		d.Styles.SelectedDesc = origDesc
		return
	}
	d.DefaultDelegate.Render(w, m, index, listItem)
}

type clientReadyMsg struct {
	fetcher selector.Fetcher
	err     error
}

type fetchResultMsg struct {
	req selector.Request
	res selector.ListResult
}

type tuiModel struct {
	sel          *selector.Selector
	connect      func(context.Context) (selector.Fetcher, error)
	fetcher      selector.Fetcher
	ready        *selector.Ready
	lists        [3]list.Model
	mode         selector.Level
	status       string
	err          error
	finalized    bool
	ultraCompact bool
}

func newTuiModel(sel *selector.Selector, connect func(context.Context) (selector.Fetcher, error)) tuiModel {
	// Set a reasonable default size to avoid zero-height rendering when no resize event arrives.
	defaultWidth, defaultHeight := 80, 20
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		if w > 0 {
			defaultWidth = w
		}
		if h > 0 {
			defaultHeight = h - 2
		}
	}
	if defaultWidth < 40 {
		defaultWidth = 40
	}
	if defaultHeight < 10 {
		defaultHeight = 10
	}
	m := tuiModel{sel: sel, connect: connect, ready: selector.NewReady(), mode: selector.LevelAccount}
	for _, l := range levels {
		lm := list.New(nil, list.NewDefaultDelegate(), defaultWidth, defaultHeight)
		lm.Title = levelTitles[l]
		lm.SetFilteringEnabled(true)
		lm.SetShowHelp(false)
		lm.SetShowStatusBar(false)
		m.lists[l] = lm
	}
	m.status = "Connecting to the management API..."
	m.refreshDelegates()
	// ready is unresolved here, so Init only registers the control; the
	// load starts when the client reports in.
	if _, err := sel.Init(m.ready); err != nil {
		m.err = err
	}
	return m
}

func (m *tuiModel) refreshDelegates() {
	for _, l := range levels {
		m.lists[l].SetDelegate(newSelectionDelegate(m.ultraCompact))
	}
	m.applyDensityMode()
}

func (m *tuiModel) applyDensityMode() {
	for _, l := range levels {
		if m.ultraCompact {
			m.lists[l].Title = ""
			continue
		}
		m.lists[l].Title = levelTitles[l]
	}
}

func (m tuiModel) Init() tea.Cmd {
	connect := m.connect
	return func() tea.Msg {
		// The client keeps this context for token refreshes, so it must outlive the call.
		f, err := connect(context.Background())
		return clientReadyMsg{fetcher: f, err: err}
	}
}

// fetchCmd runs one list request in the background.
func (m tuiModel) fetchCmd(req *selector.Request) tea.Cmd {
	if req == nil || m.fetcher == nil {
		return nil
	}
	r, f := *req, m.fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return fetchResultMsg{req: r, res: f.Fetch(ctx, r)}
	}
}

// syncLists copies the selector's dropdowns into the list models.
func (m *tuiModel) syncLists() {
	for _, l := range levels {
		d := m.sel.Dropdown(l)
		items := make([]list.Item, 0, len(d.Options))
		for _, o := range d.Options {
			items = append(items, optionItem{o})
		}
		m.lists[l].SetItems(items)
		if i := d.SelectedIndex(); i >= 0 {
			m.lists[l].Select(i)
		}
	}
	m.status = m.chainStatus()
}

func (m tuiModel) chainStatus() string {
	switch m.sel.State() {
	case selector.StateHalted:
		return "Error: " + m.sel.Err()
	case selector.StateLoadingAccounts:
		return "Loading accounts..."
	case selector.StateLoadingProperties:
		return "Loading properties..."
	case selector.StateLoadingProfiles:
		return "Loading profiles..."
	}
	for _, l := range levels {
		if m.sel.Dropdown(l).Placeholder == selector.NotFoundLabel {
			return fmt.Sprintf("No %s found", l)
		}
	}
	return ""
}

// choose applies a pick at the current level. drill moves to the next level,
// or saves and quits at the profile level.
func (m tuiModel) choose(id string, drill bool) (tea.Model, tea.Cmd) {
	if m.mode == selector.LevelProfile {
		if err := m.sel.ChangeProfile(id); err != nil {
			m.status = "Save failed: " + err.Error()
			return m, nil
		}
		m.syncLists()
		if drill {
			m.finalized = true
			return m, tea.Quit
		}
		table, _ := m.sel.TableID()
		m.status = "Saved " + table
		return m, nil
	}

	current := m.sel.Selection().AccountID
	if m.mode == selector.LevelProperty {
		current = m.sel.Selection().PropertyID
	}
	var req *selector.Request
	if id != current {
		var err error
		if m.mode == selector.LevelAccount {
			req, err = m.sel.ChangeAccount(id)
		} else {
			req, err = m.sel.ChangeProperty(id)
		}
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.syncLists()
	}
	if drill {
		m.mode++
	}
	return m, m.fetchCmd(req)
}

// saveAndQuit persists the selection on screen, defaults included.
func (m tuiModel) saveAndQuit() (tea.Model, tea.Cmd) {
	profile := m.sel.Selection().ProfileID
	if profile == "" {
		m.status = "No profile selected"
		return m, nil
	}
	if err := m.sel.ChangeProfile(profile); err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.finalized = true
	return m, tea.Quit
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.refreshDelegates()
	var cmd tea.Cmd
	active := &m.lists[m.mode]
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		for _, l := range levels {
			m.lists[l].SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case clientReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.fetcher = msg.fetcher
		m.ready.Resolve()
		req, err := m.sel.Start()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.status = m.chainStatus()
		return m, m.fetchCmd(req)
	case fetchResultMsg:
		next := m.sel.Deliver(msg.req, msg.res)
		m.syncLists()
		return m, m.fetchCmd(next)
	case tea.KeyMsg:
		// While filtering, route all keys except Enter through the active list to avoid triggering hotkeys.
		if active.FilterState() == list.Filtering && msg.String() != "enter" {
			*active, cmd = active.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "enter", "right":
			if active.FilterState() == list.Filtering {
				vis := active.VisibleItems()
				active.SetItems(vis)
				active.SetFilteringEnabled(false)
				if len(vis) > 0 {
					active.Select(0)
				}
				return m, nil
			}
			if item, ok := active.SelectedItem().(optionItem); ok {
				return m.choose(item.ID, true)
			}
			return m, nil
		case " ":
			if item, ok := active.SelectedItem().(optionItem); ok {
				return m.choose(item.ID, false)
			}
			return m, nil
		case "ctrl+s", "q":
			return m.saveAndQuit()
		case "esc", "ctrl+c":
			// Exit without saving on explicit quit keys.
			return m, tea.Quit
		case "left", "backspace", "delete":
			if m.mode > selector.LevelAccount {
				m.mode--
				m.status = m.chainStatus()
			}
			return m, nil
		case "/":
			active.SetFilteringEnabled(true)
			active.SetFilterText("")
			active.SetFilterState(list.Filtering)
			return m, nil
		case "u":
			m.ultraCompact = !m.ultraCompact
			m.applyDensityMode()
			if m.ultraCompact {
				m.status = "ULTRA mode: ON"
			} else {
				m.status = "ULTRA mode: OFF"
			}
			return m, nil
		}
	}
	*active, cmd = active.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	m.refreshDelegates()
	if m.err != nil {
		return fmt.Sprintf("error: %v", m.err)
	}
	if m.finalized {
		table, _ := m.sel.TableID()
		return fmt.Sprintf("Saved %s for %s\n", table, m.sel.ContainerID())
	}
	info := lipgloss.NewStyle().Foreground(infoColor)
	meta := compactMeta(m)
	view := m.lists[m.mode].View()
	if m.status != "" {
		style := info
		if m.sel.State() == selector.StateHalted {
			style = lipgloss.NewStyle().Foreground(errorColor)
		}
		view = fmt.Sprintf("%s\n%s", style.Render(m.status), view)
	}
	if m.ultraCompact {
		return fmt.Sprintf("%s\n%s", info.Render("[ULTRA] "+meta), view)
	}
	instructions := m.mode.String() + " | enter drill • space select • backspace up • / filter • u ultra • q save • esc quit"
	return fmt.Sprintf("%s\n%s\n%s", info.Render(instructions), info.Render(meta), view)
}

func compactMeta(m tuiModel) string {
	sel := m.sel.Selection()
	path := make([]string, 0, 3)
	for _, id := range []string{sel.AccountID, sel.PropertyID, sel.ProfileID} {
		if id == "" {
			id = "-"
		}
		path = append(path, id)
	}
	filter := "off"
	if m.lists[m.mode].FilterState() == list.Filtering {
		filter = "on"
	}
	return fmt.Sprintf("mode:%s | container:%s | selected:%s | state:%s | filter:%s",
		m.mode, m.sel.ContainerID(), strings.Join(path, "/"), m.sel.State(), filter)
}
