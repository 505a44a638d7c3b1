package main

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/xeniahunt/huntclient/clients"
	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
	"github.com/xeniahunt/huntclient/internal/bonus"
	"github.com/xeniahunt/huntclient/internal/config"
	"github.com/xeniahunt/huntclient/internal/huntflow"
	"github.com/xeniahunt/huntclient/internal/leaderboard"
	"github.com/xeniahunt/huntclient/internal/models"
	"github.com/xeniahunt/huntclient/internal/session"
	"github.com/xeniahunt/huntclient/internal/timing"
)

type screen int

const (
	screenLogin screen = iota
	screenCountdown
	screenHunt
	screenLeaderboard
	screenBonus
)

var avatarSeeds = []string{"compass", "lantern", "spyglass", "relic", "cipher", "comet"}

type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	api      *hunt_api_client.HuntAPIClient
	store    *session.Store
	clock    clockwork.Clock
	resolver *timing.Resolver
	flow     *huntflow.Flow
	viewer   *leaderboard.Viewer
	bonus    map[int]*bonus.Flow

	screen   screen
	teamName string
	width    int

	// login/signup form
	signupMode bool
	nameInput  textinput.Model
	passInput  textinput.Model
	focusPass  bool

	// countdown
	countdown *timing.Countdown
	remaining time.Duration
	status    models.PhaseStatus

	// hunt
	codeInput   textinput.Model
	answerInput textinput.Model
	huntTimer   *timing.HuntTimer
	avatarIdx   int

	// leaderboard
	lbView  *leaderboard.View
	lbPage  int
	lbReq   uint64
	cursor  int
	solves  []hunt_api_client.TeamSolve
	drilled string

	ticking bool

	// bonus
	activeBonus *bonus.Flow
	leaderInput textinput.Model

	errText string
	notice  string
	loading bool
}

func newApp(
	cfg *config.Config,
	log zerolog.Logger,
	api *hunt_api_client.HuntAPIClient,
	store *session.Store,
	clock clockwork.Clock,
	resolver *timing.Resolver,
	flow *huntflow.Flow,
	viewer *leaderboard.Viewer,
	bonusRounds map[int]*bonus.Flow,
) *app {
	name := textinput.New()
	name.Placeholder = "team name"
	name.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword

	code := textinput.New()
	code.Placeholder = "location code"

	answer := textinput.New()
	answer.Placeholder = "your answer"

	leader := textinput.New()
	leader.Placeholder = "leader name"

	a := &app{
		cfg:         cfg,
		log:         log,
		api:         api,
		store:       store,
		clock:       clock,
		resolver:    resolver,
		flow:        flow,
		viewer:      viewer,
		bonus:       bonusRounds,
		screen:      screenLogin,
		nameInput:   name,
		passInput:   pass,
		codeInput:   code,
		answerInput: answer,
		leaderInput: leader,
		lbPage:      1,
	}
	if sess, ok := store.Current(); ok {
		a.teamName = sess.TeamName
	}
	return a
}

// Messages

type errMsg struct{ err error }
type loggedInMsg struct{ teamName string }
type statusMsg struct {
	phase  models.Phase
	status models.PhaseStatus
}
type flowRefreshedMsg struct{}
type flowChangedMsg struct{}
type countdownMsg struct {
	remaining time.Duration
	done      bool
}
type standingsMsg struct {
	view  *leaderboard.View
	reqID uint64
}
type solvesMsg struct {
	team   string
	solves []hunt_api_client.TeamSolve
}
type bonusLoadedMsg struct{ round int }
type submitOKMsg struct{ msg string }
type tickMsg time.Time
type avatarSetMsg struct{ seed string }

// Commands

func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (a *app) cmdResolve(phase models.Phase) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return statusMsg{phase: phase, status: a.resolver.Resolve(ctx, phase)}
	}
}

func (a *app) cmdLogin(signup bool, teamName, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()

		var (
			resp *hunt_api_client.AuthResponse
			err  error
		)
		if signup {
			resp, err = a.api.Signup(ctx, teamName, password)
		} else {
			resp, err = a.api.Login(ctx, teamName, password)
		}
		if err != nil {
			return errMsg{err}
		}
		if err := a.store.SetSession(teamName, resp.Token); err != nil {
			return errMsg{err}
		}
		return loggedInMsg{teamName: teamName}
	}
}

func (a *app) cmdRefreshFlow() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.flow.Refresh(ctx); err != nil {
			return errMsg{err}
		}
		return flowRefreshedMsg{}
	}
}

func (a *app) waitFlowChange() tea.Cmd {
	return func() tea.Msg {
		<-a.flow.Changed()
		return flowChangedMsg{}
	}
}

func (a *app) cmdSubmitCode(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.flow.SubmitCode(ctx, code); err != nil {
			return errMsg{err}
		}
		return submitOKMsg{msg: "Code accepted! Answer the puzzle below."}
	}
}

func (a *app) cmdSubmitAnswer(answer string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		msg, err := a.flow.SubmitAnswer(ctx, answer)
		if err != nil {
			return errMsg{err}
		}
		return submitOKMsg{msg: msg}
	}
}

// cmdStandings fetches one standings page. Each fetch carries a request id;
// rapid paging issues overlapping fetches and only the newest response is
// applied, so a slow earlier page cannot overwrite a faster later one.
func (a *app) cmdStandings(page int) tea.Cmd {
	a.lbReq++
	id := a.lbReq
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		status := a.resolver.Resolve(ctx, models.PhaseMainHunt)
		view, err := a.viewer.FetchPage(ctx, page, hunt_api_client.LeaderboardPageSizeDflt, status.Ended, a.teamName)
		if err != nil {
			return errMsg{err}
		}
		return standingsMsg{view: view, reqID: id}
	}
}

func (a *app) cmdSolves(team string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		solves, err := a.viewer.TeamProgress(ctx, team)
		if err != nil {
			return errMsg{err}
		}
		return solvesMsg{team: team, solves: solves}
	}
}

func (a *app) cmdLoadBonus(round int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.bonus[round].Load(ctx); err != nil {
			return errMsg{err}
		}
		return bonusLoadedMsg{round: round}
	}
}

func (a *app) cmdBonusCode(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.activeBonus.SubmitCode(ctx, code); err != nil {
			return errMsg{err}
		}
		return submitOKMsg{msg: "Code accepted!"}
	}
}

func (a *app) cmdBonusAnswer(answer string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		msg, err := a.activeBonus.SubmitAnswer(ctx, answer)
		if err != nil {
			return errMsg{err}
		}
		return submitOKMsg{msg: msg}
	}
}

func (a *app) cmdBonusWinner(leader string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.activeBonus.SubmitWinner(ctx, leader, a.teamName); err != nil {
			return errMsg{err}
		}
		return submitOKMsg{msg: "Winner submitted!"}
	}
}

func (a *app) cmdSetAvatar(seed string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.api.SetAvatar(ctx, seed); err != nil {
			return errMsg{err}
		}
		return avatarSetMsg{seed: seed}
	}
}

func (a *app) listenCountdown() tea.Cmd {
	c := a.countdown
	return func() tea.Msg {
		remaining, ok := <-c.C()
		if !ok {
			return countdownMsg{done: true}
		}
		return countdownMsg{remaining: remaining, done: remaining == 0}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// armTick starts the once-per-second hunt-screen tick unless a tick chain is
// already running, so re-entering the hunt screen never stacks a second one.
func (a *app) armTick() tea.Cmd {
	if a.ticking {
		return nil
	}
	a.ticking = true
	return tickCmd()
}

func (a *app) Init() tea.Cmd {
	if _, ok := a.store.Current(); ok {
		return a.cmdResolve(models.PhaseMainHunt)
	}
	return textinput.Blink
}

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case errMsg:
		a.loading = false
		if clients.IsUnauthorized(msg.err) {
			// A 401 invalidates the session centrally.
			_ = a.store.Clear()
			a.teamName = ""
			a.screen = screenLogin
			a.errText = "Session expired, please log in again."
			return a, nil
		}
		a.errText = userMessage(msg.err)
		return a, nil

	case loggedInMsg:
		a.loading = false
		a.teamName = msg.teamName
		a.errText = ""
		a.passInput.SetValue("")
		return a, a.cmdResolve(models.PhaseMainHunt)

	case statusMsg:
		a.loading = false
		a.status = msg.status
		if msg.phase == models.PhaseMainHunt {
			if msg.status.Started {
				a.stopCountdown()
				a.enterHunt()
				return a, tea.Batch(a.cmdRefreshFlow(), a.waitFlowChange(), a.armTick())
			}
			a.enterCountdown(msg.status.StartTime)
			return a, a.listenCountdown()
		}
		return a, nil

	case countdownMsg:
		if msg.done {
			// Gate re-check: the countdown reaching zero only triggers a
			// fresh status fetch, never a direct transition.
			a.stopCountdown()
			if a.screen == screenBonus && a.activeBonus != nil {
				return a, a.cmdLoadBonus(a.activeBonus.RoundID())
			}
			return a, a.cmdResolve(models.PhaseMainHunt)
		}
		a.remaining = msg.remaining
		return a, a.listenCountdown()

	case flowRefreshedMsg, flowChangedMsg:
		a.loading = false
		if a.screen == screenHunt {
			if a.flow.State() == huntflow.StateLocation {
				a.codeInput.SetValue("")
				a.answerInput.SetValue("")
				a.codeInput.Focus()
				a.answerInput.Blur()
				if a.huntTimer != nil {
					a.huntTimer.Reset()
				}
			}
			if a.flow.State() == huntflow.StateQuestion && a.huntTimer == nil {
				a.huntTimer = timing.NewHuntTimer(a.clock, a.cfg.NudgeHintAfter())
			}
		}
		if _, isChanged := msg.(flowChangedMsg); isChanged {
			return a, a.waitFlowChange()
		}
		return a, nil

	case submitOKMsg:
		a.loading = false
		a.errText = ""
		a.notice = msg.msg
		if a.screen == screenHunt && a.flow.State() == huntflow.StateQuestion {
			a.codeInput.Blur()
			a.answerInput.Focus()
			if a.huntTimer == nil {
				a.huntTimer = timing.NewHuntTimer(a.clock, a.cfg.NudgeHintAfter())
			} else {
				a.huntTimer.Reset()
			}
		}
		return a, nil

	case standingsMsg:
		if msg.reqID != a.lbReq {
			return a, nil
		}
		a.loading = false
		a.errText = ""
		a.lbView = msg.view
		a.cursor = 0
		a.solves = nil
		a.drilled = ""
		a.screen = screenLeaderboard
		return a, nil

	case solvesMsg:
		a.loading = false
		a.drilled = msg.team
		a.solves = msg.solves
		return a, nil

	case bonusLoadedMsg:
		a.loading = false
		a.errText = ""
		a.activeBonus = a.bonus[msg.round]
		a.screen = screenBonus
		if a.activeBonus.Step() == bonus.StepCountdown {
			if status := a.activeBonus.Status(); status != nil {
				a.enterCountdown(status.StartTime)
				return a, a.listenCountdown()
			}
		}
		return a, nil

	case avatarSetMsg:
		_ = a.store.SetAvatarSeed(msg.seed)
		a.notice = "Avatar updated: " + msg.seed
		return a, nil

	case tickMsg:
		if a.screen == screenHunt {
			return a, tickCmd()
		}
		a.ticking = false
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *app) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		a.stopCountdown()
		a.flow.Stop()
		return a, tea.Quit
	}

	switch a.screen {
	case screenLogin:
		return a.handleLoginKey(msg)
	case screenCountdown:
		// Purely informational; only quit is handled.
		return a, nil
	case screenHunt:
		return a.handleHuntKey(msg)
	case screenLeaderboard:
		return a.handleLeaderboardKey(msg)
	case screenBonus:
		return a.handleBonusKey(msg)
	}
	return a, nil
}

func (a *app) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		a.focusPass = !a.focusPass
		if a.focusPass {
			a.nameInput.Blur()
			a.passInput.Focus()
		} else {
			a.passInput.Blur()
			a.nameInput.Focus()
		}
		return a, textinput.Blink
	case "ctrl+s":
		a.signupMode = !a.signupMode
		a.errText = ""
		return a, nil
	case "enter":
		name := a.nameInput.Value()
		pass := a.passInput.Value()
		if name == "" {
			a.errText = "Team name is required"
			return a, nil
		}
		if pass == "" {
			a.errText = "Password is required"
			return a, nil
		}
		a.loading = true
		a.errText = ""
		return a, a.cmdLogin(a.signupMode, name, pass)
	}

	var cmd tea.Cmd
	if a.focusPass {
		a.passInput, cmd = a.passInput.Update(msg)
	} else {
		a.nameInput, cmd = a.nameInput.Update(msg)
	}
	return a, cmd
}

func (a *app) handleHuntKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+l":
		a.loading = true
		a.lbPage = 1
		return a, a.cmdStandings(a.lbPage)
	case "ctrl+b":
		a.loading = true
		return a, a.cmdLoadBonus(1)
	case "ctrl+n":
		a.loading = true
		return a, a.cmdLoadBonus(2)
	case "ctrl+a":
		a.avatarIdx = (a.avatarIdx + 1) % len(avatarSeeds)
		return a, a.cmdSetAvatar(avatarSeeds[a.avatarIdx])
	case "ctrl+d":
		_ = a.store.Clear()
		a.teamName = ""
		a.screen = screenLogin
		a.errText = ""
		a.notice = ""
		a.nameInput.Focus()
		return a, textinput.Blink
	case "enter":
		a.notice = ""
		switch a.flow.State() {
		case huntflow.StateLocation:
			code := a.codeInput.Value()
			a.loading = true
			return a, a.cmdSubmitCode(code)
		case huntflow.StateQuestion:
			answer := a.answerInput.Value()
			a.loading = true
			return a, a.cmdSubmitAnswer(answer)
		case huntflow.StateCompleted:
			a.loading = true
			a.lbPage = 1
			return a, a.cmdStandings(a.lbPage)
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.flow.State() {
	case huntflow.StateLocation:
		if !a.codeInput.Focused() {
			a.codeInput.Focus()
		}
		a.codeInput, cmd = a.codeInput.Update(msg)
	case huntflow.StateQuestion:
		if !a.answerInput.Focused() {
			a.answerInput.Focus()
		}
		a.answerInput, cmd = a.answerInput.Update(msg)
	}
	return a, cmd
}

func (a *app) handleLeaderboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.screen = screenHunt
		a.errText = ""
		return a, a.armTick()
	case "left", "h":
		if a.lbView != nil && a.lbView.Pagination.HasPrev {
			a.lbPage--
			a.loading = true
			return a, a.cmdStandings(a.lbPage)
		}
		return a, nil
	case "right", "l":
		if a.lbView != nil && a.lbView.Pagination.HasNext {
			a.lbPage++
			a.loading = true
			return a, a.cmdStandings(a.lbPage)
		}
		return a, nil
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "down", "j":
		if a.lbView != nil && a.cursor < len(a.lbView.Entries)-1 {
			a.cursor++
		}
		return a, nil
	case "enter":
		if a.lbView != nil && a.cursor < len(a.lbView.Entries) {
			team := a.lbView.Entries[a.cursor].TeamName
			a.loading = true
			return a, a.cmdSolves(team)
		}
		return a, nil
	case "r":
		a.loading = true
		return a, a.cmdStandings(a.lbPage)
	}
	return a, nil
}

func (a *app) handleBonusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.stopCountdown()
		a.screen = screenHunt
		a.errText = ""
		a.notice = ""
		return a, a.armTick()
	case "r":
		if a.activeBonus != nil && a.activeBonus.Step() != bonus.StepQuestion {
			a.stopCountdown()
			a.loading = true
			return a, a.cmdLoadBonus(a.activeBonus.RoundID())
		}
	case "tab":
		if a.activeBonus != nil && a.activeBonus.Step() == bonus.StepQuestion {
			a.cycleBonusFocus()
			return a, textinput.Blink
		}
		return a, nil
	case "enter":
		if a.activeBonus == nil || a.activeBonus.Step() != bonus.StepQuestion {
			return a, nil
		}
		a.notice = ""
		switch {
		case a.codeInput.Focused():
			a.loading = true
			return a, a.cmdBonusCode(a.codeInput.Value())
		case a.answerInput.Focused():
			a.loading = true
			return a, a.cmdBonusAnswer(a.answerInput.Value())
		case a.leaderInput.Focused():
			a.loading = true
			return a, a.cmdBonusWinner(a.leaderInput.Value())
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch {
	case a.codeInput.Focused():
		a.codeInput, cmd = a.codeInput.Update(msg)
	case a.answerInput.Focused():
		a.answerInput, cmd = a.answerInput.Update(msg)
	case a.leaderInput.Focused():
		a.leaderInput, cmd = a.leaderInput.Update(msg)
	default:
		a.codeInput.Focus()
		a.codeInput, cmd = a.codeInput.Update(msg)
	}
	return a, cmd
}

func (a *app) cycleBonusFocus() {
	switch {
	case a.codeInput.Focused():
		a.codeInput.Blur()
		a.answerInput.Focus()
	case a.answerInput.Focused():
		a.answerInput.Blur()
		a.leaderInput.Focus()
	default:
		a.leaderInput.Blur()
		a.codeInput.Focus()
	}
}

func (a *app) enterHunt() {
	a.screen = screenHunt
	a.errText = ""
	a.notice = ""
	a.codeInput.Focus()
}

func (a *app) enterCountdown(target time.Time) {
	a.stopCountdown()
	if a.screen != screenBonus {
		a.screen = screenCountdown
	}
	a.countdown = timing.NewCountdown(a.clock, target)
	a.remaining = target.Sub(a.clock.Now())
}

func (a *app) stopCountdown() {
	if a.countdown != nil {
		a.countdown.Stop()
		a.countdown = nil
	}
}

// userMessage maps an error to the banner text shown to the player. API
// rejections carry the server's message; transport failures collapse into a
// generic retry prompt. Rejected submissions are never echoed back.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	switch err {
	case huntflow.ErrEmptyCode, huntflow.ErrEmptyAnswer,
		bonus.ErrEmptyCode, bonus.ErrEmptyAnswer, bonus.ErrEmptyWinner:
		return err.Error()
	}
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "Something went wrong. Please try again."
}
