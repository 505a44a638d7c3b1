package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xeniahunt/huntclient/internal/bonus"
	"github.com/xeniahunt/huntclient/internal/huntflow"
	"github.com/xeniahunt/huntclient/internal/timing"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	ownStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
)

func (a *app) View() string {
	var b strings.Builder

	switch a.screen {
	case screenLogin:
		a.viewLogin(&b)
	case screenCountdown:
		a.viewCountdown(&b)
	case screenHunt:
		a.viewHunt(&b)
	case screenLeaderboard:
		a.viewLeaderboard(&b)
	case screenBonus:
		a.viewBonus(&b)
	}

	if a.errText != "" {
		b.WriteString("\n" + errStyle.Render(a.errText) + "\n")
	}
	if a.loading {
		b.WriteString("\n" + faintStyle.Render("Working...") + "\n")
	}
	return b.String()
}

func (a *app) viewLogin(b *strings.Builder) {
	mode := "Log in"
	if a.signupMode {
		mode = "Sign up"
	}
	b.WriteString(titleStyle.Render("Vault of the Multiverse") + "\n\n")
	b.WriteString(sectionStyle.Render(mode) + "\n\n")
	b.WriteString(a.nameInput.View() + "\n")
	b.WriteString(a.passInput.View() + "\n\n")
	b.WriteString(faintStyle.Render("enter: submit · tab: switch field · ctrl+s: toggle login/signup · ctrl+c: quit") + "\n")
}

func (a *app) viewCountdown(b *strings.Builder) {
	b.WriteString(titleStyle.Render("The hunt begins in") + "\n\n")
	split := timing.SplitDuration(a.remaining)
	b.WriteString(fmt.Sprintf("  %dd : %02dh : %02dm : %02ds\n\n",
		split.Days, split.Hours, split.Minutes, split.Seconds))
	if !a.status.StartTime.IsZero() {
		b.WriteString(faintStyle.Render("Scheduled start: "+a.status.StartTime.Local().Format("Mon Jan 2 15:04")) + "\n")
	}
	b.WriteString(faintStyle.Render("The screen advances automatically once the gate opens.") + "\n")
}

func (a *app) viewHunt(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Team: "+a.teamName) + "\n\n")

	switch a.flow.State() {
	case huntflow.StateCompleted:
		b.WriteString(okStyle.Render(a.flow.Hint().Message) + "\n\n")
		b.WriteString(faintStyle.Render("enter: view leaderboard · ctrl+c: quit") + "\n")
		return

	case huntflow.StateLocation:
		if progress := a.flow.Progress(); progress != nil {
			b.WriteString(faintStyle.Render(fmt.Sprintf("Question %d of %d", a.flow.QuestionNumber(), progress.Total)) + "\n\n")
		}
		b.WriteString(sectionStyle.Render("Current location") + "\n")
		b.WriteString(a.flow.Hint().Hint + "\n\n")
		b.WriteString(sectionStyle.Render("Submit location code") + "\n")
		b.WriteString(a.codeInput.View() + "\n")

	case huntflow.StateQuestion:
		if progress := a.flow.Progress(); progress != nil {
			b.WriteString(faintStyle.Render(fmt.Sprintf("Question %d of %d", a.flow.QuestionNumber(), progress.Total)) + "\n\n")
		}
		if a.notice != "" {
			b.WriteString(okStyle.Render(a.notice) + "\n\n")
		}
		b.WriteString(sectionStyle.Render("Puzzle") + "\n")
		b.WriteString(questionBody(a) + "\n\n")
		if a.huntTimer != nil {
			if a.huntTimer.NudgeVisible() {
				b.WriteString(faintStyle.Render("Stuck? A nudge hint is available from your marshal.") + "\n")
			} else {
				b.WriteString(faintStyle.Render("Nudge hint in "+timing.FormatClock(a.huntTimer.UntilNudge())) + "\n")
			}
		}
		b.WriteString(a.answerInput.View() + "\n")
	}

	b.WriteString("\n" + faintStyle.Render("enter: submit · ctrl+l: leaderboard · ctrl+b/ctrl+n: bonus 1/2 · ctrl+a: avatar · ctrl+d: logout") + "\n")
}

func questionBody(a *app) string {
	q := a.flow.Question()
	if q == nil {
		return faintStyle.Render("Loading puzzle...")
	}
	switch {
	case q.Text != "":
		return q.Text
	case q.Image != "":
		return "Open the puzzle image: " + q.Image
	case q.Link != "":
		return "Open the puzzle link: " + q.Link
	}
	return faintStyle.Render("(empty puzzle)")
}

func (a *app) viewLeaderboard(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Leaderboard") + "\n\n")
	if a.lbView == nil {
		b.WriteString(faintStyle.Render("Loading...") + "\n")
		return
	}

	if !a.lbView.Revealed {
		// Rankings stay hidden until the hunt ends.
		b.WriteString("Full rankings are revealed when the hunt ends.\n\n")
		if a.lbView.Own != nil {
			b.WriteString(ownStyle.Render(fmt.Sprintf("Your team: #%d  %s  %d points",
				a.lbView.Own.Rank, a.lbView.Own.TeamName, a.lbView.Own.Score)) + "\n")
		} else {
			b.WriteString(faintStyle.Render("Your team is not on this page.") + "\n")
		}
	} else {
		stats := a.lbView.Stats
		b.WriteString(faintStyle.Render(fmt.Sprintf("%d teams · %d completed · %d puzzles",
			stats.ActiveTeams, stats.Completed, stats.TotalPuzzles)) + "\n\n")
		for i, entry := range a.lbView.Entries {
			cursor := "  "
			if i == a.cursor {
				cursor = "> "
			}
			line := fmt.Sprintf("%s#%-3d %-24s %3d pts", cursor, entry.Rank, entry.TeamName, entry.Score)
			if entry.TeamName == a.teamName {
				line = ownStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		p := a.lbView.Pagination
		b.WriteString("\n" + faintStyle.Render(fmt.Sprintf("page %d/%d · %d teams total", p.CurrentPage, p.TotalPages, p.TotalTeams)) + "\n")
	}

	if a.drilled != "" {
		b.WriteString("\n" + sectionStyle.Render("Solve history: "+a.drilled) + "\n")
		if len(a.solves) == 0 {
			b.WriteString(faintStyle.Render("No solves yet.") + "\n")
		}
		for _, solve := range a.solves {
			b.WriteString(fmt.Sprintf("  Q%-2d solved %s\n", solve.QuestionNumber, solve.SolvedAt.Local().Format("15:04:05")))
		}
	}

	b.WriteString("\n" + faintStyle.Render("←/→: page · ↑/↓: select · enter: solve history · r: refresh · esc: back") + "\n")
}

func (a *app) viewBonus(b *strings.Builder) {
	if a.activeBonus == nil {
		return
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Bonus Round %d", a.activeBonus.RoundID())) + "\n\n")

	switch a.activeBonus.Step() {
	case bonus.StepCountdown:
		split := timing.SplitDuration(a.remaining)
		b.WriteString("Starts in:\n")
		b.WriteString(fmt.Sprintf("  %dd : %02dh : %02dm : %02ds\n\n",
			split.Days, split.Hours, split.Minutes, split.Seconds))
		b.WriteString(faintStyle.Render("r: re-check · esc: back") + "\n")

	case bonus.StepQuestion:
		if a.notice != "" {
			b.WriteString(okStyle.Render(a.notice) + "\n\n")
		}
		b.WriteString(sectionStyle.Render("Location hint") + "\n")
		b.WriteString(a.activeBonus.LocationHint() + "\n\n")
		if img := a.activeBonus.QuestionImage(); img != "" {
			b.WriteString(sectionStyle.Render("Puzzle") + "\n")
			b.WriteString("Open the puzzle image: " + img + "\n\n")
		}
		b.WriteString(a.codeInput.View() + "\n")
		b.WriteString(a.answerInput.View() + "\n")
		b.WriteString(a.leaderInput.View() + "\n\n")
		b.WriteString(faintStyle.Render("tab: next field · enter: submit focused field · esc: back") + "\n")

	case bonus.StepLeaderboard:
		b.WriteString(sectionStyle.Render("Winners (first correct wins)") + "\n\n")
		subs := a.activeBonus.Submissions()
		if len(subs) == 0 {
			b.WriteString(faintStyle.Render("No submissions recorded.") + "\n")
		}
		for i, sub := range subs {
			b.WriteString(fmt.Sprintf("  %d. %s (%s) at %s\n",
				i+1, sub.LeaderName, sub.TeamName, sub.SubmittedAt.Local().Format("15:04:05")))
		}
		b.WriteString("\n" + faintStyle.Render("r: refresh · esc: back") + "\n")
	}
}
