package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
)

func cmdCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (a *adminApp) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate and store the admin token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("HUNT_ADMIN_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("password is required (--password or HUNT_ADMIN_PASSWORD)")
			}
			ctx, cancel := cmdCtx()
			defer cancel()
			resp, err := a.client.Login(ctx, args[0], password)
			if err != nil {
				return err
			}
			if err := a.store.SetAdminToken(resp.Token); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}

func (a *adminApp) questionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Manage questions and locations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx()
			defer cancel()
			questions, err := a.client.Questions(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tHINT\tQUESTION\tANSWER")
			for _, q := range questions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", q.ID, q.Code, q.Hint, q.Question, q.Answer)
			}
			return w.Flush()
		},
	})

	var form hunt_api_client.AdminQuestion
	addFormFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&form.Hint, "hint", "", "location hint")
		c.Flags().StringVar(&form.Code, "code", "", "location code")
		c.Flags().StringVar(&form.Question, "question", "", "puzzle content")
		c.Flags().StringVar(&form.Answer, "answer", "", "expected answer")
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a question",
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Hint == "" || form.Code == "" || form.Question == "" || form.Answer == "" {
				return fmt.Errorf("all of --hint, --code, --question and --answer are required")
			}
			ctx, cancel := cmdCtx()
			defer cancel()
			return a.client.AddQuestion(ctx, form)
		},
	}
	addFormFlags(add)
	cmd.AddCommand(add)

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid question id %q", args[0])
			}
			ctx, cancel := cmdCtx()
			defer cancel()
			return a.client.UpdateQuestion(ctx, id, form)
		},
	}
	addFormFlags(update)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid question id %q", args[0])
			}
			ctx, cancel := cmdCtx()
			defer cancel()
			return a.client.DeleteQuestion(ctx, id)
		},
	})

	return cmd
}

func (a *adminApp) teamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage team state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx()
			defer cancel()
			teams, err := a.client.Teams(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTEAM\tSCORE\tCOMPLETED")
			for _, t := range teams {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", t.ID, t.TeamName, t.Score, t.Completed)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx()
			defer cancel()
			return a.client.DeleteTeam(ctx, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <id>",
		Short: "Reset a team's progress to the start of its sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx()
			defer cancel()
			return a.client.ResetTeamProgress(ctx, args[0])
		},
	})

	return cmd
}

func (a *adminApp) sequenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Manage per-team question sequencing",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "regen",
		Short: "Regenerate every team's location/question sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx()
			defer cancel()
			if err := a.client.RegenerateSequences(ctx); err != nil {
				return err
			}
			fmt.Println("Sequences regenerated.")
			return nil
		},
	})
	return cmd
}

func (a *adminApp) timingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timing",
		Short: "Get or set event timing",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show phase start/end times",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx()
			defer cancel()
			timings, err := a.client.Timings(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PHASE\tSTART\tEND")
			printPhase := func(name string, t hunt_api_client.PhaseTiming) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, formatTime(t.StartTime), formatTime(t.EndTime))
			}
			printPhase("main", timings.MainHunt)
			printPhase("bonus1", timings.Bonus1)
			printPhase("bonus2", timings.Bonus2)
			return w.Flush()
		},
	})

	var phase, start, end string
	set := &cobra.Command{
		Use:   "set",
		Short: "Set a phase's start/end times (RFC3339)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx()
			defer cancel()
			timings, err := a.client.Timings(ctx)
			if err != nil {
				return err
			}

			var target *hunt_api_client.PhaseTiming
			switch phase {
			case "main":
				target = &timings.MainHunt
			case "bonus1":
				target = &timings.Bonus1
			case "bonus2":
				target = &timings.Bonus2
			default:
				return fmt.Errorf("unknown phase %q (want main, bonus1 or bonus2)", phase)
			}

			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				target.StartTime = t
			}
			if end != "" {
				t, err := time.Parse(time.RFC3339, end)
				if err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
				target.EndTime = t
			}
			return a.client.SetTimings(ctx, *timings)
		},
	}
	set.Flags().StringVar(&phase, "phase", "main", "phase to update (main, bonus1, bonus2)")
	set.Flags().StringVar(&start, "start", "", "start time, RFC3339")
	set.Flags().StringVar(&end, "end", "", "end time, RFC3339")
	cmd.AddCommand(set)

	return cmd
}

func (a *adminApp) bonusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bonus",
		Short: "Manage bonus rounds",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "end <round>",
		Short: "End a bonus round, freezing its winners list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			round, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid round %q", args[0])
			}
			ctx, cancel := cmdCtx()
			defer cancel()
			return a.client.EndBonusRound(ctx, round)
		},
	})
	return cmd
}

func (a *adminApp) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show questions and teams side by side",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdCtx()
			defer cancel()

			var (
				questions []hunt_api_client.AdminQuestion
				teams     []hunt_api_client.TeamSummary
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				questions, err = a.client.Questions(gctx)
				return err
			})
			g.Go(func() error {
				var err error
				teams, err = a.client.Teams(gctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			fmt.Printf("Questions: %d\n", len(questions))
			for _, q := range questions {
				fmt.Printf("  [%d] %s -> %s\n", q.ID, q.Code, q.Hint)
			}
			fmt.Printf("\nTeams: %d\n", len(teams))
			for _, t := range teams {
				fmt.Printf("  %-24s %d/%d\n", t.TeamName, t.Completed, len(questions))
			}
			return nil
		},
	}
}

func (a *adminApp) qrCmd() *cobra.Command {
	var out string
	var size int
	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Generate the QR code PNG for a location code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if out == "" {
				out = code + ".png"
			}
			if err := qrcode.WriteFile(code, qrcode.Medium, size, out); err != nil {
				return fmt.Errorf("failed to write QR code: %w", err)
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <code>.png)")
	cmd.Flags().IntVar(&size, "size", 512, "image size in pixels")
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}
