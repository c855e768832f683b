package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/types"
)

var (
	seedWeeks    int
	seedTroubled bool
)

var seedCmd = &cobra.Command{
	Use:   "seed [project-name]",
	Short: "Generate demo standup data",
	Long: `Create a demo project with a small team and several weeks of
generated standup history, suitable for exploring the metrics, trends,
predict, and monitor commands.

With --troubled, the generated team shows declining sentiment and frequent
blockers so the alerting and risk models have something to find.

Example:
  teampulse seed
  teampulse seed demo --weeks 6 --troubled`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		name := "demo"
		if len(args) > 0 {
			name = args[0]
		}
		if seedWeeks < 1 {
			seedWeeks = 1
		}

		project := &types.Project{Name: name}
		if err := store.CreateProject(ctx, project); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		usernames := []string{"alice", "bob", "carol", "dave"}
		var members []*types.TeamMember
		for i, username := range usernames {
			role := types.RoleDeveloper
			if i == 0 {
				role = types.RoleManager
			}
			m := &types.TeamMember{
				ProjectID: project.ID,
				Username:  username,
				Email:     username + "@" + notifyDomain(),
				Role:      role,
				IsActive:  true,
			}
			if err := store.AddTeamMember(ctx, m); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			members = append(members, m)
		}

		// Deterministic data so repeated demos look the same.
		rng := rand.New(rand.NewSource(42))

		today := types.Day(time.Now())
		start := today.AddDate(0, 0, -seedWeeks*7)
		sessions := 0

		for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
			if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
				continue
			}
			// Progress through the window, 0 at the start and 1 at the end.
			progress := d.Sub(start).Hours() / today.Sub(start).Hours()

			for _, m := range members {
				// Occasional missed standups.
				if rng.Float64() < 0.15 {
					continue
				}

				sentiment := 0.55 + 0.25*progress + (rng.Float64()-0.5)*0.2
				blockers := ""
				if seedTroubled {
					sentiment = 0.55 - 0.35*progress + (rng.Float64()-0.5)*0.2
					if rng.Float64() < 0.45 {
						blockers = pick(rng, troubledBlockers)
					}
				} else if rng.Float64() < 0.15 {
					blockers = pick(rng, routineBlockers)
				}
				sentiment = clampScore(sentiment)

				sess := &types.StandupSession{
					ProjectID:      project.ID,
					MemberID:       m.ID,
					Date:           d,
					Status:         types.SessionCompleted,
					YesterdayWork:  pick(rng, yesterdayUpdates),
					TodayPlan:      pick(rng, todayUpdates),
					Blockers:       blockers,
					SentimentScore: &sentiment,
				}
				if err := store.CreateSession(ctx, sess); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				sessions++

				for i := 0; i < rng.Intn(3); i++ {
					status := types.WorkItemCompleted
					if rng.Float64() < 0.3 {
						status = types.WorkItemActive
					}
					item := &types.WorkItemReference{
						SessionID: sess.ID,
						ItemType:  types.WorkItemGitHubPR,
						ItemID:    fmt.Sprintf("#%d", 100+rng.Intn(900)),
						Title:     "Generated work item",
						Status:    status,
					}
					if err := store.AddWorkItem(ctx, item); err != nil {
						fmt.Fprintf(os.Stderr, "Error: %v\n", err)
						os.Exit(1)
					}
				}
			}
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Seeded project %q with %d members and %d sessions over %d weeks\n",
			green("✓"), project.Name, len(members), sessions, seedWeeks)
		fmt.Printf("Try: teampulse metrics %s && teampulse predict %s && teampulse monitor --project %s\n",
			name, name, name)
	},
}

var yesterdayUpdates = []string{
	"Finished the ingestion pipeline review and fixed two edge cases in the parser",
	"Closed ticket #284 and deployed the config service update to staging",
	"Paired with the platform team on the migration script and wrote tests",
	"Reviewed three pull requests and fixed the flaky integration test",
	"Implemented the retry logic for the webhook dispatcher",
}

var todayUpdates = []string{
	"Implement the export endpoint and write tests for the error paths",
	"Deploy the fix for the session bug and review the follow-up ticket",
	"Finish the database migration and test the rollback path",
	"Review the open feature PRs and deliver the quarterly metrics report",
	"Debug the cache invalidation issue and complete the fix",
}

var routineBlockers = []string{
	"waiting on code review for the migration PR",
	"staging environment credentials expired",
}

var troubledBlockers = []string{
	"database migration blocked on approvals again",
	"deployment pipeline failing, stuck waiting on infrastructure",
	"blocked on the vendor API outage, frustrated with the lack of updates",
	"urgent production issue eating the whole day, overwhelmed",
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func clampScore(v float64) float64 {
	if v < 0.05 {
		return 0.05
	}
	if v > 0.95 {
		return 0.95
	}
	return v
}

func init() {
	seedCmd.Flags().IntVar(&seedWeeks, "weeks", 6, "Weeks of history to generate")
	seedCmd.Flags().BoolVar(&seedTroubled, "troubled", false, "Generate a struggling team")
	rootCmd.AddCommand(seedCmd)
}
