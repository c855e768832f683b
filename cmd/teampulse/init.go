package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/types"
)

var (
	initMembers  []string
	initManagers []string
)

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Create a project and its team roster",
	Long: `Create a new project in the TeamPulse database.

If no project name is provided, the current directory name is used.

Team members are added with --member and --manager (repeatable, or
comma-separated). Managers receive high and critical alert notifications.

Example:
  teampulse init
  teampulse init payments --member alice,bob --manager carol`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to get current directory: %v\n", err)
				os.Exit(1)
			}
			name = filepath.Base(cwd)
		}

		project := &types.Project{Name: name}
		if err := store.CreateProject(ctx, project); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		added := 0
		for _, username := range splitNames(initMembers) {
			if err := addMember(cmd, project.ID, username, types.RoleDeveloper); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			added++
		}
		for _, username := range splitNames(initManagers) {
			if err := addMember(cmd, project.ID, username, types.RoleManager); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			added++
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Created project %q (id %d) with %d team members\n",
			green("✓"), project.Name, project.ID, added)
	},
}

func addMember(cmd *cobra.Command, projectID int64, username string, role types.Role) error {
	return store.AddTeamMember(cmd.Context(), &types.TeamMember{
		ProjectID: projectID,
		Username:  username,
		Email:     username + "@" + notifyDomain(),
		Role:      role,
		IsActive:  true,
	})
}

// splitNames flattens repeatable, comma-separated flag values.
func splitNames(values []string) []string {
	var names []string
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func notifyDomain() string {
	if d := os.Getenv("TEAMPULSE_EMAIL_DOMAIN"); d != "" {
		return d
	}
	return "example.com"
}

func init() {
	initCmd.Flags().StringSliceVar(&initMembers, "member", nil, "Developer username (repeatable)")
	initCmd.Flags().StringSliceVar(&initManagers, "manager", nil, "Manager username (repeatable)")
	rootCmd.AddCommand(initCmd)
}
