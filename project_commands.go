package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"KanbanService/commands"
	"KanbanService/validation"

	"github.com/spf13/cobra"
)

func projectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.client().ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(a.out, "No projects")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTART\tEND")
			for _, p := range projects {
				start, end := "-", "-"
				if p.StartDate != nil {
					start = p.StartDate.Format("2006-01-02")
				}
				if p.EndDate != nil {
					end = p.EndDate.Format("2006-01-02")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.Id, p.Name, start, end)
			}
			return tw.Flush()
		},
	}
}

func createProjectCmd(a *app) *cobra.Command {
	var form commands.CreateProjectCommand
	cmd := &cobra.Command{
		Use:   "create-project",
		Short: "Create a project",
		Long: `Create a project. Every field is required.

Example:
  kanban create-project --name Apollo --description "Moon landing" --start-date 2024-03-01 --end-date 2024-06-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkProjectForm(form); err != nil {
				return err
			}
			project, err := a.client().CreateProject(cmd.Context(), form)
			if err != nil {
				return fmt.Errorf("project not created: %w", err)
			}
			fmt.Fprintf(a.out, "Created project %d %q\n", project.Id, project.Name)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "project name")
	f.StringVar(&form.Description, "description", "", "description")
	f.StringVar(&form.StartDate, "start-date", "", "start date, yyyy-mm-dd")
	f.StringVar(&form.EndDate, "end-date", "", "end date, yyyy-mm-dd")
	for _, name := range []string{"name", "description", "start-date", "end-date"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}

// checkProjectForm rejects a form the service would reject, before sending it.
func checkProjectForm(form commands.CreateProjectCommand) error {
	if form.Name == "" || form.Description == "" || form.StartDate == "" || form.EndDate == "" {
		return errors.New("name, description, start date and end date are required")
	}
	start, err := validation.ParseDate(form.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := validation.ParseDate(form.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(*start) {
		return errors.New("end date cannot be earlier than start date")
	}
	return nil
}
