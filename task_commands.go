package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"KanbanService/board"
	"KanbanService/client"
	"KanbanService/commands"
	"KanbanService/models"

	"github.com/spf13/cobra"
)

func createCmd(a *app) *cobra.Command {
	var (
		form     commands.CreateTaskCommand
		points   int
		assignee int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Long: `Create a task on a project board.

Example:
  kanban create --project 1 --author 1 --title "Write brief" --priority High --tags docs,planning`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("points") {
				form.Points = &points
			}
			if cmd.Flags().Changed("assignee") {
				form.AssignedUserId = &assignee
			}
			task, err := a.client().CreateTask(cmd.Context(), form)
			if client.IsStatus(err, http.StatusBadRequest) {
				// print the rejected form so it can be corrected and sent again
				data, _ := json.MarshalIndent(form, "", "  ")
				fmt.Fprintf(a.errOut, "%s\n", data)
			}
			if err != nil {
				return fmt.Errorf("task not created: %w", err)
			}
			fmt.Fprintf(a.out, "Created task %d\n\n", task.Id)
			return board.RenderList(a.out, []models.Task{*task})
		},
	}
	f := cmd.Flags()
	f.IntVarP(&form.ProjectId, "project", "p", 0, "project id")
	f.IntVar(&form.AuthorUserId, "author", 0, "user id of the author")
	f.StringVar(&form.Title, "title", "", "title")
	f.StringVar(&form.Description, "description", "", "description")
	f.StringVar(&form.Status, "status", "", "status, To Do when empty")
	f.StringVar(&form.Priority, "priority", "", "priority: Urgent, High, Medium or Low")
	f.StringVar(&form.Tags, "tags", "", "comma separated tags")
	f.StringVar(&form.StartDate, "start-date", "", "start date, yyyy-mm-dd")
	f.StringVar(&form.DueDate, "due-date", "", "due date, yyyy-mm-dd")
	f.IntVar(&points, "points", 0, "estimate in points")
	f.IntVar(&assignee, "assignee", 0, "user id of the assignee")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	var taskID int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one task as a card",
		Long: `Show one task as a card, with the project it belongs to.

Example:
  kanban show --task 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			task, err := c.GetTask(cmd.Context(), taskID)
			if client.IsStatus(err, http.StatusNotFound) {
				return fmt.Errorf("task %d not found", taskID)
			}
			if err != nil {
				return err
			}
			project, err := c.GetProject(cmd.Context(), task.ProjectId)
			if err != nil {
				return fmt.Errorf("project of task %d: %w", taskID, err)
			}
			fmt.Fprintf(a.out, "Project %d %q\n\n", project.Id, project.Name)
			return board.RenderList(a.out, []models.Task{*task})
		},
	}
	cmd.Flags().IntVarP(&taskID, "task", "t", 0, "task id")
	cmd.MarkFlagRequired("task")
	return cmd
}
