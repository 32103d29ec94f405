package main

import (
	"context"
	"fmt"

	"KanbanService/board"
	"KanbanService/models"

	"github.com/spf13/cobra"
)

func (a *app) controller(opts ...board.Option) *board.Controller {
	opts = append([]board.Option{
		board.WithLogger(a.log),
		board.WithRefetchOnMove(a.cfg.RefetchOnMove),
		board.WithMaxInflightMoves(a.cfg.MaxInflightMoves),
	}, opts...)
	return board.NewController(a.client(), opts...)
}

// load loads the project and retries failed loads up to retries times.
func (a *app) load(ctx context.Context, c *board.Controller, project string, retries int) (board.State, error) {
	<-c.Load(ctx, project)
	s := c.State()
	for attempt := 1; s.Phase == board.Failed && attempt <= retries; attempt++ {
		a.log.WithError(s.Err).WithField("attempt", attempt).Warn("Retrying task list")
		<-c.Retry(ctx)
		s = c.State()
	}
	switch s.Phase {
	case board.Idle:
		return s, fmt.Errorf("invalid project id %q", project)
	case board.Failed:
		board.Render(a.out, s)
		return s, fmt.Errorf("failed to load project %s: %w", project, s.Err)
	}
	return s, nil
}

func (a *app) writeBoard(s board.State, output string) error {
	switch output {
	case "text":
		return board.Render(a.out, s)
	case "json":
		return board.WriteJSON(a.out, s)
	case "yaml":
		return board.WriteYAML(a.out, s)
	}
	return fmt.Errorf("unknown output %q: want text, json or yaml", output)
}

func boardCmd(a *app) *cobra.Command {
	var (
		project string
		output  string
		retries int
	)
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the board of a project",
		Long: `Show the tasks of a project grouped into the To Do, Work In Progress,
Under Review and Completed columns.

Examples:
  kanban board --project 1
  kanban board --project 1 --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.controller()
			defer c.Close()
			s, err := a.load(cmd.Context(), c, project, retries)
			if err != nil {
				return err
			}
			return a.writeBoard(s, output)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project id")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	cmd.Flags().IntVar(&retries, "retries", 2, "number of retries of a failed load")
	cmd.MarkFlagRequired("project")
	return cmd
}

func moveCmd(a *app) *cobra.Command {
	var (
		project string
		taskID  int
		status  string
	)
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a task to another column",
		Long: `Drag a task onto another column of the board and show the board again.

A failed update is only logged; the board then still shows the task in its old column.

Example:
  kanban move --project 1 --task 3 --status "Under Review"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := models.ParseStatus(status)
			if err != nil {
				return err
			}
			c := a.controller()
			defer c.Close()
			ctx := cmd.Context()
			if _, err := a.load(ctx, c, project, 0); err != nil {
				return err
			}

			item, err := c.BeginDrag(taskID)
			if err != nil {
				return err
			}
			c.DragOver(target)
			if err := c.Drop(ctx, item, target); err != nil {
				return err
			}
			c.Wait()
			return board.Render(a.out, c.State())
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project id")
	cmd.Flags().IntVarP(&taskID, "task", "t", 0, "task id")
	cmd.Flags().StringVarP(&status, "status", "s", "", "target status: To Do, Work In Progress, Under Review or Completed")
	cmd.Flags().Bool("refetch-on-move", true, "reload the board after the update (REFETCH_ON_MOVE)")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("task")
	cmd.MarkFlagRequired("status")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the tasks of a project as cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.controller()
			defer c.Close()
			s, err := a.load(cmd.Context(), c, project, 0)
			if err != nil {
				return err
			}
			return board.RenderList(a.out, s.Tasks)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project id")
	cmd.MarkFlagRequired("project")
	return cmd
}
