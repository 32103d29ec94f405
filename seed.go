package main

import (
	"context"
	"fmt"
	"time"

	"KanbanService/models"
	"KanbanService/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func seedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with a sample project",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			project, err := seed(cmd.Context(), st, time.Now().UTC())
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"project": project.Id}).Info("Seeded sample project")
			fmt.Fprintf(a.out, "Created project %d %q\n", project.Id, project.Name)
			return nil
		},
	}
	addServerFlags(cmd)
	return cmd
}

// seed creates two users and a project with one task in every status.
func seed(ctx context.Context, st *store.Store, now time.Time) (*models.Project, error) {
	day := now.Truncate(24 * time.Hour)
	at := func(days int) *time.Time {
		t := day.AddDate(0, 0, days)
		return &t
	}
	points := func(n int) *int { return &n }

	alice := &models.User{Username: "alice"}
	bob := &models.User{Username: "bob"}
	for _, u := range []*models.User{alice, bob} {
		if err := st.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", u.Username, err)
		}
	}

	project := &models.Project{
		Name:        "Board rollout",
		Description: "Move the team's work onto the kanban board",
		StartDate:   at(-7),
		EndDate:     at(30),
	}
	if err := st.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	tasks := []*models.Task{
		{Title: "Write project brief", Status: models.StatusCompleted, Priority: models.PriorityHigh,
			Tags: "docs, planning", StartDate: at(-7), DueDate: at(-3), Points: points(3)},
		{Title: "Design board columns", Status: models.StatusUnderReview, Priority: models.PriorityMedium,
			Tags: "design", StartDate: at(-3), DueDate: at(2), Points: points(5), AssignedUserId: &bob.UserId},
		{Title: "Import existing tickets", Status: models.StatusWorkInProgress, Priority: models.PriorityUrgent,
			Tags: "migration", StartDate: at(0), DueDate: at(5), Points: points(8), AssignedUserId: &alice.UserId},
		{Title: "Train the team", Status: models.StatusToDo, Priority: models.PriorityLow,
			Description: "One session per squad", DueDate: at(14)},
	}
	for _, t := range tasks {
		t.ProjectId = project.Id
		t.AuthorUserId = alice.UserId
		if err := st.CreateTask(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to create task %q: %w", t.Title, err)
		}
	}

	if err := st.AddComment(ctx, &models.Comment{Text: "Columns match the old tracker", TaskId: tasks[1].Id, UserId: alice.UserId}); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	attachment := &models.Attachment{FileURL: "https://example.com/brief.pdf", FileName: "brief.pdf", TaskId: tasks[0].Id, UploadedById: alice.UserId}
	if err := st.AddAttachment(ctx, attachment); err != nil {
		return nil, fmt.Errorf("failed to add attachment: %w", err)
	}
	return project, nil
}
