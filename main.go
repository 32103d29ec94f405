// KanbanService is a kanban board for project tasks: a task service and a terminal board client.
//
// The task service stores projects and tasks in MySQL (or SQLite for local use) and exposes them over HTTP.
// A rate limit of 2 events per second with a burst of 20 events protects it against abuse,
// and Prometheus metrics count every endpoint call and every error.
// The board client loads a project's tasks, groups them into the four status columns and moves tasks
// between columns the way a drag and drop does on a web board.
//
// The following endpoints are available:
//
//  1. GET /tasks?projectId={id} - Get the tasks of a project
//  2. POST /tasks - Create a new task
//  3. GET /tasks/{id} - Get a task by ID
//  4. PATCH /tasks/{id}/status - Move a task to another status
//  5. GET /projects - Get all projects
//  6. POST /projects - Create a new project
//  7. GET /projects/{id} - Get a project by ID
//  8. GET /health - Check the database connection
//  9. GET /metrics - Display Prometheus metrics
//
// The following commands are available:
//
//	kanban serve                                   run the task service
//	kanban seed                                    fill the database with a sample project
//	kanban board --project 1 [--output json|yaml]  show the board of a project
//	kanban move --project 1 --task 3 --status "Under Review"
//	kanban list --project 1                        show the tasks of a project as cards
//	kanban create --project 1 --author 1 --title "Write brief"
//	kanban show --task 3                           show one task as a card
//	kanban projects
//	kanban create-project --name Apollo --description ... --start-date 2024-03-01 --end-date 2024-06-01
//
// Settings are read from flags, the environment and a .env file; see package config.
//
// You may use godoc -http=:6060 to view the documentation in your browser.
package main

import (
	"fmt"
	"io"
	"os"

	"KanbanService/client"
	"KanbanService/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Version = "dev"

// app carries what every command needs once flags are parsed.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	out    io.Writer
	errOut io.Writer
	// envFiles overrides the default .env lookup in tests.
	envFiles []string
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.APIURL, client.WithTimeout(a.cfg.APITimeout), client.WithLogger(a.log))
}

func newRootCmd(out, errOut io.Writer, envFiles ...string) *cobra.Command {
	a := &app{out: out, errOut: errOut, envFiles: envFiles}
	root := &cobra.Command{
		Use:           "kanban",
		Short:         "Kanban board for project tasks",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("api-url", "", "base URL of the task service (API_URL)")
	flags.Duration("api-timeout", 0, "timeout of each call to the task service (API_TIMEOUT)")
	flags.String("log-level", "", "log level (LOG_LEVEL)")
	flags.String("log-format", "", "log format, json or text (LOG_FORMAT)")

	root.AddCommand(serveCmd(a))
	root.AddCommand(seedCmd(a))
	root.AddCommand(boardCmd(a))
	root.AddCommand(moveCmd(a))
	root.AddCommand(listCmd(a))
	root.AddCommand(createCmd(a))
	root.AddCommand(showCmd(a))
	root.AddCommand(projectsCmd(a))
	root.AddCommand(createProjectCmd(a))
	return root
}

func (a *app) configure(cmd *cobra.Command) error {
	v, err := config.New(a.envFiles...)
	if err != nil {
		return err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	log.SetOutput(a.errOut)
	a.cfg, a.log = cfg, log
	return nil
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
