package board

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"text/tabwriter"
	"time"

	"KanbanService/models"

	"gopkg.in/yaml.v3"
)

const (
	boardDateLayout = "01/02/2006"
	cardDateLayout  = "Jan 2, 2006"
)

// Render writes the state as text: a loading or error message, or the four columns
// with their task counts.
func Render(w io.Writer, s State) error {
	switch {
	case s.Phase == Idle:
		_, err := fmt.Fprintln(w, "No project selected")
		return err
	case s.Phase == Loading && len(s.Tasks) == 0:
		_, err := fmt.Fprintln(w, "Loading tasks...")
		return err
	case s.Phase == Failed:
		_, err := fmt.Fprintf(w, "An error occurred while fetching tasks: %v\n", s.Err)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Project %d\n", s.ProjectID)
	for _, col := range s.Board.Columns {
		writeColumn(tw, string(col.Status), col.Tasks, s.Highlight == col.Status)
	}
	if len(s.Board.Unrecognized) > 0 {
		writeColumn(tw, "Unrecognized", s.Board.Unrecognized, false)
	}
	return tw.Flush()
}

func writeColumn(w io.Writer, title string, tasks []models.Task, highlighted bool) {
	marker := ""
	if highlighted {
		marker = " <"
	}
	fmt.Fprintf(w, "\n%s (%d)%s\n", title, len(tasks), marker)
	if len(tasks) == 0 {
		fmt.Fprintln(w, "  -")
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(w, "  #%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Id, t.Title, t.Priority, strings.Join(t.TagList(), ", "), dateRange(t), assignee(t),
			commentCount(t), attachmentName(t))
	}
}

func commentCount(t models.Task) string {
	if len(t.Comments) == 1 {
		return "1 comment"
	}
	return fmt.Sprintf("%d comments", len(t.Comments))
}

// attachmentName is the name of the first attachment, shown as the card preview.
func attachmentName(t models.Task) string {
	if len(t.Attachments) == 0 {
		return ""
	}
	a := t.Attachments[0]
	if a.FileName != "" {
		return a.FileName
	}
	return path.Base(a.FileURL)
}

func dateRange(t models.Task) string {
	switch {
	case t.StartDate != nil && t.DueDate != nil:
		return t.StartDate.Format(boardDateLayout) + " - " + t.DueDate.Format(boardDateLayout)
	case t.StartDate != nil:
		return "from " + t.StartDate.Format(boardDateLayout)
	case t.DueDate != nil:
		return "due " + t.DueDate.Format(boardDateLayout)
	}
	return ""
}

func assignee(t models.Task) string {
	if t.Assignee != nil {
		return "@" + t.Assignee.Username
	}
	return ""
}

// RenderList writes one card per task.
func RenderList(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for i, t := range tasks {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		writeCard(tw, t)
	}
	return tw.Flush()
}

func writeCard(w io.Writer, t models.Task) {
	description := t.Description
	if description == "" {
		description = "No description provided"
	}
	priority := string(t.Priority)
	if priority == "" {
		priority = "None"
	}
	tags := strings.Join(t.TagList(), ", ")
	if tags == "" {
		tags = "No tags"
	}
	author, assigned := "Unknown", "Unassigned"
	if t.Author != nil {
		author = t.Author.Username
	}
	if t.Assignee != nil {
		assigned = t.Assignee.Username
	}

	fmt.Fprintln(w, t.Title)
	fmt.Fprintf(w, "  Status:\t%s\n", t.Status.OrDefault())
	fmt.Fprintf(w, "  Description:\t%s\n", description)
	fmt.Fprintf(w, "  Priority:\t%s\n", priority)
	fmt.Fprintf(w, "  Tags:\t%s\n", tags)
	fmt.Fprintf(w, "  Start Date:\t%s\n", cardDate(t.StartDate))
	fmt.Fprintf(w, "  Due Date:\t%s\n", cardDate(t.DueDate))
	fmt.Fprintf(w, "  Author:\t%s\n", author)
	fmt.Fprintf(w, "  Assignee:\t%s\n", assigned)
	fmt.Fprintf(w, "  Comments:\t%d\n", len(t.Comments))
	if name := attachmentName(t); name != "" {
		fmt.Fprintf(w, "  Attachment:\t%s\n", name)
	}
	fmt.Fprintf(w, "  Task ID:\t%d\n", t.Id)
}

func cardDate(t *time.Time) string {
	if t == nil {
		return "Not set"
	}
	return t.Format(cardDateLayout)
}

// Export is the machine-readable form of a loaded board.
type Export struct {
	ProjectID    int            `json:"projectId" yaml:"projectId"`
	Columns      []ExportColumn `json:"columns" yaml:"columns"`
	Unrecognized []ExportTask   `json:"unrecognized,omitempty" yaml:"unrecognized,omitempty"`
}

// ExportColumn is one status column of an Export.
type ExportColumn struct {
	Status models.Status `json:"status" yaml:"status"`
	Count  int           `json:"count" yaml:"count"`
	Tasks  []ExportTask  `json:"tasks" yaml:"tasks"`
}

// ExportTask is the summary of a task in an Export.
type ExportTask struct {
	ID         int             `json:"id" yaml:"id"`
	Title      string          `json:"title" yaml:"title"`
	Status     models.Status   `json:"status,omitempty" yaml:"status,omitempty"`
	Priority   models.Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
	Tags       []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Points     *int            `json:"points,omitempty" yaml:"points,omitempty"`
	Assignee   string          `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Comments   int             `json:"comments" yaml:"comments"`
	Attachment string          `json:"attachment,omitempty" yaml:"attachment,omitempty"`
}

// NewExport summarizes the board of s.
func NewExport(s State) Export {
	e := Export{ProjectID: s.ProjectID, Columns: make([]ExportColumn, 0, len(s.Board.Columns))}
	for _, col := range s.Board.Columns {
		e.Columns = append(e.Columns, ExportColumn{Status: col.Status, Count: len(col.Tasks), Tasks: exportTasks(col.Tasks)})
	}
	if len(s.Board.Unrecognized) > 0 {
		e.Unrecognized = exportTasks(s.Board.Unrecognized)
	}
	return e
}

func exportTasks(tasks []models.Task) []ExportTask {
	out := make([]ExportTask, 0, len(tasks))
	for _, t := range tasks {
		et := ExportTask{ID: t.Id, Title: t.Title, Status: t.Status, Priority: t.Priority, Tags: t.TagList(), Points: t.Points,
			Comments: len(t.Comments), Attachment: attachmentName(t)}
		if t.Assignee != nil {
			et.Assignee = t.Assignee.Username
		}
		out = append(out, et)
	}
	return out
}

// WriteJSON writes the export of s as indented JSON.
func WriteJSON(w io.Writer, s State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExport(s))
}

// WriteYAML writes the export of s as YAML.
func WriteYAML(w io.Writer, s State) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewExport(s)); err != nil {
		return err
	}
	return enc.Close()
}
