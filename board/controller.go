package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"KanbanService/models"

	"github.com/sirupsen/logrus"
)

// DefaultMaxInflightMoves bounds concurrent status updates when no limit is configured.
const DefaultMaxInflightMoves = 4

var (
	// ErrInvalidStatus is returned by Move and Drop for a status outside the enum.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrUnknownTask is returned by BeginDrag for a task that is not on the board.
	ErrUnknownTask = errors.New("task is not on the board")
)

// TaskService is the part of the task service contract the board consumes.
type TaskService interface {
	ListTasks(ctx context.Context, projectID int) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, id int, status models.Status) (*models.Task, error)
}

// Phase is the lifecycle of the current load.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// State is a snapshot of the board. Slices are shared between snapshots and must
// not be modified.
type State struct {
	// Version increases with every change.
	Version   uint64
	ProjectID int
	Phase     Phase
	Err       error
	Tasks     []models.Task
	Board     Board

	// Dragging is the id of the task being dragged, 0 when none.
	Dragging int
	// Highlight is the drop target under the dragged task, empty when none.
	Highlight models.Status
}

// Listener receives state snapshots. It is called from a single goroutine, in
// Version order, and may call back into the controller. Snapshots can be coalesced.
type Listener func(State)

// DragItem is the payload a task carries while dragged.
type DragItem struct {
	ID int
}

// Controller reconciles the board with the task service.
type Controller struct {
	svc           TaskService
	log           logrus.FieldLogger
	listener      Listener
	refetchOnMove bool
	moves         chan struct{}

	mu         sync.Mutex
	state      State
	generation uint64
	closing    bool

	wg       sync.WaitGroup
	changed  chan struct{}
	stop     chan struct{}
	notified chan struct{}
	closed   sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = log }
}

// WithListener registers the function notified of state changes.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listener = l }
}

// WithRefetchOnMove controls whether a successful status update reloads the current
// project. On by default.
func WithRefetchOnMove(on bool) Option {
	return func(c *Controller) { c.refetchOnMove = on }
}

// WithMaxInflightMoves bounds the number of concurrent status updates.
func WithMaxInflightMoves(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.moves = make(chan struct{}, n)
		}
	}
}

// NewController returns a controller backed by svc. Close releases it.
func NewController(svc TaskService, opts ...Option) *Controller {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Controller{
		svc:           svc,
		log:           discard,
		refetchOnMove: true,
		moves:         make(chan struct{}, DefaultMaxInflightMoves),
		state:         State{Board: Group(nil)},
		changed:       make(chan struct{}, 1),
		stop:          make(chan struct{}),
		notified:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.listener != nil {
		go c.notify()
	} else {
		close(c.notified)
	}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load requests the task list of the project identified by rawID. No request is made
// when rawID is empty or not a positive integer; the board is cleared instead. The
// returned channel is closed once the response has been applied or discarded.
func (c *Controller) Load(ctx context.Context, rawID string) <-chan struct{} {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil || id < 1 {
		c.log.WithField("project", rawID).Debug("skipping load of invalid project id")
		c.update(func(s *State) {
			c.generation++
			*s = State{Version: s.Version, Board: Group(nil)}
		})
		return closedChan()
	}
	return c.fetch(ctx, id)
}

// Retry re-issues the request of the last load. It does nothing when no project
// is loaded.
func (c *Controller) Retry(ctx context.Context) <-chan struct{} {
	id := c.State().ProjectID
	if id == 0 {
		return closedChan()
	}
	return c.fetch(ctx, id)
}

func (c *Controller) fetch(ctx context.Context, projectID int) <-chan struct{} {
	if !c.track() {
		c.log.WithField("project", projectID).Debug("controller closed, skipping load")
		return closedChan()
	}
	var gen uint64
	c.update(func(s *State) {
		c.generation++
		gen = c.generation
		if s.ProjectID != projectID {
			s.Tasks = nil
			s.Board = Group(nil)
		}
		s.ProjectID = projectID
		s.Phase = Loading
		s.Err = nil
	})

	done := make(chan struct{})
	go func() {
		defer c.wg.Done()
		defer close(done)

		tasks, err := c.svc.ListTasks(ctx, projectID)
		log := c.log.WithFields(logrus.Fields{"project": projectID, "generation": gen})
		var board Board
		if err == nil {
			board = Group(tasks)
		}
		applied := c.update(func(s *State) {
			if gen != c.generation {
				return
			}
			if err != nil {
				s.Phase = Failed
				s.Err = err
				return
			}
			s.Phase = Ready
			s.Tasks = tasks
			s.Board = board
		})
		switch {
		case !applied:
			log.Debug("discarding stale task list")
		case err != nil:
			log.WithError(err).Error("failed to load tasks")
		default:
			for _, t := range board.Unrecognized {
				log.WithFields(logrus.Fields{"task": t.Id, "status": t.Status}).Warn("task has unrecognized status")
			}
		}
	}()
	return done
}

// Move asks the task service to set the status of a task. It returns once the request
// is scheduled; failures are logged and the next load is authoritative. Moving a task
// to the column it is already shown in issues no request.
func (c *Controller) Move(ctx context.Context, taskID int, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, status)
	}
	state := c.State()
	if _, current, ok := state.Board.Find(taskID); ok && current == status {
		return nil
	}

	log := c.log.WithFields(logrus.Fields{"task": taskID, "status": status})
	if !c.track() {
		log.Debug("controller closed, skipping status update")
		return nil
	}
	go func() {
		defer c.wg.Done()
		c.moves <- struct{}{}
		_, err := c.svc.UpdateTaskStatus(ctx, taskID, status)
		<-c.moves
		if err != nil {
			log.WithError(err).Error("failed to update task status")
			return
		}
		log.Info("task status updated")
		if c.refetchOnMove {
			if current := c.State().ProjectID; current != 0 && current == state.ProjectID {
				c.fetch(ctx, current)
			}
		}
	}()
	return nil
}

// BeginDrag starts dragging a task shown on the board and returns its payload.
func (c *Controller) BeginDrag(taskID int) (DragItem, error) {
	if _, _, ok := c.State().Board.Find(taskID); !ok {
		return DragItem{}, fmt.Errorf("%w: %d", ErrUnknownTask, taskID)
	}
	c.update(func(s *State) {
		s.Dragging = taskID
		s.Highlight = ""
	})
	return DragItem{ID: taskID}, nil
}

// DragOver reports the dragged task is over the column for status. The column is
// highlighted only when a drag is in progress and status is a valid target.
func (c *Controller) DragOver(status models.Status) {
	c.update(func(s *State) {
		if s.Dragging != 0 && status.Valid() {
			s.Highlight = status
		} else {
			s.Highlight = ""
		}
	})
}

// DragLeave removes the highlight.
func (c *Controller) DragLeave() {
	c.update(func(s *State) { s.Highlight = "" })
}

// CancelDrag ends a drag without a drop.
func (c *Controller) CancelDrag() {
	c.update(func(s *State) {
		s.Dragging = 0
		s.Highlight = ""
	})
}

// Drop ends the drag of item over the column for target and moves the task there.
func (c *Controller) Drop(ctx context.Context, item DragItem, target models.Status) error {
	c.CancelDrag()
	return c.Move(ctx, item.ID, target)
}

// Wait blocks until every scheduled load and status update, including the reloads
// they trigger, has completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close waits for outstanding requests and stops listener notifications after
// delivering the final state. Loads and moves requested once Close has started,
// including reloads after a move, are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()
	c.wg.Wait()
	c.closed.Do(func() { close(c.stop) })
	<-c.notified
}

// track registers a request with wg. It reports false once Close has started.
func (c *Controller) track() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return false
	}
	c.wg.Add(1)
	return true
}

// update applies fn to the state under the lock and reports whether it changed
// anything, in which case the listener is signalled.
func (c *Controller) update(fn func(*State)) bool {
	c.mu.Lock()
	before := c.state
	fn(&c.state)
	changed := !sameState(before, c.state)
	if changed {
		c.state.Version++
	}
	c.mu.Unlock()

	if changed {
		select {
		case c.changed <- struct{}{}:
		default:
		}
	}
	return changed
}

func (c *Controller) notify() {
	defer close(c.notified)
	var last uint64
	deliver := func() {
		s := c.State()
		if s.Version > last {
			last = s.Version
			c.listener(s)
		}
	}
	for {
		select {
		case <-c.changed:
			deliver()
		case <-c.stop:
			deliver()
			return
		}
	}
}

// sameState compares the fields a listener can observe. Err only changes together
// with Phase, and task slices are compared by identity since a new list always comes
// with a new slice.
func sameState(a, b State) bool {
	return a.ProjectID == b.ProjectID &&
		a.Phase == b.Phase &&
		a.Dragging == b.Dragging &&
		a.Highlight == b.Highlight &&
		sameSlice(a.Tasks, b.Tasks)
}

func sameSlice(a, b []models.Task) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
