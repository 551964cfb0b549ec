package models

// Task represents a unit of work assigned to a user.
// Dates are stored as DD/MM/YYYY strings, the same format used by the
// import/export files.
type Task struct {
	ID           int
	Title        string
	Description  string
	AssignedDate string // set once at creation, never updated
	DueDate      string
	IsComplete   string // FlagNo or FlagYes
	User         string // assignee username
}

// Completed reports whether the task has been marked complete.
func (t *Task) Completed() bool {
	return t.IsComplete == FlagYes
}
