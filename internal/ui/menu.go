// Package ui implements the console menu loop. It collects primitive
// values from the terminal, hands them to the services, and renders the
// results; all input re-prompting lives here, never in the services.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taskman/internal/database"
	"taskman/internal/dates"
	"taskman/internal/models"
	"taskman/internal/services/task"
	"taskman/internal/services/user"
	"taskman/internal/validate"
)

// Menu drives the interactive session for one logged-in user.
type Menu struct {
	in    *bufio.Reader
	out   io.Writer
	tasks task.Service
	users user.Service

	auth *models.AuthResult
	eof  bool
}

// New creates a menu bound to the given terminal streams and services.
func New(in io.Reader, out io.Writer, tasks task.Service, users user.Service) *Menu {
	return &Menu{
		in:    bufio.NewReader(in),
		out:   out,
		tasks: tasks,
		users: users,
	}
}

// Run prompts for login and then loops over the role-appropriate menu until
// the user exits. Returns only on exit or a fatal storage error.
func (m *Menu) Run(ctx context.Context) error {
	m.println(titleStyle.Render("Task Manager"))

	auth, err := m.loginLoop(ctx)
	if err != nil {
		return err
	}
	m.auth = auth
	m.println(successStyle.Render(fmt.Sprintf("Welcome, %s!", auth.Username)))

	for {
		m.printMenu()
		choice := m.readLine("Select an option: ")
		if m.eof {
			return nil
		}
		done, err := m.dispatch(ctx, choice)
		if err != nil {
			return err
		}
		if done {
			m.println("Goodbye!")
			return nil
		}
	}
}

// loginLoop re-prompts until a credential pair matches. The two failure
// modes read differently on purpose.
func (m *Menu) loginLoop(ctx context.Context) (*models.AuthResult, error) {
	for {
		username := m.readLine("Username: ")
		password := m.readLine("Password: ")
		if m.eof {
			return nil, io.ErrUnexpectedEOF
		}

		auth, err := m.users.Login(ctx, username, password)
		switch {
		case errors.Is(err, database.ErrUnknownUser):
			m.println(errorStyle.Render("No user with that username. Try again."))
		case errors.Is(err, database.ErrWrongPassword):
			m.println(errorStyle.Render("Incorrect password. Try again."))
		case err != nil:
			return nil, err
		default:
			return auth, nil
		}
	}
}

func (m *Menu) printMenu() {
	m.println("")
	m.println(titleStyle.Render("Please select one of the following options:"))
	m.println(menuStyle.Render(strings.Join([]string{
		" 1. Add task",
		" 2. View all tasks",
		" 3. View my tasks",
		" 4. Update task",
		" 5. Mark task complete",
		" 6. Delete task",
	}, "\n")))
	if m.auth.Role == models.RoleAdmin {
		m.println(menuStyle.Render(strings.Join([]string{
			" 7. View completed tasks",
			" 8. View overdue tasks",
			" 9. View statistics",
			"10. Manage users",
			"11. Import/export data",
		}, "\n")))
	}
	m.println(menuStyle.Render(" 0. Exit"))
}

func (m *Menu) dispatch(ctx context.Context, choice string) (bool, error) {
	admin := m.auth.Role == models.RoleAdmin
	switch choice {
	case "1":
		return false, m.addTask(ctx)
	case "2":
		return false, m.showTasks(m.tasks.ViewAllTasks(ctx))
	case "3":
		return false, m.showTasks(m.tasks.GetMyTasks(ctx, m.auth.Username))
	case "4":
		return false, m.updateTask(ctx)
	case "5":
		return false, m.markComplete(ctx)
	case "6":
		return false, m.deleteTask(ctx)
	case "7":
		if admin {
			return false, m.showTasks(m.tasks.CompletedTasks(ctx))
		}
	case "8":
		if admin {
			return false, m.showTasks(m.tasks.OverdueTasks(ctx))
		}
	case "9":
		if admin {
			return false, m.statistics(ctx)
		}
	case "10":
		if admin {
			return false, m.userMenu(ctx)
		}
	case "11":
		if admin {
			return false, m.dataMenu(ctx)
		}
	case "0", "q":
		return true, nil
	}
	m.println(errorStyle.Render("Invalid option, try again."))
	return false, nil
}

func (m *Menu) addTask(ctx context.Context) error {
	assignee, ok, err := m.promptAssignee(ctx)
	if err != nil || !ok {
		return err
	}

	title := m.readLine("Title: ")
	description := m.readLine("Description: ")
	dueDate := m.promptDate("Due date (DD/MM/YYYY): ")

	created, err := m.tasks.AddTask(ctx, task.AddTaskRequest{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Assignee:    assignee,
	})
	switch {
	case errors.Is(err, task.ErrDueBeforeAssigned),
		errors.Is(err, task.ErrEmptyTitle),
		errors.Is(err, task.ErrInvalidDate):
		m.println(errorStyle.Render(err.Error()))
		return nil
	case err != nil:
		return err
	}
	m.println(successStyle.Render(fmt.Sprintf("Task %d added.", created.ID)))
	return nil
}

func (m *Menu) updateTask(ctx context.Context) error {
	id, ok := m.promptID("Task ID to update (-1 to cancel): ")
	if !ok {
		return nil
	}

	existing, err := m.tasks.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		m.println(errorStyle.Render("Task not found."))
		return nil
	}

	assignee, ok, err := m.promptAssignee(ctx)
	if err != nil || !ok {
		return err
	}
	title := m.readLineDefault("Title", existing.Title)
	description := m.readLineDefault("Description", existing.Description)
	dueDate := m.promptDate("Due date (DD/MM/YYYY): ")

	changed, err := m.tasks.UpdateTask(ctx, task.UpdateTaskRequest{
		TaskID:      id,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Assignee:    assignee,
	})
	switch {
	case errors.Is(err, task.ErrDueBeforeAssigned), errors.Is(err, task.ErrInvalidDate):
		m.println(errorStyle.Render(err.Error()))
		return nil
	case err != nil:
		return err
	}
	m.reportChanged(changed, "Task updated.", "Task not found.")
	return nil
}

func (m *Menu) markComplete(ctx context.Context) error {
	id, ok := m.promptID("Task ID to mark complete (-1 to cancel): ")
	if !ok {
		return nil
	}
	changed, err := m.tasks.MarkComplete(ctx, id)
	if err != nil {
		return err
	}
	m.reportChanged(changed, "Task marked complete.", "Task not found.")
	return nil
}

func (m *Menu) deleteTask(ctx context.Context) error {
	id, ok := m.promptID("Task ID to delete (-1 to cancel): ")
	if !ok {
		return nil
	}
	changed, err := m.tasks.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	m.reportChanged(changed, "Task deleted.", "Task not found.")
	return nil
}

func (m *Menu) statistics(ctx context.Context) error {
	taskCount, err := m.tasks.CountTasks(ctx)
	if err != nil {
		return err
	}
	userCount, err := m.users.CountUsers(ctx)
	if err != nil {
		return err
	}
	m.println(titleStyle.Render("Statistics"))
	m.println(fmt.Sprintf("Total tasks: %d", taskCount))
	m.println(fmt.Sprintf("Total users: %d", userCount))
	return nil
}

func (m *Menu) userMenu(ctx context.Context) error {
	m.println(titleStyle.Render("User management"))
	m.println(menuStyle.Render(strings.Join([]string{
		" 1. View all users",
		" 2. Add user",
		" 3. Update user",
		" 4. Promote user to admin",
		" 5. Delete user",
		" 0. Back",
	}, "\n")))

	switch m.readLine("Select an option: ") {
	case "1":
		users, err := m.users.ViewAllUsers(ctx)
		if err != nil {
			return err
		}
		m.print(renderUsers(users))
	case "2":
		return m.addUser(ctx)
	case "3":
		return m.updateUser(ctx)
	case "4":
		id, ok := m.promptID("User ID to promote (-1 to cancel): ")
		if !ok {
			return nil
		}
		changed, err := m.users.PromoteToAdmin(ctx, id)
		if err != nil {
			return err
		}
		m.reportChanged(changed, "User promoted to admin.", "User not found.")
	case "5":
		return m.deleteUser(ctx)
	case "0":
	default:
		m.println(errorStyle.Render("Invalid option, try again."))
	}
	return nil
}

func (m *Menu) addUser(ctx context.Context) error {
	username := m.readLine("Username: ")
	password := m.readLine("Password: ")
	email := m.promptEmail("Email: ")

	created, err := m.users.AddUser(ctx, username, password, email)
	switch {
	case errors.Is(err, database.ErrUsernameTaken):
		m.println(errorStyle.Render("That username is taken, choose another."))
		return nil
	case errors.Is(err, user.ErrEmptyUsername), errors.Is(err, user.ErrEmptyPassword):
		m.println(errorStyle.Render(err.Error()))
		return nil
	case err != nil:
		return err
	}
	m.println(successStyle.Render(fmt.Sprintf("User %q added with ID %d.", created.Username, created.ID)))
	return nil
}

func (m *Menu) updateUser(ctx context.Context) error {
	id, ok := m.promptID("User ID to update (-1 to cancel): ")
	if !ok {
		return nil
	}

	existing, err := m.users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		m.println(errorStyle.Render("User not found."))
		return nil
	}

	username := m.readLineDefault("Username", existing.Username)
	password := m.readLineDefault("Password", existing.Password)
	email := m.promptEmail("Email: ")

	changed, err := m.users.UpdateUser(ctx, user.UpdateUserRequest{
		UserID:   id,
		Username: username,
		Password: password,
		Email:    email,
	})
	switch {
	case errors.Is(err, database.ErrUsernameTaken):
		m.println(errorStyle.Render("That username is taken, choose another."))
		return nil
	case err != nil:
		return err
	}
	m.reportChanged(changed, "User updated.", "User not found.")
	return nil
}

// deleteUser refuses to delete the account that is currently logged in,
// which also covers the seed administrator locking themselves out.
func (m *Menu) deleteUser(ctx context.Context) error {
	id, ok := m.promptID("User ID to delete (-1 to cancel): ")
	if !ok {
		return nil
	}

	target, err := m.users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if target != nil && target.Username == m.auth.Username {
		m.println(errorStyle.Render("You cannot delete the account you are logged in as."))
		return nil
	}

	changed, err := m.users.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	m.reportChanged(changed, "User deleted.", "User not found.")
	return nil
}

func (m *Menu) dataMenu(ctx context.Context) error {
	m.println(titleStyle.Render("Import/export"))
	m.println(menuStyle.Render(strings.Join([]string{
		" 1. Import tasks",
		" 2. Export tasks",
		" 3. Import users",
		" 4. Export users",
		" 0. Back",
	}, "\n")))

	switch m.readLine("Select an option: ") {
	case "1":
		path := m.readLine("Path to task file: ")
		res, err := m.tasks.ImportTasks(ctx, path)
		if err != nil {
			m.println(errorStyle.Render(fmt.Sprintf("Import failed: %v", err)))
			return nil
		}
		m.println(successStyle.Render(fmt.Sprintf("Imported %d tasks, skipped %d.", res.Inserted, res.Skipped)))
	case "2":
		path := m.readLine("Path to write tasks: ")
		count, err := m.tasks.ExportTasks(ctx, path)
		if err != nil {
			m.println(errorStyle.Render(fmt.Sprintf("Export failed: %v", err)))
			return nil
		}
		m.println(successStyle.Render(fmt.Sprintf("Exported %d tasks.", count)))
	case "3":
		path := m.readLine("Path to user file: ")
		res, err := m.users.ImportUsers(ctx, path)
		if err != nil {
			m.println(errorStyle.Render(fmt.Sprintf("Import failed: %v", err)))
			return nil
		}
		m.println(successStyle.Render(fmt.Sprintf("Imported %d users, skipped %d.", res.Inserted, res.Skipped)))
	case "4":
		path := m.readLine("Path to write users: ")
		count, err := m.users.ExportUsers(ctx, path)
		if err != nil {
			m.println(errorStyle.Render(fmt.Sprintf("Export failed: %v", err)))
			return nil
		}
		m.println(successStyle.Render(fmt.Sprintf("Exported %d users.", count)))
	case "0":
	default:
		m.println(errorStyle.Render("Invalid option, try again."))
	}
	return nil
}

// showTasks renders a task list result from any of the list operations.
func (m *Menu) showTasks(tasks []*models.Task, err error) error {
	if err != nil {
		return err
	}
	m.print(renderTasks(tasks))
	return nil
}

// promptAssignee re-prompts until the entered username names an existing
// user, and returns the canonical stored form.
func (m *Menu) promptAssignee(ctx context.Context) (string, bool, error) {
	for {
		name := m.readLine("Assignee username (-1 to cancel): ")
		if name == "-1" || m.eof {
			return "", false, nil
		}
		canonical, found, err := m.users.AssigneeExists(ctx, name)
		if err != nil {
			return "", false, err
		}
		if found {
			return canonical, true, nil
		}
		m.println(errorStyle.Render(fmt.Sprintf("No user named %q. Try again.", name)))
	}
}

// promptDate re-prompts until the input parses as DD/MM/YYYY.
func (m *Menu) promptDate(prompt string) string {
	for {
		s := m.readLine(prompt)
		if _, err := dates.Parse(s); err == nil || m.eof {
			return s
		}
		m.println(errorStyle.Render("Invalid date format. Use DD/MM/YYYY."))
	}
}

// promptEmail re-prompts until the input looks like local@domain.tld.
func (m *Menu) promptEmail(prompt string) string {
	for {
		s := m.readLine(prompt)
		if err := validate.Email(s); err == nil || m.eof {
			return s
		}
		m.println(errorStyle.Render("Invalid email format. Try again."))
	}
}

// promptID reads an integer id, returning ok=false when the user cancels.
func (m *Menu) promptID(prompt string) (int, bool) {
	for {
		s := m.readLine(prompt)
		if m.eof {
			return 0, false
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			m.println(errorStyle.Render("Please enter a number."))
			continue
		}
		if id == -1 {
			return 0, false
		}
		if id <= 0 {
			m.println(errorStyle.Render("IDs are positive numbers."))
			continue
		}
		return id, true
	}
}

func (m *Menu) readLine(prompt string) string {
	m.print(prompt)
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		m.eof = true
	}
	return strings.TrimSpace(line)
}

// readLineDefault keeps the current value when the user enters nothing.
func (m *Menu) readLineDefault(field, current string) string {
	s := m.readLine(fmt.Sprintf("%s [%s]: ", field, current))
	if s == "" {
		return current
	}
	return s
}

func (m *Menu) reportChanged(changed bool, yes, no string) {
	if changed {
		m.println(successStyle.Render(yes))
	} else {
		m.println(errorStyle.Render(no))
	}
}

func (m *Menu) print(s string) {
	fmt.Fprint(m.out, s)
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}
