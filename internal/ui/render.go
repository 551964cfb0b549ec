package ui

import (
	"fmt"
	"strings"

	"taskman/internal/models"
)

// renderTasks formats tasks as a fixed-width table.
func renderTasks(tasks []*models.Task) string {
	if len(tasks) == 0 {
		return menuStyle.Render("No tasks to show.") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-25s %-12s %-12s %-9s %-15s",
		"ID", "Title", "Assigned", "Due", "Complete", "Assignee")))
	b.WriteString("\n")
	for _, t := range tasks {
		line := fmt.Sprintf("%-4d %-25s %-12s %-12s %-9s %-15s",
			t.ID, truncate(t.Title, 25), t.AssignedDate, t.DueDate, t.IsComplete, t.User)
		if t.Completed() {
			line = completeStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if t.Description != "" {
			b.WriteString(menuStyle.Render("     " + truncate(t.Description, 70)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderUsers formats users as a fixed-width table. Passwords are not shown.
func renderUsers(users []*models.User) string {
	if len(users) == 0 {
		return menuStyle.Render("No users to show.") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-20s %-30s %-6s",
		"ID", "Username", "Email", "Admin")))
	b.WriteString("\n")
	for _, u := range users {
		b.WriteString(fmt.Sprintf("%-4d %-20s %-30s %-6s\n",
			u.ID, u.Username, u.Email, u.IsAdmin))
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
