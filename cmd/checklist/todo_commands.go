package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"checklist/internal/api"
	"checklist/internal/ipc"
)

func newTodoCommands(ctx *commandContext) []*cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return ctx.withClient(cmd.Context(), func(callCtx context.Context, client *ipc.Client) error {
				todo, err := client.CreateTodo(callCtx, title)
				if err != nil {
					return fmt.Errorf("add todo: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", todo.ID, todo.Title)
				return nil
			})
		},
	}

	var listJSON bool
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd.Context(), func(callCtx context.Context, client *ipc.Client) error {
				list, err := client.GetTodos(callCtx)
				if err != nil {
					return fmt.Errorf("list todos: %w", err)
				}
				if listJSON {
					return writeJSON(cmd, api.TodoListResponse{Todos: list})
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No todos yet. Add one with `checklist add <title>`.")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Done", "Title", "Created"},
					buildTodoRows(list, time.Now()),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintln(out, todoSummary(list))
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print todos as JSON")

	doneCmd := newCompletionCommand(ctx, "done", "Mark a todo as completed", true)
	undoneCmd := newCompletionCommand(ctx, "undone", "Mark a todo as not completed", false)

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd.Context(), func(callCtx context.Context, client *ipc.Client) error {
				if err := client.DeleteTodo(callCtx, id); err != nil {
					return fmt.Errorf("delete todo: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
				return nil
			})
		},
	}

	return []*cobra.Command{addCmd, listCmd, doneCmd, undoneCmd, rmCmd}
}

func newCompletionCommand(ctx *commandContext, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd.Context(), func(callCtx context.Context, client *ipc.Client) error {
				todo, err := client.UpdateTodoCompletion(callCtx, id, completed)
				if err != nil {
					return fmt.Errorf("update todo: %w", err)
				}
				verb := "Reopened"
				if todo.Completed {
					verb = "Completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", verb, todo.ID, todo.Title)
				return nil
			})
		},
	}
}

// parseTodoID rejects non-numeric ids locally; range checks are left to the daemon.
func parseTodoID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q: must be a number", raw)
	}
	return id, nil
}

func buildTodoRows(list []api.Todo, now time.Time) [][]string {
	rows := make([][]string, 0, len(list))
	for _, todo := range list {
		rows = append(rows, []string{
			strconv.FormatInt(todo.ID, 10),
			checkbox(todo.Completed),
			todo.Title,
			createdLabel(todo, now),
		})
	}
	return rows
}

func createdLabel(todo api.Todo, now time.Time) string {
	created := todo.CreatedTime()
	if created.IsZero() {
		return todo.CreatedAt
	}
	return humanize.RelTime(created, now, "ago", "from now")
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

func todoSummary(list []api.Todo) string {
	completed := 0
	for _, todo := range list {
		if todo.Completed {
			completed++
		}
	}
	return fmt.Sprintf("%d/%d completed", completed, len(list))
}
