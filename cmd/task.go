package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
)

func addTaskCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("add-task"), "add-task", args, 3, -1)
	if err != nil {
		return err
	}
	phaseID, id, name := rest[0], a.resolveID(rest[1]), joinName(rest[2:])
	if err := a.openService(ctx).AddTask(phaseID, id, name); err != nil {
		return err
	}
	a.success("Added task %s (%s) to phase %s", id, name, phaseID)
	return nil
}

func addSubtaskCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("add-subtask"), "add-subtask", args, 4, -1)
	if err != nil {
		return err
	}
	phaseID, parentID, id, name := rest[0], rest[1], a.resolveID(rest[2]), joinName(rest[3:])
	if err := a.openService(ctx).AddSubtask(phaseID, parentID, id, name); err != nil {
		return err
	}
	a.success("Added subtask %s (%s) under %s", id, name, parentID)
	return nil
}

func moveTaskCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("move-task"), "move-task", args, 3, 3)
	if err != nil {
		return err
	}
	if err := a.openService(ctx).MoveTask(rest[0], rest[1], rest[2]); err != nil {
		return err
	}
	a.success("Moved task %s from phase %s to phase %s", rest[2], rest[0], rest[1])
	return nil
}

func reorderTaskCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("reorder-task"), "reorder-task", indexArgs(args), 3, 3)
	if err != nil {
		return err
	}
	index, err := parseIndex(rest[2])
	if err != nil {
		return err
	}
	if err := a.openService(ctx).ReorderTask(rest[0], rest[1], index); err != nil {
		return err
	}
	a.success("Moved task %s to position %d", rest[1], index)
	return nil
}

func renameTaskCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("rename-task"), "rename-task", args, 3, -1)
	if err != nil {
		return err
	}
	name := joinName(rest[2:])
	if err := a.openService(ctx).RenameTask(rest[0], rest[1], name); err != nil {
		return err
	}
	a.success("Renamed task %s to %q", rest[1], name)
	return nil
}

func describeTaskCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("describe-task"), "describe-task", args, 2, -1)
	if err != nil {
		return err
	}
	text := strings.Join(rest[2:], " ")
	if len(rest) == 3 && rest[2] == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return fmt.Errorf("read description: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if err := a.openService(ctx).DescribeTask(rest[0], rest[1], text); err != nil {
		return err
	}
	if text == "" {
		a.success("Cleared description of task %s", rest[1])
		return nil
	}
	a.success("Updated description of task %s", rest[1])
	return nil
}

func removeTaskCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("remove-task"), "remove-task", args, 2, 2)
	if err != nil {
		return err
	}
	if err := a.openService(ctx).RemoveTask(rest[0], rest[1]); err != nil {
		return err
	}
	a.success("Removed task %s", rest[1])
	return nil
}

func completeCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("complete"), "complete", args, 2, 2)
	if err != nil {
		return err
	}
	if err := a.openService(ctx).CompleteTask(rest[0], rest[1]); err != nil {
		return err
	}
	a.success("Task %s completed", rest[1])
	return nil
}

func pendingCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("pending"), "pending", args, 2, 2)
	if err != nil {
		return err
	}
	if err := a.openService(ctx).PendingTask(rest[0], rest[1]); err != nil {
		return err
	}
	a.success("Task %s marked pending", rest[1])
	return nil
}
