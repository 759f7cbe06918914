package cmd

import (
	"context"
	"fmt"
	"strconv"
)

func initCommand(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("init")
	rest, err := positional(fs, "init", args, 0, -1)
	if err != nil {
		return err
	}
	st := a.openStore()
	existed := st.Exists()
	svc := a.openService(ctx)

	name := joinName(rest)
	if name == "" {
		if existed {
			fmt.Fprintf(a.stdout, "Project %q already exists at %s\n", svc.Project().Name, st.Path())
			return nil
		}
		name = svc.Project().Name
	}
	if err := svc.RenameProject(name); err != nil {
		return err
	}
	if existed {
		a.success("Renamed project to %q", name)
		return nil
	}
	a.success("Created project %q at %s", name, st.Path())
	return nil
}

func renameProjectCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("rename-project"), "rename-project", args, 1, -1)
	if err != nil {
		return err
	}
	name := joinName(rest)
	if err := a.openService(ctx).RenameProject(name); err != nil {
		return err
	}
	a.success("Renamed project to %q", name)
	return nil
}

func addPhaseCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("add-phase"), "add-phase", args, 2, -1)
	if err != nil {
		return err
	}
	id, name := a.resolveID(rest[0]), joinName(rest[1:])
	if err := a.openService(ctx).AddPhase(id, name); err != nil {
		return err
	}
	a.success("Added phase %s (%s)", id, name)
	return nil
}

func renamePhaseCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("rename-phase"), "rename-phase", args, 2, -1)
	if err != nil {
		return err
	}
	name := joinName(rest[1:])
	if err := a.openService(ctx).RenamePhase(rest[0], name); err != nil {
		return err
	}
	a.success("Renamed phase %s to %q", rest[0], name)
	return nil
}

func movePhaseCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("move-phase"), "move-phase", indexArgs(args), 2, 2)
	if err != nil {
		return err
	}
	index, err := parseIndex(rest[1])
	if err != nil {
		return err
	}
	if err := a.openService(ctx).MovePhase(rest[0], index); err != nil {
		return err
	}
	a.success("Moved phase %s to position %d", rest[0], index)
	return nil
}

func removePhaseCommand(ctx context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("remove-phase"), "remove-phase", args, 1, 1)
	if err != nil {
		return err
	}
	if err := a.openService(ctx).RemovePhase(rest[0]); err != nil {
		return err
	}
	a.success("Removed phase %s", rest[0])
	return nil
}

// indexArgs ends flag parsing before the first negative integer so that a
// position like -1 reaches parseIndex instead of being read as a shorthand
// flag.
func indexArgs(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args
		}
		if len(arg) > 1 && arg[0] == '-' {
			if _, err := strconv.Atoi(arg); err == nil {
				out := make([]string, 0, len(args)+1)
				out = append(out, args[:i]...)
				out = append(out, "--")
				return append(out, args[i:]...)
			}
		}
	}
	return args
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: expected an integer", s)
	}
	return n, nil
}
