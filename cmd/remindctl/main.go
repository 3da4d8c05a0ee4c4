// remindctl is the request surface for the reminder store: add, edit,
// complete, delete, list and export tasks. It operates on the same
// database file the daemon watches; the store serializes writers, so
// running it while the daemon is up is safe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"remindd/internal/store"
	"remindd/internal/task"
	"remindd/pkg/logx"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if task.IsValidation(err) || errors.Is(err, task.ErrNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("remindctl", flag.ExitOnError)
	dbPath := global.String("db", "./remindd.db", "path to the task database")
	global.Usage = usage
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage()
		return errors.New("missing command")
	}

	st, err := store.Open(store.Config{Path: *dbPath, BusyTimeout: 5 * time.Second}, logx.Nop())
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "add":
		return cmdAdd(ctx, st, cmdArgs)
	case "edit":
		return cmdEdit(ctx, st, cmdArgs)
	case "done":
		return cmdDone(ctx, st, cmdArgs)
	case "rm", "delete":
		return cmdDelete(ctx, st, cmdArgs)
	case "list", "ls":
		return cmdList(ctx, st, cmdArgs)
	case "export":
		return cmdExport(ctx, st, cmdArgs)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: remindctl [-db path] <command> [flags]

commands:
  add    -title T -date YYYY-MM-DD -time HH:MM [-note N] [-recur none|daily|weekly]
  edit   -id N [-title T] [-date D] [-time T] [-note N] [-recur R]
  done   -id N                 mark a task fired by hand
  rm     -id N                 delete a task (no error if absent)
  list   [-pending]            tasks ordered by date, time, id
  export [-o file.csv]         CSV dump of every task`)
}

func cmdAdd(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "task title (required)")
	date := fs.String("date", "", "due date YYYY-MM-DD (required)")
	tm := fs.String("time", "", "due time HH:MM (required)")
	note := fs.String("note", "", "optional note")
	recur := fs.String("recur", "none", "recurrence: none, daily or weekly")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rec, err := task.ParseRecurrence(*recur)
	if err != nil {
		return err
	}
	id, err := st.Insert(ctx, task.Task{
		Title:      *title,
		Date:       *date,
		Time:       *tm,
		Note:       *note,
		Recurrence: rec,
	})
	if err != nil {
		return err
	}
	fmt.Printf("added task %d: %s at %s %s\n", id, *title, *date, *tm)
	return nil
}

func cmdEdit(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.Int64("id", 0, "task id (required)")
	title := fs.String("title", "", "new title")
	date := fs.String("date", "", "new date")
	tm := fs.String("time", "", "new time")
	note := fs.String("note", "", "new note")
	recur := fs.String("recur", "", "new recurrence")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("edit: -id is required")
	}

	var f store.Fields
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			f.Title = title
		case "date":
			f.Date = date
		case "time":
			f.Time = tm
		case "note":
			f.Note = note
		case "recur":
			r := task.Recurrence(*recur)
			f.Recurrence = &r
		}
	})
	if err := st.Update(ctx, *id, f); err != nil {
		return err
	}
	fmt.Printf("updated task %d\n", *id)
	return nil
}

func cmdDone(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("done", flag.ExitOnError)
	id := fs.Int64("id", 0, "task id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("done: -id is required")
	}
	fired := true
	if err := st.Update(ctx, *id, store.Fields{Fired: &fired}); err != nil {
		return err
	}
	fmt.Printf("task %d marked done\n", *id)
	return nil
}

func cmdDelete(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.Int64("id", 0, "task id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("rm: -id is required")
	}
	if err := st.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("task %d deleted\n", *id)
	return nil
}

func cmdList(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	pending := fs.Bool("pending", false, "only tasks that have not fired")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tasks, err := st.List(ctx, store.ListFilter{PendingOnly: *pending})
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return nil
	}
	for _, t := range tasks {
		status := " "
		if t.Fired {
			status = "x"
		}
		line := fmt.Sprintf("[%s] %4d  %s %s  %s", status, t.ID, t.Date, t.Time, t.Title)
		if t.Recurrence != task.RecurNone {
			line += "  (" + string(t.Recurrence) + ")"
		}
		if t.Note != "" {
			line += "  # " + t.Note
		}
		fmt.Println(line)
	}
	return nil
}

func cmdExport(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return st.ExportCSV(ctx, w)
}
