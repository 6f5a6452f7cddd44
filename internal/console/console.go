// Package console is a line-oriented terminal front end for the book list.
// It drives a booklist.Presenter and plays the external collaborators the
// presenter needs: add and edit screens, a yes/no prompt, and notices.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/shelf/internal/booklist"
	"github.com/starford/shelf/internal/bookservice"
	"github.com/starford/shelf/internal/catalog"
)

const helpText = `Commands:
  list            show all books
  select N        select book N for edit/delete (0 clears)
  add             add a book
  edit            edit the selected book
  delete          delete the selected book
  rm N            delete book N
  refresh         reload from the store
  help            show this help
  quit            leave
`

// Console reads commands from in and writes the screen to out.
// It is single-threaded: each command runs to completion before the next
// line is read.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	svc    *bookservice.Service
	list   *booklist.Presenter
	logger *slog.Logger
}

// New creates a console over the given store.
func New(db catalog.BookStore, svc *bookservice.Service, in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	c := &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		svc:    svc,
		logger: logger,
	}
	c.list = booklist.New(db, c, c)
	return c
}

// Presenter exposes the list the console drives.
func (c *Console) Presenter() *booklist.Presenter {
	return c.list
}

// Run loads the list and processes commands until quit, end of input, or
// ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	if err := c.list.Refresh(); err != nil {
		c.logger.Warn("initial load failed", slog.String("error", err.Error()))
	}
	c.render()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, ok := c.prompt("> ")
		if !ok {
			return c.in.Err()
		}
		if quit := c.exec(ctx, line); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the user asked to quit.
func (c *Console) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "":
		return false
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(c.out, helpText)
		return false
	case "list", "ls":
		c.render()
		return false
	case "refresh":
		err = c.list.Refresh()
	case "select", "sel":
		n, ok := c.position(arg)
		if !ok {
			return false
		}
		if err := c.list.Select(n); err != nil {
			c.Notify("No book at that position")
		}
		c.render()
		return false
	case "add":
		err = c.list.RequestAdd(ctx, c)
	case "edit":
		err = c.list.RequestEdit(ctx, c)
	case "delete", "del":
		err = c.list.RequestDeleteSelected(ctx)
	case "rm":
		n, ok := c.position(arg)
		if !ok || n == booklist.NoSelection {
			c.Notify("Usage: rm N")
			return false
		}
		err = c.list.RequestDeleteAt(ctx, n)
		if errors.Is(err, booklist.ErrInvalidPosition) {
			c.Notify("No book at that position")
		}
	default:
		c.Notify(fmt.Sprintf("Unknown command %q, type help", cmd))
		return false
	}

	if err != nil {
		// The presenter already told the user.
		c.logger.Debug("command failed", slog.String("command", cmd), slog.String("error", err.Error()))
	}
	c.render()
	return false
}

// position parses a 1-based list number into a presenter position.
// "0" maps to booklist.NoSelection.
func (c *Console) position(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		c.Notify("Expected a book number")
		return 0, false
	}
	return n - 1, true
}

func (c *Console) render() {
	entries := c.list.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "(no books)")
		return
	}
	sel := c.list.Selected()
	for i, e := range entries {
		marker := " "
		if i == sel {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %3d. %s\n", marker, i+1, e.Summary)
	}
}

// prompt writes label and reads one line. ok is false at end of input.
func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		fmt.Fprintln(c.out)
		return "", false
	}
	return c.in.Text(), true
}

// Notify implements booklist.Notifier.
func (c *Console) Notify(msg string) {
	fmt.Fprintf(c.out, "! %s\n", msg)
}

// Confirm implements booklist.Confirmer. Anything but y/yes declines.
func (c *Console) Confirm(title, message string) bool {
	fmt.Fprintf(c.out, "%s\n%s\n", title, message)
	answer, ok := c.prompt("[y/N] ")
	return ok && yes(answer)
}

// Ask shows title and message on out and reads one answer from in. Only
// y/yes confirms; end of input declines.
func Ask(in io.Reader, out io.Writer, title, message string) bool {
	fmt.Fprintf(out, "%s\n%s\n[y/N] ", title, message)
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		fmt.Fprintln(out)
		return false
	}
	return yes(sc.Text())
}

func yes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Add implements booklist.Adder.
func (c *Console) Add(ctx context.Context) (bool, error) {
	var in bookservice.Input
	var ok bool
	if in.Title, ok = c.prompt("Title: "); !ok {
		return false, nil
	}
	if in.Author, ok = c.prompt("Author: "); !ok {
		return false, nil
	}
	if in.Tags, ok = c.prompt("Tags: "); !ok {
		return false, nil
	}
	if _, err := c.svc.CreateBook(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

// Edit implements booklist.Editor. An empty answer keeps the current value;
// a single "-" clears the tags.
func (c *Console) Edit(ctx context.Context, id int64) (bool, error) {
	cur, err := c.svc.GetBook(ctx, id)
	if err != nil {
		return false, err
	}
	in := bookservice.Input{Title: cur.Title, Author: cur.Author, Tags: cur.Tags}

	fields := []struct {
		label string
		dst   *string
	}{
		{"Title", &in.Title},
		{"Author", &in.Author},
		{"Tags", &in.Tags},
	}
	for _, f := range fields {
		answer, ok := c.prompt(fmt.Sprintf("%s [%s]: ", f.label, *f.dst))
		if !ok {
			return false, nil
		}
		answer = strings.TrimSpace(answer)
		switch {
		case answer == "":
		case answer == "-" && f.dst == &in.Tags:
			*f.dst = ""
		default:
			*f.dst = answer
		}
	}

	if in.Title == cur.Title && in.Author == cur.Author && in.Tags == cur.Tags {
		return false, nil
	}
	if _, err := c.svc.UpdateBook(ctx, id, in, cur.Checksum); err != nil {
		return false, err
	}
	return true, nil
}
