package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/shelf/internal"
	"github.com/starford/shelf/internal/bookfile"
	"github.com/starford/shelf/internal/booklist"
	"github.com/starford/shelf/internal/bookservice"
	"github.com/starford/shelf/internal/console"
	pkgconfig "github.com/starford/shelf/pkg/config"
)

var version = "dev"

// options loads the config named by --config and turns the root flags into
// application options. Extra options are appended last.
func options(cmd *cli.Command, extra ...internal.Option) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}
	if db := cmd.String("db"); db != "" {
		opts = append(opts, internal.WithDBPath(db))
	}
	return append(opts, extra...), nil
}

// exec runs fn against the book service. Logs go to stderr so command output
// stays clean on stdout.
func exec(ctx context.Context, cmd *cli.Command, fn func(context.Context, *bookservice.Service) error) error {
	opts, err := options(cmd, internal.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	return internal.Exec(ctx, fn, opts...)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func browse(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd, internal.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	return internal.Browse(ctx, opts...)
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd, internal.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func add(ctx context.Context, cmd *cli.Command) error {
	in := bookservice.Input{
		Title:  cmd.String("title"),
		Author: cmd.String("author"),
		Tags:   cmd.String("tags"),
	}
	return exec(ctx, cmd, func(ctx context.Context, svc *bookservice.Service) error {
		b, err := svc.CreateBook(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "added %d: %s\n", b.ID, b.Summary())
		return nil
	})
}

func list(ctx context.Context, cmd *cli.Command) error {
	return exec(ctx, cmd, func(ctx context.Context, svc *bookservice.Service) error {
		books, err := svc.ListBooks(ctx)
		if err != nil {
			return err
		}
		for _, b := range books {
			fmt.Fprintf(os.Stdout, "%4d  %s\n", b.ID, b.Summary())
		}
		return nil
	})
}

func remove(ctx context.Context, cmd *cli.Command) error {
	id := int64(cmd.Int("id"))
	title := cmd.String("title")
	if (id > 0) == (title != "") {
		return errors.New("delete: pass exactly one of --id or --title")
	}
	confirm := func(heading, message string) bool {
		return console.Ask(os.Stdin, os.Stderr, heading, message)
	}
	if cmd.Bool("yes") {
		confirm = nil
	}
	return exec(ctx, cmd, func(ctx context.Context, svc *bookservice.Service) error {
		return deleteBooks(ctx, svc, os.Stdout, confirm, id, title)
	})
}

// deleteBooks removes the book with id, or every book titled title, after
// confirm agrees. A nil confirm skips the question.
func deleteBooks(ctx context.Context, svc *bookservice.Service, out io.Writer, confirm func(heading, message string) bool, id int64, title string) error {
	if id > 0 {
		b, err := svc.GetBook(ctx, id)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Are you sure you want to delete the book: %s?", b.Title)
		if confirm != nil && !confirm(booklist.ConfirmDeleteTitle, msg) {
			fmt.Fprintln(out, "cancelled")
			return nil
		}
		if err := svc.DeleteBook(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %d\n", id)
		return nil
	}

	msg := fmt.Sprintf("Are you sure you want to delete every book titled %q?", title)
	if confirm != nil && !confirm(booklist.ConfirmDeleteTitle, msg) {
		fmt.Fprintln(out, "cancelled")
		return nil
	}
	n, err := svc.DeleteByTitle(ctx, title)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %d book(s) titled %q\n", n, title)
	return nil
}

func importBooks(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("import: FILE is required")
	}
	books, err := bookfile.ReadFile(path)
	if err != nil {
		return err
	}
	in := make([]bookservice.Input, len(books))
	for i, b := range books {
		in[i] = bookservice.Input{Title: b.Title, Author: b.Author, Tags: b.Tags}
	}
	return exec(ctx, cmd, func(ctx context.Context, svc *bookservice.Service) error {
		ids, err := svc.Import(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "imported %d book(s)\n", len(ids))
		return nil
	})
}

func exportBooks(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("export: FILE is required")
	}
	return exec(ctx, cmd, func(ctx context.Context, svc *bookservice.Service) error {
		books, err := svc.Export(ctx)
		if err != nil {
			return err
		}
		if err := bookfile.WriteFile(path, books); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "exported %d book(s) to %s\n", len(books), path)
		return nil
	})
}

func main() {
	cmd := &cli.Command{
		Name:    "shelf",
		Usage:   "Personal library tracker backed by SQLite",
		Version: version,
		Action:  browse,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the SQLite database (overrides sqlite.path)",
				Sources: cli.EnvVars("SHELF_DB"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live events",
				Action: serve,
			},
			{
				Name:   "browse",
				Usage:  "Browse and edit the library in the terminal",
				Action: browse,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
			{
				Name:   "add",
				Usage:  "Add a book",
				Action: add,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
					&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Required: true},
					&cli.StringFlag{Name: "tags"},
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List all books",
				Action:  list,
			},
			{
				Name:   "delete",
				Usage:  "Delete a book by id, or every book with a title",
				Action: remove,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id"},
					&cli.StringFlag{Name: "title"},
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
			},
			{
				Name:      "import",
				Usage:     "Add every book from a YAML file",
				ArgsUsage: "FILE",
				Action:    importBooks,
			},
			{
				Name:      "export",
				Usage:     "Write all books to a YAML file",
				ArgsUsage: "FILE",
				Action:    exportBooks,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
