package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nick-dorsch/dolist/internal/config"
	"github.com/nick-dorsch/dolist/internal/mcp"
	"github.com/nick-dorsch/dolist/internal/server"
	"github.com/nick-dorsch/dolist/internal/ui"
	"github.com/nick-dorsch/dolist/pkg/models"
)

var (
	configPath   string
	dbPath       string
	dataFile     string
	snapshotPath string
	storageKind  string
	verbose      bool
)

// Swapped out in tests.
var (
	runMenu  = ui.RunMenu
	runBoard = ui.RunBoard
	serveMCP = mcp.Serve
)

func main() {
	if err := execute(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("dolist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", config.DefaultConfigFile, "Path to YAML config file")
	fs.StringVar(&dbPath, "db-path", "", "Path to SQLite database file (overrides config)")
	fs.StringVar(&dataFile, "data-file", "", "Path to JSON data file (overrides config)")
	fs.StringVar(&snapshotPath, "snapshot-path", "", "Path to auto-snapshot file for sqlite storage (overrides config)")
	fs.StringVar(&storageKind, "storage", "", "Storage backend: sqlite or json (overrides config)")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: dolist [flags] <command> [arguments]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Running `dolist` with no command opens the menu.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Commands:")
		fmt.Fprintln(stderr, "  init [dir]              Create .dolist/ with config and storage")
		fmt.Fprintln(stderr, "  add <title>             Add a task")
		fmt.Fprintln(stderr, "  list [-filter f]        List tasks (all, pending, completed)")
		fmt.Fprintln(stderr, "  toggle <id>             Flip a task between pending and completed")
		fmt.Fprintln(stderr, "  edit <id> <title>       Rename a task")
		fmt.Fprintln(stderr, "  delete <id>             Delete a task")
		fmt.Fprintln(stderr, "  clear-completed         Delete every completed task")
		fmt.Fprintln(stderr, "  stats                   Show task statistics")
		fmt.Fprintln(stderr, "  export <file>           Write tasks to a JSON snapshot")
		fmt.Fprintln(stderr, "  import <file>           Replace tasks with a JSON snapshot")
		fmt.Fprintln(stderr, "  tui                     Open the interactive board")
		fmt.Fprintln(stderr, "  web [-port p]           Serve the web UI and JSON API")
		fmt.Fprintln(stderr, "  mcp                     Serve MCP tools over stdio")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Task ids may be shortened to any unique prefix.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	var command string
	var rest []string
	if fs.NArg() == 0 {
		selected, err := runMenu()
		if err != nil {
			return fmt.Errorf("failed to run menu: %w", err)
		}
		if selected == "" {
			return nil
		}
		command = selected
	} else {
		command = fs.Arg(0)
		rest = fs.Args()[1:]
	}

	switch command {
	case "init":
		return runInit(rest)
	case "add":
		return runAdd(rest)
	case "list":
		return runList(rest)
	case "toggle":
		return runToggle(rest)
	case "edit":
		return runEdit(rest)
	case "delete":
		return runDelete(rest)
	case "clear-completed":
		return runClearCompleted(rest)
	case "stats":
		return runStats(rest)
	case "export":
		return runExport(rest)
	case "import":
		return runImport(rest)
	case "tui":
		return runTUI(rest)
	case "web":
		return runWeb(rest)
	case "mcp":
		return runMCP(rest)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runInit(args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	dolistDir := filepath.Join(targetDir, config.DefaultDir)
	if err := os.MkdirAll(dolistDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", config.DefaultDir, err)
	}
	fmt.Printf("✓ Created %s/ directory\n", config.DefaultDir)

	gitignorePath := filepath.Join(dolistDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("dolist.db*\n*.lock\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Printf("✓ Created %s/.gitignore\n", config.DefaultDir)

	// Defaults are rooted in the target directory unless overridden by flags.
	cfg := config.Defaults()
	cfg.Storage.DBPath = filepath.Join(dolistDir, "dolist.db")
	cfg.Storage.DataFile = filepath.Join(dolistDir, "tasks.json")
	cfg.Storage.SnapshotPath = filepath.Join(dolistDir, "snapshot.json")
	applyFlags(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return err
	}

	cfgFile := filepath.Join(dolistDir, "config.yaml")
	if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(cfgFile, relativeTo(cfg, targetDir)); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("✓ Created %s\n", cfgFile)
	}

	a, err := openAppWith(&cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	fmt.Printf("✓ Initialized %s storage at %s\n", cfg.Storage.Backend, cfg.Storage.StoragePath())

	ctx := context.Background()
	snapshot := cfg.Storage.SnapshotPath
	if _, err := os.Stat(snapshot); err == nil && len(a.store.Tasks()) == 0 {
		if err := a.importSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to import snapshot: %w", err)
		}
		fmt.Printf("✓ Imported %d tasks from %s\n", len(a.store.Tasks()), snapshot)
	}
	return nil
}

func runAdd(args []string) error {
	title := strings.Join(args, " ")
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.Add(context.Background(), title)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Added %s %s\n", shortID(t.ID), t.Title)
	return nil
}

func runList(args []string) error {
	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	filterFlag := listFlags.String("filter", "all", "Filter: all, pending, completed")
	if err := listFlags.Parse(args); err != nil {
		return err
	}
	filter, err := models.ParseFilter(*filterFlag)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	visible := a.store.Filter(filter)
	if len(visible) == 0 {
		heading, hint := filter.EmptyState()
		fmt.Println(heading)
		fmt.Println(hint)
		return nil
	}

	fmt.Printf("%-10s %-6s %-12s %s\n", "ID", "DONE", "CREATED", "TITLE")
	fmt.Println("----------------------------------------------------------------------")
	for _, t := range visible {
		done := "[ ]"
		if t.Completed {
			done = "[x]"
		}
		fmt.Printf("%-10s %-6s %-12s %s\n", shortID(t.ID), done, t.CreatedAt.Local().Format("Jan 2, 2006"), t.Title)
	}
	return nil
}

func runToggle(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dolist toggle <id>")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.store.Resolve(args[0])
	if err != nil {
		return err
	}
	t, err := a.store.Toggle(context.Background(), id)
	if err != nil {
		return err
	}
	state := "pending"
	if t.Completed {
		state = "completed"
	}
	fmt.Printf("✓ Marked %s %s as %s\n", shortID(t.ID), t.Title, state)
	return nil
}

func runEdit(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: dolist edit <id> <title>")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.store.Resolve(args[0])
	if err != nil {
		return err
	}
	t, err := a.store.Update(context.Background(), id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("✓ Updated %s %s\n", shortID(t.ID), t.Title)
	return nil
}

func runDelete(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dolist delete <id>")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.store.Resolve(args[0])
	if err != nil {
		return err
	}
	t, _ := a.store.Get(id)
	if err := a.store.Delete(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted %s %s\n", shortID(t.ID), t.Title)
	return nil
}

func runClearCompleted(args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.store.ClearCompleted(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("✓ Removed %d completed task(s)\n", n)
	return nil
}

func runStats(args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.store.Stats()
	fmt.Println("Do List Status")
	fmt.Println("==============")
	fmt.Printf("Total Tasks:     %d\n", stats.Total)
	fmt.Printf("Completed:       %d (%d%%)\n", stats.Completed, stats.CompletionRate())
	fmt.Printf("Pending:         %d\n", stats.Pending)
	fmt.Printf("Completed Today: %d\n", stats.CompletedToday)
	return nil
}

func runExport(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dolist export <file>")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.snapshots.ExportSnapshot(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Exported %d tasks to %s\n", len(a.store.Tasks()), args[0])
	return nil
}

func runImport(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dolist import <file>")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.importSnapshot(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d tasks from %s\n", len(a.store.Tasks()), args[0])
	return nil
}

func runTUI(args []string) error {
	relay := ui.NewRelay()
	a, err := openApp(relay)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.watch()
	return runBoard(ctx, a.store, relay)
}

func runWeb(args []string) error {
	webFlags := flag.NewFlagSet("web", flag.ContinueOnError)
	port := webFlags.String("port", "", "Port to listen on (overrides config)")
	if err := webFlags.Parse(args); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if *port == "" {
		*port = a.cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.watch()
	srv := server.NewServer(a.store, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf(":%s", *port))
	}()
	fmt.Printf("Serving Do List on http://localhost:%s\n", *port)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}

func runMCP(args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.watch()
	return serveMCP(mcp.NewServer(a.store))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// relativeTo rewrites storage paths under dir so the saved config works when
// dolist is run from dir.
func relativeTo(cfg config.Config, dir string) config.Config {
	rel := func(p string) string {
		if r, err := filepath.Rel(dir, p); err == nil && !strings.HasPrefix(r, "..") {
			return r
		}
		return p
	}
	cfg.Storage.DBPath = rel(cfg.Storage.DBPath)
	cfg.Storage.DataFile = rel(cfg.Storage.DataFile)
	cfg.Storage.SnapshotPath = rel(cfg.Storage.SnapshotPath)
	return cfg
}
