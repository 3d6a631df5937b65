package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/homebite/orderdesk/cmd/orderdesk/cli"
	"github.com/homebite/orderdesk/internal/app"
	"github.com/homebite/orderdesk/internal/auth"
)

const usage = `usage: orderdesk <command> [flags]

commands:
  serve          run the HTTP API (default)
  import         upload an order sheet to a running server, or -preview it locally
  hash-password  print a bcrypt hash for ADMIN_PASSWORD_HASH
  jobs           trigger a background job or inspect the queue
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var code int
	switch cmd {
	case "serve":
		code = serve(ctx)
	case "import":
		code = runImport(ctx, args)
	case "hash-password":
		code = hashPassword(args)
	case "jobs":
		code = runJobs(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		code = 2
	}
	stop()
	os.Exit(code)
}

func serve(ctx context.Context) int {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return 0
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return 1
	}
	logger := app.NewLogger(cfg)

	srv, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build server", slog.Any("error", err))
		return 1
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		return 1
	}
	logger.Info("server shut down")
	return 0
}

func runImport(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	opts := cli.ImportOptions{Stdout: os.Stdout, Stderr: os.Stderr}
	fs.StringVar(&opts.URL, "url", envOr("ORDERDESK_URL", "http://localhost:8080"), "base URL of the orderdesk server")
	fs.StringVar(&opts.Token, "token", os.Getenv("ORDERDESK_TOKEN"), "bearer token from /api/auth/login")
	fs.BoolVar(&opts.SkipDuplicates, "skip-duplicates", true, "skip rows matching an existing order's address and day")
	fs.BoolVar(&opts.UpdateExisting, "update-existing", false, "overwrite orders whose Order ID already exists")
	fs.BoolVar(&opts.Preview, "preview", false, "parse and check the file locally without uploading")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: orderdesk import [flags] <file.csv|file.xlsx>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	opts.File = fs.Arg(0)
	return cli.ImportCommand(ctx, opts)
}

func hashPassword(args []string) int {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	password := fs.String("password", "", "password to hash; read from stdin when empty")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "hash-password: %v\n", err)
			return 1
		}
		*password = strings.TrimRight(line, "\r\n")
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash-password: %v\n", err)
		return 1
	}
	fmt.Println(hash)
	return 0
}

func runJobs(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	redisAddr := fs.String("redis", envOr("REDIS_ADDR", "localhost:6379"), "Redis address of the job queue")
	size := fs.Int("size", 10, "page size for scheduled")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: orderdesk jobs [flags] trigger <task> | stats | scheduled")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	jobsCLI := cli.NewJobsCLI(*redisAddr)
	defer func() {
		if err := jobsCLI.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "jobs: close: %v\n", err)
		}
	}()

	switch fs.Arg(0) {
	case "trigger":
		if fs.NArg() != 2 {
			fs.Usage()
			return 2
		}
		info, err := jobsCLI.Trigger(ctx, fs.Arg(1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
	case "scheduled":
		tasks, err := jobsCLI.ListScheduled(ctx, *size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		for _, task := range tasks {
			fmt.Printf("%s\t%s\t%s\n", task.ID, task.Type, task.NextProcessAt.Format("2006-01-02 15:04:05"))
		}
	default:
		fmt.Fprintf(os.Stderr, "jobs: unknown action %q\n", fs.Arg(0))
		return 2
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
