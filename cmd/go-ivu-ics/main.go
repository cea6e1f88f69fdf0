package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/tartampluch/go-ivu-ics/internal/config"
	"github.com/tartampluch/go-ivu-ics/internal/engine"
	"github.com/tartampluch/go-ivu-ics/internal/messages"
	"github.com/tartampluch/go-ivu-ics/internal/schedule"
	"github.com/tartampluch/go-ivu-ics/internal/server"
)

// streams groups the process I/O so runs can be driven from tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// main is the application entry point.
// os.Exit() does not run defers, so runMain returns the exit code first.
func main() {
	os.Exit(runMain(os.Args, streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

// runMain manages argument parsing, logging and exit codes.
func runMain(argv []string, s streams) int {
	prog := filepath.Base(argv[0])

	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	args, err := parseArgs(argv[1:])
	if err != nil {
		printUsage(s.err, messages.New(args.lang), prog, err)
		return config.ExitCodeError
	}

	if args.showVersion {
		printVersion(s.out)
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	logCloser := setupLogging(args.debug, s.err)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	return execute(ctx, prog, args, s)
}

// execute runs one conversion (or the password setup) and returns the exit code.
func execute(ctx context.Context, prog string, args cliArgs, s streams) int {
	settings, err := config.LoadSettings(args.configPath)
	if err != nil {
		return fail(s.err, err)
	}

	lang := args.lang
	if lang == "" {
		lang = settings.Language
	}
	cat := messages.New(lang)

	user := args.user
	if user == "" {
		user = settings.User
	}

	if args.savePassword {
		return savePassword(s, user)
	}

	extractor, err := schedule.NewExtractor(settings.Timezone, settings.Selectors)
	if err != nil {
		return fail(s.err, err)
	}

	gen := &engine.Generator{
		Clock:        engine.RealClock{},
		Fetcher:      engine.NewHTTPFetcher(),
		Extractor:    extractor,
		CalendarName: settings.CalendarName,
	}

	cfg := engine.ConvertConfig{
		Inputs:  args.inputs,
		Month:   args.month,
		WebUser: user,
	}
	if hasRemote(args.inputs) {
		cfg.WebPass = engine.LookupPassword(user)
	}

	ics, count, err := gen.RunConvert(ctx, cfg)
	if err != nil {
		if errors.Is(err, engine.ErrUsage) {
			printUsage(s.err, cat, prog, err)
			return config.ExitCodeError
		}
		return fail(s.err, err)
	}

	if err := engine.WriteCalendar(args.output, ics); err != nil {
		return fail(s.err, err)
	}

	fmt.Fprintln(s.out, cat.EventsWritten(count, args.output))

	if args.serve != "" {
		srv := server.NewFeedServer(args.serve, filepath.Base(args.output))
		if err := srv.Serve(ctx, ics); err != nil {
			return fail(s.err, err)
		}
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// savePassword reads one line from stdin and stores it for user.
func savePassword(s streams, user string) int {
	line, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fail(s.err, fmt.Errorf("%s: %w", config.ErrPasswordStore, err))
	}
	if err := engine.StorePassword(user, strings.TrimRight(line, "\r\n")); err != nil {
		return fail(s.err, fmt.Errorf("%s: %w", config.ErrPasswordStore, err))
	}
	slog.Info(config.MsgPassStored,
		config.LogKeyComponent, config.CompKeyring,
		config.LogKeyUser, user,
	)
	return config.ExitCodeSuccess
}

func hasRemote(inputs []string) bool {
	for _, in := range inputs {
		if engine.IsRemote(in) {
			return true
		}
	}
	return false
}

// printUsage reports a usage error. The output-extension case gets its own
// sentence in front of the usage line; -h adds the flag list.
func printUsage(w io.Writer, cat *messages.Catalog, prog string, err error) {
	slog.Debug(config.ErrUsage,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyError, err,
	)
	if errors.Is(err, errOutputExt) {
		fmt.Fprintln(w, cat.OutputExt(prog))
		return
	}
	fmt.Fprintln(w, cat.Usage(prog))

	if errors.Is(err, flag.ErrHelp) {
		fs := newFlagSet(&cliArgs{})
		fs.SetOutput(w)
		fs.PrintDefaults()
	}
}

func fail(w io.Writer, err error) int {
	slog.Error(config.ErrAppFailed,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyError, err,
	)
	fmt.Fprintln(w, err)
	return config.ExitCodeError
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Debug(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
// The console only gets warnings unless debug is set; the log file in the
// user cache dir gets the same stream.
func setupLogging(debugMode bool, console io.Writer) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on each run to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(console, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelWarn
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
