package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-isatty"
	_ "modernc.org/sqlite"

	"github.com/reoring/grape"
	"github.com/reoring/grape/i18n"
	"github.com/reoring/grape/internal/config"
	"github.com/reoring/grape/internal/logger"
	"github.com/reoring/grape/probe"
	"github.com/reoring/grape/schemafile"
	"github.com/reoring/grape/store"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "validate":
		return validateCmd(ctx, args[1:], stdin, stdout, stderr)
	default:
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "grape CLI\n\nUsage:\n  grape validate -schema schema.yaml -input data.json [-json] [-color auto|always|never]\n\nNotes:\n  - -input - reads the document from stdin; .yaml/.yml inputs are read as YAML.\n  - Settings come from GRAPE_* environment variables (GRAPE_DB_DSN enables unique/exists rules).\n  - Exit status is 1 when the input is invalid and 2 on usage or configuration errors.")
}

func validateCmd(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath, inputPath, colorMode string
	var asJSON bool
	fs.StringVar(&schemaPath, "schema", "", "schema document (YAML or JSON)")
	fs.StringVar(&inputPath, "input", "", "input document, - for stdin")
	fs.BoolVar(&asJSON, "json", false, "print the result as JSON")
	fs.StringVar(&colorMode, "color", "auto", "colorize the report: auto, always or never")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if schemaPath == "" || inputPath == "" {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return failf(stderr, "config: %v", err)
	}
	log := logger.NewLogger("grape", cfg.Level(), stderr)
	i18n.SetLanguage(cfg.Lang)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return failf(stderr, "database: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	var storeOpts []store.Option
	if cfg.Dollar() {
		storeOpts = append(storeOpts, store.Dollar())
	}
	reg := schemafile.NewRegistry(
		schemafile.StoreDefaults(storeOpts...),
		schemafile.ProbeDefaults(probe.WithTimeout(cfg.ProbeTimeout)),
	)
	schema, err := schemafile.LoadFile(schemaPath, reg)
	if err != nil {
		return failf(stderr, "schema: %v", err)
	}

	input, err := readInput(inputPath, stdin, cfg, log)
	if err != nil {
		return failf(stderr, "input: %v", err)
	}

	opts := []grape.Option{
		grape.WithLogger(log.Named("engine").Logger),
		grape.WithBools(cfg.Bools()),
	}
	if db != nil {
		opts = append(opts, grape.WithResource(db))
	}
	res, err := schema.Validate(ctx, input, opts...)
	if err != nil {
		return failf(stderr, "%v", err)
	}

	if asJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return failf(stderr, "encode: %v", err)
		}
		fmt.Fprintln(stdout, string(out))
	} else if err := report(stdout, res, useColor(colorMode, stdout)); err != nil {
		return failf(stderr, "report: %v", err)
	}
	if res.Failed() {
		return exitInvalid
	}
	return exitOK
}

func failf(w io.Writer, format string, a ...any) int {
	fmt.Fprintf(w, "grape: "+format+"\n", a...)
	return exitUsage
}

// openDB opens the configured database, or returns nil when no DSN is set.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.DB.DSN == "" {
		return nil, nil
	}
	db, err := sql.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func readInput(path string, stdin io.Reader, cfg *config.Config, log *logger.Logger) (grape.Value, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return grape.Value{}, err
		}
		defer f.Close()
		r = f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return grape.Value{}, err
		}
		return grape.ParseYAML(data)
	}
	return grape.DecodeJSON(r, cfg.DecodeOptions(func(at, message string) {
		log.Warn().Str("path", at).Msg(message)
	})...)
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func report(w io.Writer, res *grape.Result, colored bool) error {
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	path := color.New(color.FgYellow)
	rule := color.New(color.Faint)
	for _, c := range []*color.Color{ok, bad, path, rule} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if res.Passes() {
		ok.Fprintln(w, "valid")
		out, err := json.MarshalIndent(res.Sanitized(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	msgs := res.Messages()
	bad.Fprintf(w, "invalid: %d error(s)\n", len(msgs))
	for _, p := range msgs.Paths() {
		m := msgs[p]
		fmt.Fprintf(w, "  %s  %s %s\n", path.Sprint(p), m.Message, rule.Sprintf("(%s)", m.Rule))
	}
	return nil
}
