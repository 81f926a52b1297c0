package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"syntaxlab/labs-go/pkg/driver"
	"syntaxlab/labs-go/pkg/interpreter"
)

const cliToolVersion = "syntaxlab 0.1.0-dev"

// exitPanicked matches the status of a program that panicked.
const exitPanicked = 101

type globalOptions struct {
	verbose      bool
	color        driver.ColorMode
	manifestPath string
}

// session is the state shared by every subcommand of one invocation.
type session struct {
	manifest *driver.Manifest
	log      *zap.Logger
	palette  palette
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	}

	sess, code := openSession(opts)
	if sess == nil {
		return code
	}
	defer sess.close()

	switch remaining[0] {
	case "list":
		return runList(sess, remaining[1:])
	case "run":
		return runLessons(sess, remaining[1:])
	case "verify":
		return runVerify(sess, remaining[1:])
	case "render":
		return runRender(sess, remaining[1:])
	case "check":
		return runCheck(sess, remaining[1:])
	case "playground":
		return runPlayground(sess, remaining[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", remaining[0])
		printUsage()
		return 1
	}
}

func parseGlobalFlags(args []string) (globalOptions, []string, error) {
	var opts globalOptions
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(remaining) > 0 || arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}
		switch {
		case arg == "--verbose" || arg == "-v":
			opts.verbose = true
		case arg == "--color" || arg == "--manifest":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("%s expects a value", arg)
			}
			if err := opts.set(arg, args[i+1]); err != nil {
				return opts, nil, err
			}
			i++
		case strings.HasPrefix(arg, "--color="):
			if err := opts.set("--color", strings.TrimPrefix(arg, "--color=")); err != nil {
				return opts, nil, err
			}
		case strings.HasPrefix(arg, "--manifest="):
			if err := opts.set("--manifest", strings.TrimPrefix(arg, "--manifest=")); err != nil {
				return opts, nil, err
			}
		default:
			remaining = append(remaining, arg)
		}
	}
	return opts, remaining, nil
}

func (o *globalOptions) set(flag, value string) error {
	switch flag {
	case "--color":
		mode := driver.ColorMode(strings.ToLower(strings.TrimSpace(value)))
		if !mode.IsValid() {
			return fmt.Errorf("--color must be auto, always or never, got %q", value)
		}
		o.color = mode
	case "--manifest":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("--manifest expects a path")
		}
		o.manifestPath = value
	}
	return nil
}

func openSession(opts globalOptions) (*session, int) {
	manifest, err := loadManifest(opts.manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return nil, 1
	}
	if opts.color != "" {
		manifest.Color = opts.color
	}
	log, err := newLogger(manifest, opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		return nil, 1
	}
	interpreter.SetLogger(log)
	if manifest.Path != "" {
		log.Debug("manifest loaded", zap.String("path", manifest.Path), zap.String("name", manifest.Name))
	}
	return &session{
		manifest: manifest,
		log:      log,
		palette:  newPalette(os.Stdout, manifest.Color),
	}, 0
}

func (s *session) close() {
	_ = s.log.Sync()
	interpreter.SetLogger(nil)
}

func loadManifest(path string) (*driver.Manifest, error) {
	if path != "" {
		return driver.LoadManifest(path)
	}
	manifest, err := driver.LoadManifestFrom(".")
	if errors.Is(err, driver.ErrManifestNotFound) {
		return driver.Default(), nil
	}
	return manifest, err
}

// newLogger builds a console logger on stderr when --verbose is given or the
// manifest sets a level. Otherwise logging is discarded.
func newLogger(manifest *driver.Manifest, verbose bool) (*zap.Logger, error) {
	if !verbose && manifest.LogLevel == "" {
		return zap.NewNop(), nil
	}
	level := manifest.Level(zapcore.InfoLevel)
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  syntaxlab [--verbose] [--color=auto|always|never] [--manifest=<file>] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  list                          list the lessons")
	fmt.Fprintln(os.Stderr, "  run <lesson>... | --all       run lessons and print their output")
	fmt.Fprintln(os.Stderr, "  verify                        run lessons and compare with the expected output")
	fmt.Fprintln(os.Stderr, "  render <template> [arg|name=arg]...")
	fmt.Fprintln(os.Stderr, "                                render one template with literal arguments")
	fmt.Fprintln(os.Stderr, "  check [path...]               check format calls in Go sources")
	fmt.Fprintln(os.Stderr, "  playground                    render templates interactively")
	fmt.Fprintln(os.Stderr, "  version                       print the version")
}
