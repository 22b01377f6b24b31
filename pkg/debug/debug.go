// Package debug builds the zerolog logger used by the bracketlens commands
// and servers.
package debug

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// DefaultTimeFormat is millisecond precision with no timezone.
const DefaultTimeFormat = "2006-01-02T15:04:05.000Z"

// Options controls NewLogger.
type Options struct {
	// Debug lowers the level to debug and adds the caller hook
	Debug bool
	// Color enables colored console output
	Color bool
	// JSON writes raw JSON lines instead of the console format
	JSON bool
	// TimeFormat overrides DefaultTimeFormat
	TimeFormat string
}

// NewLogger returns a logger writing to w.
func NewLogger(w io.Writer, opts Options) zerolog.Logger {
	out := w
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: w, NoColor: !opts.Color}
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).Hook(CustomTimeHook{Format: opts.TimeFormat})
	if opts.Debug {
		logger = logger.Hook(CustomCallerHook{WithColor: opts.Color && !opts.JSON})
	}
	return logger
}

// WithLogger attaches a new logger to ctx so zerolog.Ctx finds it.
func WithLogger(ctx context.Context, w io.Writer, opts Options) context.Context {
	return NewLogger(w, opts).WithContext(ctx)
}

// callerSkipFrames reads the event's unexported skip count so the caller hook
// reports the same frame zerolog would.
func callerSkipFrames(e *zerolog.Event) int {
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")
	if field.IsValid() && field.CanAddr() {
		return int(field.Int())
	}
	return 0
}

type CustomTimeHook struct {
	Format string
}

func (t CustomTimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := t.Format
	if format == "" {
		format = DefaultTimeFormat
	}
	e.Str(zerolog.TimestampFieldName, time.Now().UTC().Format(format))
}

type CustomCallerHook struct {
	WithColor bool
}

func (c CustomCallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(callerSkipFrames(e) + 3)
	if !ok {
		return
	}

	pkg := ""
	if fn := runtime.FuncForPC(pc); fn != nil {
		pkg, _ = GetPackageAndFuncFromFuncName(fn.Name())
	}

	e.Str(zerolog.CallerFieldName, FormatCaller(pkg, file, line, c.WithColor))
}

// GetPackageAndFuncFromFuncName splits a runtime function name such as
// "github.com/x/y/pkg.(*T).Method" into its package and function parts.
func GetPackageAndFuncFromFuncName(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}

	firstDot := strings.IndexByte(name[lastSlash:], '.')
	if firstDot < 0 {
		return name, ""
	}
	firstDot += lastSlash

	pkg = name[:firstDot]
	function = name[firstDot+1:]

	if before, after, found := strings.Cut(pkg, ".("); found {
		pkg = before
		function = "(" + after + "." + function
	}

	return pkg, function
}

// FormatCaller renders pkg:file.go:line.
func FormatCaller(pkg, path string, number int, colorize bool) string {
	p := FileNameOfPath(path)
	if colorize {
		p = color.New(color.Bold).Sprint(p)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", number)
		sep := color.New(color.Faint).Sprint(":")
		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, p, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, p, number)
}

func FileNameOfPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
