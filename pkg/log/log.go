// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/kwanter/formfix/pkg/checklist"
	"github.com/kwanter/formfix/pkg/rule"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	lineIndent   = 4  // spaces to indent rule and check entries
	nameWidth    = 38 // width for rule names and check labels
	methodWidth  = 10 // width for the method column
	countWidth   = 6  // width for the replacement count
	checkColumns = 9  // width for PASS/FAIL
)

// 🎯 Logger writes human readable lines to the console and mirrors them to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatRule formats a rule outcome for display
func (l *Logger) formatRule(o rule.Outcome) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case o.Skipped:
		symbol = '-'
		symbolColor = color.FgYellow
	case o.Applied && o.Method == rule.MethodFallback:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case o.Applied:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '•'
		symbolColor = color.FgYellow
	}

	method := string(o.Method)
	if o.Skipped {
		method = "skipped"
	}

	var methodColor color.Attribute
	switch o.Method {
	case rule.MethodPrimary:
		methodColor = color.FgCyan
	case rule.MethodFallback:
		methodColor = color.FgBlue
	default:
		methodColor = color.FgYellow
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", lineIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, o.RuleName),
		color.New(methodColor).Sprint(fmt.Sprintf("%-*s", methodWidth, method)),
		fmt.Sprintf("%*d", countWidth, o.Replacements))
}

// 📝 formatCheck formats a checklist result for display
func (l *Logger) formatCheck(r checklist.Result) string {
	symbol, verdict, c := '✓', "PASS", color.FgGreen
	if !r.Passed {
		symbol, verdict, c = '✗', "FAIL", color.FgRed
	}

	expect := "present"
	if !r.Item.ExpectPresent {
		expect = "absent"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", lineIndent, ""),
		color.New(c).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, r.Item.Label),
		color.New(c).Sprint(fmt.Sprintf("%-*s", checkColumns, verdict)),
		color.New(color.Faint).Sprint(expect+" "+r.Item.Fragment))
}

// 📝 LogRule logs a rule outcome
func (l *Logger) LogRule(ctx context.Context, o rule.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatRule(o))

	l.zlog.Info().
		Str("rule", o.RuleName).
		Bool("applied", o.Applied).
		Str("method", string(o.Method)).
		Bool("skipped", o.Skipped).
		Int("replacements", o.Replacements).
		Msg("rule outcome")
}

// 📝 LogCheck logs a checklist result
func (l *Logger) LogCheck(ctx context.Context, r checklist.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatCheck(r))

	l.zlog.Info().
		Str("check", r.Item.Label).
		Str("fragment", r.Item.Fragment).
		Bool("expect_present", r.Item.ExpectPresent).
		Bool("passed", r.Passed).
		Msg("checklist result")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("formfix")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Section logs a section title
func (l *Logger) Section(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", color.New(color.FgMagenta).Sprint("◆"), color.New(color.Bold).Sprint(title))
}

// level pairs a console prefix with its color and zerolog level
type level struct {
	prefix string
	color  color.Attribute
	zlevel zerolog.Level
}

var (
	levelSuccess = level{"✅ ", color.FgGreen, zerolog.InfoLevel}
	levelWarning = level{"⚠️  ", color.FgYellow, zerolog.WarnLevel}
	levelError   = level{"❌ ", color.FgRed, zerolog.ErrorLevel}
	levelInfo    = level{"ℹ️  ", color.FgCyan, zerolog.InfoLevel}
)

func (l *Logger) emit(lv level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s%s\n", lv.prefix, color.New(lv.color).Sprint(msg))
	l.zlog.WithLevel(lv.zlevel).Msg(msg)
}

func (l *Logger) Success(msg string) { l.emit(levelSuccess, msg) }
func (l *Logger) Warning(msg string) { l.emit(levelWarning, msg) }
func (l *Logger) Error(msg string)   { l.emit(levelError, msg) }
func (l *Logger) Info(msg string)    { l.emit(levelInfo, msg) }

// Formatted variants.
func (l *Logger) Infof(format string, args ...any)    { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warningf(format string, args ...any) { l.Warning(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any)   { l.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Successf(format string, args ...any) { l.Success(fmt.Sprintf(format, args...)) }

// 📝 Raw writes text as-is to the console
func (l *Logger) Raw(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, text)
}
