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
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for filename
	outcomeWidth = 15 // Width for outcome text
)

// 🎯 FileOutcome represents one file's migration result for logging
type FileOutcome struct {
	Path          string // File path
	Outcome       string // rewritten/unchanged/rejected/failed
	Substitutions int    // Number of substitutions written
	Passes        int    // Coordinator passes consumed
	Detail        string // Rejection reason or error text
}

// 📦 RunOperation represents one migration run for logging
type RunOperation struct {
	Catalog string // Catalog path
	Mode    string // Pass mode (single-pass/fixpoint)
	Target  string // What is being migrated (glob or directory)
	Files   int    // Number of files in the run
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentRun *RunOperation
	outcomes   []FileOutcome
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
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

// 📝 formatFileOutcome formats a file outcome for display
func (l *Logger) formatFileOutcome(op FileOutcome) string {
	// Determine symbol and color
	var symbol rune
	var symbolColor color.Attribute
	switch op.Outcome {
	case "rewritten":
		symbol = '✓'
		symbolColor = color.FgGreen
	case "rejected":
		symbol = '!'
		symbolColor = color.FgYellow
	case "failed":
		symbol = '✗'
		symbolColor = color.FgRed
	case "unchanged":
		symbol = '-'
		symbolColor = color.FgHiBlack
	default:
		symbol = '?'
		symbolColor = color.FgYellow
	}

	// Format outcome with color
	var outcomeColor color.Attribute
	switch op.Outcome {
	case "rewritten":
		outcomeColor = color.FgGreen
	case "rejected":
		outcomeColor = color.FgYellow
	case "failed":
		outcomeColor = color.FgRed
	default:
		outcomeColor = color.FgHiBlack
	}

	detail := op.Detail
	if detail == "" && op.Outcome == "rewritten" {
		detail = fmt.Sprintf("%d substitutions / %d passes", op.Substitutions, op.Passes)
	}

	// Build the line
	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(outcomeColor).Sprint(fmt.Sprintf("%-*s", outcomeWidth, op.Outcome)),
		detail)
}

// 📝 LogFileOutcome logs one file's migration result
func (l *Logger) LogFileOutcome(ctx context.Context, op FileOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Add to outcomes list
	l.outcomes = append(l.outcomes, op)

	// Format and print
	fmt.Fprintln(l.console, l.formatFileOutcome(op))

	// Log to zerolog
	l.zlog.Info().
		Str("file", op.Path).
		Str("outcome", op.Outcome).
		Int("substitutions", op.Substitutions).
		Int("passes", op.Passes).
		Str("detail", op.Detail).
		Msg("file outcome")
}

// 📝 StartRun starts a new migration run
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRun = &op
	l.outcomes = nil

	// Print run header
	fmt.Fprintf(l.console, "[migrating %s]\n",
		color.New(color.FgCyan).Sprint(op.Target))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Catalog),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Mode))

	// Log to zerolog
	l.zlog.Info().
		Str("catalog", op.Catalog).
		Str("mode", op.Mode).
		Str("target", op.Target).
		Int("files", op.Files).
		Msg("starting migration run")
}

// 📝 EndRun ends the current migration run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentRun == nil {
		return
	}

	// Log summary
	l.zlog.Info().
		Str("catalog", l.currentRun.Catalog).
		Int("files", len(l.outcomes)).
		Msg("migration run complete")

	l.currentRun = nil
	l.outcomes = nil
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
	nameText := color.New(color.Bold, color.FgCyan).Sprint("rewriterc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
