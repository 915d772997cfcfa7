// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides contextual, leveled logging on top of the go-ethereum slog handlers.
package log

import (
	"io"
	"log/slog"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, from the most verbose.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs to a handler.
type Logger interface {
	New(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

var root atomic.Pointer[ethlog.Logger]

func init() {
	l := ethlog.NewLogger(slog.DiscardHandler)
	root.Store(&l)
}

// SetDefault replaces the root logger. Loggers created by WithContext pick it up immediately.
func SetDefault(h slog.Handler) {
	l := ethlog.NewLogger(h)
	root.Store(&l)
}

// Root returns the current root logger.
func Root() Logger {
	return &logger{}
}

// WithContext returns a logger that prefixes every record with ctx.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

// logger resolves the root on every call, so package level loggers
// follow SetDefault made after their creation.
type logger struct {
	ctx []any
}

func (l *logger) New(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &logger{ctx: append(merged, ctx...)}
}

func (l *logger) write(level slog.Level, msg string, ctx []any) {
	r := *root.Load()
	if len(l.ctx) > 0 {
		r = r.With(l.ctx...)
	}
	r.Log(level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }

// Crit logs at the critical level. Unlike go-ethereum it does not exit the process.
func (l *logger) Crit(msg string, ctx ...any) { l.write(LevelCrit, msg, ctx) }

// Debug logs on the root logger.
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }

// Info logs on the root logger.
func Info(msg string, ctx ...any) { Root().Info(msg, ctx...) }

// Warn logs on the root logger.
func Warn(msg string, ctx ...any) { Root().Warn(msg, ctx...) }

// Error logs on the root logger.
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }

// FromLegacyLevel maps the 0-9 verbosity used on the command line to a level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}

// NewTerminalHandler returns a human readable handler, optionally colored.
func NewTerminalHandler(wr io.Writer, level slog.Leveler, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandlerWithLevel(wr, level.Level(), useColor)
}

// NewJSONHandler returns a handler writing one json object per record.
func NewJSONHandler(wr io.Writer, level slog.Leveler) slog.Handler {
	return ethlog.JSONHandlerWithLevel(wr, level.Level())
}
