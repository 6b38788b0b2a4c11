package logger

import (
	"context"
	"github.com/sirupsen/logrus"
	"io"
	"os"
)

// Log is the process-wide logger. It is usable before Init is called.
var Log = logrus.New()

type ctxKey struct{}

func Init(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	Log.SetOutput(os.Stdout)

	if format == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// SetOutput redirects the logger, returning a func that restores the previous writer.
func SetOutput(w io.Writer) func() {
	prev := Log.Out
	Log.SetOutput(w)
	return func() { Log.SetOutput(prev) }
}

// WithEntry stores a request-scoped entry in ctx.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// From returns the request-scoped entry, or a bare one when ctx carries none.
func From(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(Log)
}
