package logger

import (
	"testing"

	"github.com/pickme-go/log/v2"
)

func TestLevel(t *testing.T) {
	tests := map[string]log.Level{
		`fatal`: log.FATAL,
		`ERROR`: log.ERROR,
		`warn`:  log.WARN,
		`DEBUG`: log.DEBUG,
		`trace`: log.TRACE,
		`info`:  log.INFO,
		`bogus`: log.INFO,
	}

	for in, want := range tests {
		if got := Level(in); got != want {
			t.Errorf(`%s: want %v got %v`, in, want, got)
		}
	}
}

func TestNew(t *testing.T) {
	var l log.Logger = New(`DEBUG`, false)
	if l == nil {
		t.Fatal(`nil logger`)
	}

	// prefixed children are derived from the root logger
	if l.NewLog(log.Prefixed(`child`)) == nil {
		t.Error(`nil child logger`)
	}

	if DefaultLogger == nil {
		t.Error(`nil default logger`)
	}
}
