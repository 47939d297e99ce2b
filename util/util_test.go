package util

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestLogf(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	Logging = false
	Logf("quiet %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("logged %q", buf.String())
	}

	Logging = true
	defer func() { Logging = false }()
	Logf("loud %d", 2)
	if !strings.Contains(buf.String(), "loud 2") {
		t.Fatalf("didn't log: %q", buf.String())
	}

	Logging = false
	Warnf("careful %s", "now")
	if !strings.Contains(buf.String(), "warning: careful now") {
		t.Fatalf("didn't warn: %q", buf.String())
	}
}
