package tuitest

import (
	"bytes"
	"testing"
)

func TestTerminalResponderAnswersProbes(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out)

	tr.Process([]byte("hello\x1b]11;?\x07 and \x1b[6"))
	if got := out.String(); got != "\x1b]11;rgb:0000/0000/0000\x07" {
		t.Fatalf("unexpected reply to background probe: %q", got)
	}

	out.Reset()
	tr.Process([]byte("n\x1b]10;?\x1b\\"))
	if got := out.String(); got != "\x1b[1;1R\x1b]10;rgb:cccc/cccc/cccc\x1b\\" {
		t.Fatalf("split cursor probe and foreground probe not answered in order: %q", got)
	}

	out.Reset()
	tr.Process(bytes.Repeat([]byte("x"), 500))
	if out.Len() != 0 {
		t.Fatalf("plain output should not be answered: %q", out.String())
	}
	if len(tr.pending) > pendingTail {
		t.Fatalf("pending buffer not trimmed: %d bytes", len(tr.pending))
	}
}
