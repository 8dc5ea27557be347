package tuitest

import (
	"bytes"
	"io"
)

// Bubble Tea and lipgloss probe the terminal for the cursor position and
// colours on start. A pty has no emulator behind it, so the harness answers
// with a dark 1x1 terminal.
type probeReply struct {
	query []byte
	reply []byte
}

var probeReplies = oscReplies(
	probeReply{query: []byte("\x1b[6n"), reply: []byte("\x1b[1;1R")},
	probeReply{query: []byte("\x1b]10;?"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc")},
	probeReply{query: []byte("\x1b]11;?"), reply: []byte("\x1b]11;rgb:0000/0000/0000")},
)

// oscReplies expands OSC queries into their BEL and ST terminated forms.
func oscReplies(replies ...probeReply) []probeReply {
	out := make([]probeReply, 0, len(replies)*2)
	for _, r := range replies {
		if !bytes.HasPrefix(r.query, []byte("\x1b]")) {
			out = append(out, r)
			continue
		}
		for _, end := range [][]byte{[]byte("\x07"), []byte("\x1b\\")} {
			out = append(out, probeReply{
				query: append(append([]byte(nil), r.query...), end...),
				reply: append(append([]byte(nil), r.reply...), end...),
			})
		}
	}
	return out
}

// pendingTail bounds how much unmatched output is kept for probes split
// across reads.
const pendingTail = 64

type terminalResponder struct {
	w       io.Writer
	pending []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w}
}

// Process scans program output and writes a reply for every probe found.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.pending = append(tr.pending, chunk...)
	for tr.answerNext() {
	}
	if len(tr.pending) > pendingTail {
		tr.pending = append([]byte(nil), tr.pending[len(tr.pending)-pendingTail:]...)
	}
}

// answerNext replies to the earliest probe in the pending bytes.
func (tr *terminalResponder) answerNext() bool {
	first, at := -1, -1
	for idx, r := range probeReplies {
		pos := bytes.Index(tr.pending, r.query)
		if pos >= 0 && (at < 0 || pos < at) {
			first, at = idx, pos
		}
	}
	if first < 0 {
		return false
	}
	match := probeReplies[first]
	tr.pending = tr.pending[at+len(match.query):]
	_, _ = tr.w.Write(match.reply)
	return true
}
