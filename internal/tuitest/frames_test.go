package tuitest

import "testing"

func TestParseFramesSplitsOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[Hfirst   \r\n\x1b[1mbold\x1b[0m\n\n\x1b[2J\x1b[Hsecond\x1b]0;title\x07")
	frames := parseFrames(raw)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d: %#v", len(frames), frames)
	}
	if frames[0].Plain != "first\nbold" {
		t.Fatalf("first frame not normalized: %q", frames[0].Plain)
	}
	if frames[1].Plain != "second" {
		t.Fatalf("second frame not normalized: %q", frames[1].Plain)
	}
}

func TestRecordingQueries(t *testing.T) {
	rec := &Recording{Frames: []Frame{
		{Index: 0, Plain: "empty state"},
		{Index: 1, Plain: "loading"},
		{Index: 2, Plain: "answer\nsources"},
	}}

	if frame, ok := rec.FrameContaining("sources"); !ok || frame.Index != 2 {
		t.Fatalf("FrameContaining = %+v, %v", frame, ok)
	}
	if _, ok := rec.FrameContaining("missing"); ok {
		t.Fatal("unexpected match")
	}
	if !rec.Order("empty", "loading", "answer") {
		t.Fatal("markers are in order")
	}
	if rec.Order("answer", "loading") {
		t.Fatal("markers are out of order")
	}
	if last, ok := rec.FinalFrame(); !ok || last.Index != 2 {
		t.Fatalf("FinalFrame = %+v, %v", last, ok)
	}
	var nilRec *Recording
	if _, ok := nilRec.FinalFrame(); ok {
		t.Fatal("nil recording has no frames")
	}
}
