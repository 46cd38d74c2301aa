package session

import "testing"

func TestMeditationTimer_StartIsIdempotentWhileRunning(t *testing.T) {
	tr := NewStatusTracker(Input{Meditation: meditations(1, 2)})
	timer := NewMeditationTimer(tr, meditations(1, 2))

	if !timer.Start(0, 1) {
		t.Fatal("expected start")
	}
	timer.Tick()
	timer.Tick()
	if !timer.Start(1, 2) {
		t.Fatal("expected duplicate start to report running")
	}
	if timer.Index() != 0 || timer.Remaining() != 58 {
		t.Fatalf("duplicate start must not reset the countdown, index %d remaining %d", timer.Index(), timer.Remaining())
	}
}

func TestMeditationTimer_IgnoresTicksWhenNotRunning(t *testing.T) {
	tr := NewStatusTracker(Input{Meditation: meditations(1)})
	timer := NewMeditationTimer(tr, meditations(1))

	if timer.Tick() {
		t.Fatal("idle tick must not complete anything")
	}
	timer.Start(0, 1)
	if got := timer.Interrupt(); got != 0 {
		t.Fatalf("expected 0 seconds folded, got %d", got)
	}
	if timer.Tick() || timer.Effective() != 0 {
		t.Fatalf("stopped tick must not count, effective %d", timer.Effective())
	}
	if got := timer.Interrupt(); got != 0 {
		t.Fatalf("second interrupt folded %d seconds", got)
	}
}

func TestMeditationTimer_RatioIsCapped(t *testing.T) {
	tr := NewStatusTracker(Input{Meditation: meditations(1)})
	timer := NewMeditationTimer(tr, meditations(1))
	timer.Start(0, 1)
	for i := 0; i < 90; i++ {
		timer.Tick()
	}
	if timer.Ratio() != 1 {
		t.Fatalf("expected ratio 1, got %v", timer.Ratio())
	}
	if timer.Effective() != 60 {
		t.Fatalf("expected effective 60, got %d", timer.Effective())
	}
}
