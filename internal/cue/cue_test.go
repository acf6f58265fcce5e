package cue_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/robalobadob/scratcher/internal/cue"
)

func TestPlayerLazyInitAndMute(t *testing.T) {
	t.Parallel()

	var got []cue.Cue
	created := 0
	p := cue.NewPlayer(func() (cue.Sink, error) {
		created++
		return cue.SinkFunc(func(c cue.Cue) { got = append(got, c) }), nil
	})

	p.Play(cue.Scratch) // before the first gesture: dropped
	if created != 0 || p.Ready() {
		t.Fatal("sink created before Init")
	}

	if err := p.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	_ = p.Init()
	if created != 1 {
		t.Fatalf("sink created %d times, want 1", created)
	}

	p.Play(cue.Win)
	if !p.ToggleMute() {
		t.Fatal("ToggleMute() should report muted")
	}
	p.Play(cue.Lose)
	p.SetMuted(false)
	p.Play(cue.Complete)

	want := []cue.Cue{cue.Win, cue.Complete}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("played %v, want %v", got, want)
	}
}

func TestPlayerInitFailureIsRetryable(t *testing.T) {
	t.Parallel()

	fail := true
	p := cue.NewPlayer(func() (cue.Sink, error) {
		if fail {
			return nil, errors.New("no output")
		}
		return cue.SinkFunc(func(cue.Cue) {}), nil
	})
	if err := p.Init(); err == nil {
		t.Fatal("expected Init() error")
	}
	p.Play(cue.Win) // must not panic
	fail = false
	if err := p.Init(); err != nil || !p.Ready() {
		t.Fatalf("retry Init() err=%v ready=%v", err, p.Ready())
	}
}
