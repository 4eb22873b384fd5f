package listen

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testRate = 1000 // 20-sample frames are 20ms

type fakeSource struct {
	frames [][]int16
	next   int
	reads  int
}

func (f *fakeSource) Read(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.reads++
	if f.next >= len(f.frames) {
		return make([]int16, 20), nil
	}
	fr := f.frames[f.next]
	f.next++
	return fr, nil
}

func (f *fakeSource) SampleRate() int { return testRate }
func (f *fakeSource) Close() error    { return nil }

func frames(n int, level int16) [][]int16 {
	out := make([][]int16, n)
	for i := range out {
		fr := make([]int16, 20)
		for j := range fr {
			fr[j] = level
		}
		out[i] = fr
	}
	return out
}

func concat(groups ...[][]int16) [][]int16 {
	var out [][]int16
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

type denyGate struct{}

func (denyGate) IsVoice([]int16) bool { return false }

func TestListenTimesOutOnSilence(t *testing.T) {
	src := &fakeSource{}
	l := New(src, Options{MinEnergy: 100, Pause: 100 * time.Millisecond}, nil)
	_, err := l.Listen(context.Background(), 100*time.Millisecond, time.Second)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
	if src.reads != 5 {
		t.Fatalf("expected 5 frames read before timeout, got %d", src.reads)
	}
}

func TestListenCapturesPhraseWithPreroll(t *testing.T) {
	src := &fakeSource{frames: concat(frames(3, 0), frames(5, 1000), frames(50, 0))}
	l := New(src, Options{MinEnergy: 100, Pause: 100 * time.Millisecond, Preroll: 40 * time.Millisecond}, nil)
	pcm, err := l.Listen(context.Background(), time.Second, 5*time.Second)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	// 2 preroll frames + 5 speech frames + 5 trailing silent frames
	if len(pcm) != 240 {
		t.Fatalf("expected 240 samples, got %d", len(pcm))
	}
	if pcm[0] != 0 || pcm[40] != 1000 {
		t.Fatalf("expected preroll silence before speech: %d %d", pcm[0], pcm[40])
	}
}

func TestListenStopsAtPhraseLimit(t *testing.T) {
	src := &fakeSource{frames: frames(100, 1000)}
	l := New(src, Options{MinEnergy: 100, Pause: 100 * time.Millisecond}, nil)
	pcm, err := l.Listen(context.Background(), time.Second, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if len(pcm) != 200 {
		t.Fatalf("expected phrase bounded to 200 samples, got %d", len(pcm))
	}
}

func TestPhraseLimitExcludesPreroll(t *testing.T) {
	src := &fakeSource{frames: concat(frames(5, 0), frames(100, 1000))}
	l := New(src, Options{MinEnergy: 100, Pause: 100 * time.Millisecond, Preroll: 100 * time.Millisecond}, nil)
	pcm, err := l.Listen(context.Background(), time.Second, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	// 100 preroll samples + 200ms of speech counted from onset
	if len(pcm) != 300 {
		t.Fatalf("expected 300 samples, got %d", len(pcm))
	}
}

func TestEmptyFramesAreErrors(t *testing.T) {
	empty := [][]int16{{}}

	l := New(&fakeSource{frames: empty}, Options{MinEnergy: 100}, nil)
	if _, err := l.Calibrate(context.Background(), 100*time.Millisecond); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("calibrate err = %v, want ErrEmptyFrame", err)
	}

	l = New(&fakeSource{frames: empty}, Options{MinEnergy: 100}, nil)
	if _, err := l.Listen(context.Background(), 100*time.Millisecond, time.Second); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("listen err = %v, want ErrEmptyFrame", err)
	}

	l = New(&fakeSource{frames: concat(frames(1, 1000), empty)}, Options{MinEnergy: 100}, nil)
	if _, err := l.Listen(context.Background(), 100*time.Millisecond, time.Second); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("listen mid-phrase err = %v, want ErrEmptyFrame", err)
	}
}

func TestListenGateVetoesEnergy(t *testing.T) {
	src := &fakeSource{frames: frames(10, 1000)}
	l := New(src, Options{MinEnergy: 100}, denyGate{})
	if _, err := l.Listen(context.Background(), 60*time.Millisecond, time.Second); !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected gate to suppress speech, got %v", err)
	}
}

func TestListenHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := New(&fakeSource{}, Options{MinEnergy: 100}, nil)
	if _, err := l.Listen(ctx, 0, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCalibrateSetsThreshold(t *testing.T) {
	cases := []struct {
		name      string
		minEnergy float64
		want      float64
	}{
		{"ambient above floor", 100, 300},
		{"floor wins", 400, 400},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			src := &fakeSource{frames: frames(10, 200)}
			l := New(src, Options{MinEnergy: c.minEnergy, DynamicRatio: 1.5}, nil)
			ambient, err := l.Calibrate(context.Background(), 100*time.Millisecond)
			if err != nil {
				t.Fatalf("calibrate: %v", err)
			}
			if ambient != 200 {
				t.Fatalf("expected ambient 200, got %v", ambient)
			}
			if l.Threshold() != c.want {
				t.Fatalf("expected threshold %v, got %v", c.want, l.Threshold())
			}
			if src.reads != 5 {
				t.Fatalf("expected 5 frames for 100ms, got %d", src.reads)
			}
		})
	}
}

func TestRingKeepsNewestSamples(t *testing.T) {
	r := newRing(4)
	r.Add([]int16{1, 2})
	if got := r.Read(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("partial ring read: %v", got)
	}
	r.Add([]int16{3, 4, 5, 6})
	got := r.Read()
	want := []int16{3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ring read %v want %v", got, want)
		}
	}
}
