package window

import (
	"errors"
	"testing"
)

func ramp(n int) []int16 {
	data := make([]int16, n)
	for i := range data {
		data[i] = int16(i)
	}
	return data
}

func TestWindowCountProperty(t *testing.T) {
	for n := 0; n <= 64; n++ {
		for size := 1; size <= 16; size++ {
			for stride := 1; stride <= size; stride++ {
				s, err := New(ramp(n), size, stride)
				if err != nil {
					t.Fatalf("New(%d, %d, %d): %v", n, size, stride, err)
				}

				want := 0
				if n >= size {
					want = (n-size)/stride + 1
				}

				got := 0
				prev := -stride
				for s.HasNext() {
					w, err := s.Next()
					if err != nil {
						t.Fatalf("Next: %v", err)
					}
					if len(w.Samples) != size {
						t.Fatalf("n=%d size=%d stride=%d: window len %d", n, size, stride, len(w.Samples))
					}
					if w.Offset != prev+stride {
						t.Fatalf("n=%d size=%d stride=%d: offset %d after %d", n, size, stride, w.Offset, prev)
					}
					if end := w.Offset + len(w.Samples); end > n {
						t.Fatalf("window end %d past buffer length %d", end, n)
					}
					if s.Index() != got {
						t.Fatalf("Index = %d, want %d", s.Index(), got)
					}
					prev = w.Offset
					got++
				}
				if got != want || s.Len() != want {
					t.Fatalf("n=%d size=%d stride=%d: got %d windows (Len %d), want %d",
						n, size, stride, got, s.Len(), want)
				}
				if s.TotalStrides() != want-1 {
					t.Fatalf("TotalStrides = %d, want %d", s.TotalStrides(), want-1)
				}
			}
		}
	}
}

func TestNoOverlapScenario(t *testing.T) {
	s, err := New(make([]int16, 48000), 16000, 16000)
	if err != nil {
		t.Fatal(err)
	}
	var offsets []int
	for s.HasNext() {
		w, _ := s.Next()
		offsets = append(offsets, w.Offset)
	}
	if len(offsets) != 3 || offsets[0] != 0 || offsets[1] != 16000 || offsets[2] != 32000 {
		t.Fatalf("offsets = %v, want [0 16000 32000]", offsets)
	}
}

func TestNextPastEnd(t *testing.T) {
	s, _ := New(ramp(10), 4, 4)
	s.Next()
	s.Next()
	if s.HasNext() {
		t.Fatal("expected no more windows")
	}
	_, err := s.Next()
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestShortBuffer(t *testing.T) {
	s, _ := New(ramp(100), 160, 80)
	if s.HasNext() || s.Len() != 0 {
		t.Fatal("buffer shorter than window must produce no windows")
	}
	if s.Index() != -1 || s.TotalStrides() != -1 {
		t.Errorf("Index=%d TotalStrides=%d, want -1/-1", s.Index(), s.TotalStrides())
	}
}

func TestInvalidParams(t *testing.T) {
	cases := [][2]int{{0, 1}, {4, 0}, {4, 5}, {-1, -1}}
	for _, c := range cases {
		if _, err := New(ramp(10), c[0], c[1]); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("New(size=%d, stride=%d): expected ErrInvalidWindow, got %v", c[0], c[1], err)
		}
	}
}

func TestWindowIsView(t *testing.T) {
	data := ramp(8)
	s, _ := New(data, 4, 2)
	s.Next()
	w, _ := s.Next()
	if w.Samples[0] != 2 {
		t.Fatalf("second window starts at %d, want 2", w.Samples[0])
	}
	data[2] = 42
	if w.Samples[0] != 42 {
		t.Error("window should alias the source buffer")
	}
}
