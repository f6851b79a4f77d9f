package ringbuffer

import "testing"

func TestNewFilledPrePopulates(t *testing.T) {
	b := NewFilled(3, 42.0)
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	for _, v := range b.Values() {
		if v != 42.0 {
			t.Fatalf("value = %v, want 42.0", v)
		}
	}
}

func TestPushEvictsOldest(t *testing.T) {
	b := New(3)
	b.Push(1)
	b.Push(2)
	b.Push(3)
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	b.Push(4)
	if b.Len() != 3 {
		t.Fatalf("Len() after overflow push = %d, want 3 (capacity preserved)", b.Len())
	}
	got := b.Values()
	want := []float64{2, 3, 4}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("Values()[%d] = %v, want %v", i, got[i], v)
		}
	}
}

func TestFromEndInsufficientSamples(t *testing.T) {
	b := New(5)
	b.Push(10)
	b.Push(20)
	if _, ok := b.FromEnd(2); ok {
		t.Fatalf("FromEnd(2) ok = true with only 2 samples pushed, want false")
	}
	v, ok := b.FromEnd(1)
	if !ok || v != 10 {
		t.Fatalf("FromEnd(1) = (%v, %v), want (10, true)", v, ok)
	}
	v, ok = b.FromEnd(0)
	if !ok || v != 20 {
		t.Fatalf("FromEnd(0) = (%v, %v), want (20, true)", v, ok)
	}
}

func TestNewestMatchesLastPush(t *testing.T) {
	b := New(2)
	b.Push(1)
	b.Push(2)
	b.Push(3)
	if got := b.Newest(); got != 3 {
		t.Fatalf("Newest() = %v, want 3", got)
	}
}
