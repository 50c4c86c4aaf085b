package pool

import "testing"

func TestAcquireReleaseLifecycle(t *testing.T) {
	p := New(3)

	h1, ok := p.Acquire()
	if !ok {
		t.Fatal("expected acquire to succeed")
	}
	h2, ok := p.Acquire()
	if !ok {
		t.Fatal("expected acquire to succeed")
	}
	h3, ok := p.Acquire()
	if !ok {
		t.Fatal("expected acquire to succeed")
	}
	if _, ok := p.Acquire(); ok {
		t.Fatal("expected 4th acquire on capacity-3 pool to fail")
	}
	if p.InUseCount() != 3 {
		t.Fatalf("InUseCount = %d, want 3", p.InUseCount())
	}

	if err := p.Release(h2); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if p.InUseCount() != 2 {
		t.Fatalf("InUseCount after release = %d, want 2", p.InUseCount())
	}

	h4, ok := p.Acquire()
	if !ok {
		t.Fatal("expected acquire to succeed after a release")
	}

	for _, h := range []Handle{h1, h3, h4} {
		if err := p.Release(h); err != nil {
			t.Fatalf("release(%d) failed: %v", h, err)
		}
	}
	if p.InUseCount() != 0 {
		t.Fatalf("InUseCount after draining = %d, want 0", p.InUseCount())
	}
}

func TestAcquireReturnsZeroedEvent(t *testing.T) {
	p := New(2)
	h, _ := p.Acquire()
	e := p.Get(h)
	e.Process = "nginx"
	e.Pid = 1234
	if err := p.Release(h); err != nil {
		t.Fatal(err)
	}

	h2, _ := p.Acquire()
	e2 := p.Get(h2)
	if e2.Process != "" || e2.Pid != 0 {
		t.Fatalf("expected zeroed event, got %+v", e2)
	}
}

func TestDoubleReleaseDetected(t *testing.T) {
	p := New(2)
	h, _ := p.Acquire()
	if err := p.Release(h); err != nil {
		t.Fatal(err)
	}
	if err := p.Release(h); err == nil {
		t.Fatal("expected double release to return an error")
	}
}

func TestForeignHandleDetected(t *testing.T) {
	p := New(2)
	if p.Get(Handle(99)) != nil {
		t.Fatal("expected nil for out-of-range handle")
	}
	if err := p.Release(Handle(99)); err == nil {
		t.Fatal("expected error releasing out-of-range handle")
	}
	if err := p.Release(Handle(0)); err == nil {
		t.Fatal("expected error releasing the zero handle")
	}
}

func TestInUseCountNeverExceedsCapacity(t *testing.T) {
	p := New(5)
	var handles []Handle
	for i := 0; i < 10; i++ {
		if h, ok := p.Acquire(); ok {
			handles = append(handles, h)
		}
		if p.InUseCount() > p.Capacity() {
			t.Fatalf("InUseCount %d exceeded capacity %d", p.InUseCount(), p.Capacity())
		}
	}
	if len(handles) != 5 {
		t.Fatalf("expected exactly capacity acquires to succeed, got %d", len(handles))
	}
}
