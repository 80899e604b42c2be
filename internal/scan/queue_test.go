package scan

import (
	"sync"
	"testing"
)

func TestUIQueue_RunsInOrder(t *testing.T) {
	q := NewUIQueue(4)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		q.Dispatch(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Close()

	if len(got) != 50 {
		t.Fatalf("ran %d closures, want 50", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("closure %d ran at position %d", v, i)
		}
	}
}

func TestUIQueue_Sync(t *testing.T) {
	q := NewUIQueue(1)
	defer q.Close()

	value := 0
	if !q.Sync(func() { value = 42 }) {
		t.Fatal("Sync reported the closure did not run")
	}
	if value != 42 {
		t.Errorf("value: got %d, want 42", value)
	}
}

func TestUIQueue_DispatchAfterClose(t *testing.T) {
	q := NewUIQueue(1)
	q.Close()
	q.Close()

	ran := false
	q.Dispatch(func() { ran = true })
	if q.Sync(func() { ran = true }) {
		t.Error("Sync should fail on a closed queue")
	}
	if ran {
		t.Error("closure ran after Close")
	}
}

func TestInline(t *testing.T) {
	ran := false
	Inline.Dispatch(func() { ran = true })
	if !ran {
		t.Error("Inline did not run the closure")
	}
}
