package resource

import (
	"sync"
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(1, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	_, ok = table.GetTyped(h, 1)
	if !ok {
		t.Fatal("GetTyped with correct kind failed")
	}

	_, ok = table.GetTyped(h, 2)
	if ok {
		t.Fatal("GetTyped with wrong kind should fail")
	}

	val, ok = table.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if _, ok := table.Remove(h); ok {
		t.Fatal("second Remove should fail")
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
}

func TestTable_ZeroHandleInvalid(t *testing.T) {
	table := NewTable()
	if _, ok := table.Get(0); ok {
		t.Fatal("handle 0 must never resolve")
	}
	if _, ok := table.Remove(0); ok {
		t.Fatal("handle 0 must never be removable")
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable()

	a := table.Insert(1, "a")
	table.Remove(a)
	b := table.Insert(1, "b")

	if a != b {
		t.Fatalf("expected freed handle %d to be reused, got %d", a, b)
	}
	val, _ := table.Get(b)
	if val != "b" {
		t.Fatalf("Expected 'b', got %v", val)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(1, "test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Handle != h {
		t.Fatal("Wrong handle in event")
	}

	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventDropped {
		t.Fatal("Expected EventDropped")
	}
	if obs.events[1].Kind != 1 {
		t.Fatalf("Expected kind 1 in drop event, got %d", obs.events[1].Kind)
	}

	table.Unsubscribe(obs)
	table.Insert(1, "test2")
	if len(obs.events) != 2 {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_ObserverFunc(t *testing.T) {
	table := NewTable()
	var created int
	table.Subscribe(ObserverFunc(func(e Event) {
		if e.Type == EventCreated {
			created++
		}
	}))

	table.Insert(1, "a")
	table.Insert(2, "b")
	if created != 2 {
		t.Fatalf("Expected 2 created events, got %d", created)
	}
}

func TestTable_RemoveIf(t *testing.T) {
	table := NewTable()

	table.Insert(1, "a")
	keep := table.Insert(2, "b")
	table.Insert(1, "c")

	n := table.RemoveIf(func(_ Handle, kind Kind, _ any) bool { return kind == 1 })
	if n != 2 {
		t.Fatalf("Expected 2 removed, got %d", n)
	}
	if table.Len() != 1 {
		t.Fatalf("Expected Len() == 1, got %d", table.Len())
	}
	if _, ok := table.Get(keep); !ok {
		t.Fatal("kind 2 entry should survive")
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable()

	table.Insert(1, "a")
	table.Insert(1, "b")
	table.Insert(1, "c")

	if table.Len() != 3 {
		t.Fatal("Expected Len() == 3")
	}

	table.Clear()

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Clear")
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	table.Insert(1, d)
	table.Insert(1, "b")

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if d.count != 1 {
		t.Fatalf("Expected Drop() on Close, called %d times", d.count)
	}

	h := table.Insert(1, "c")
	if h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
}

type dropCounter struct {
	count int
}

func (d *dropCounter) Drop() {
	d.count++
}

func TestTable_DropperInterface(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	h := table.Insert(1, d)
	table.Remove(h)

	if d.count != 1 {
		t.Fatalf("Expected Drop() to be called once, called %d times", d.count)
	}
}

func TestTable_ConcurrentRemoveOnce(t *testing.T) {
	table := NewTable()
	h := table.Insert(1, "once")

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := table.Remove(h); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("Expected exactly one successful Remove, got %d", wins)
	}
}
