package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

type note struct {
	ID   string
	Text string
}

func TestKeyed_CreateAndGet(t *testing.T) {
	k := NewKeyed[note]()

	created := k.Create(func(id string) note { return note{ID: id, Text: "first"} })
	if created.ID == "" {
		t.Fatal("Create should assign an identifier")
	}

	got, err := k.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != created {
		t.Errorf("Get = %+v, want %+v", got, created)
	}
}

func TestKeyed_CreateGeneratesUniqueIDs(t *testing.T) {
	k := NewKeyed[note]()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		v := k.Create(func(id string) note { return note{ID: id} })
		if seen[v.ID] {
			t.Fatalf("duplicate id %q", v.ID)
		}
		seen[v.ID] = true
	}
}

func TestKeyed_ListPreservesInsertionOrder(t *testing.T) {
	k := NewKeyed[note]()
	for i := 0; i < 5; i++ {
		text := fmt.Sprintf("note-%d", i)
		k.Create(func(id string) note { return note{ID: id, Text: text} })
	}

	values := k.List()
	if len(values) != 5 {
		t.Fatalf("List returned %d values, want 5", len(values))
	}
	for i, v := range values {
		if want := fmt.Sprintf("note-%d", i); v.Text != want {
			t.Errorf("values[%d].Text = %q, want %q", i, v.Text, want)
		}
	}
}

func TestKeyed_Put(t *testing.T) {
	k := NewKeyed[note]()
	created := k.Create(func(id string) note { return note{ID: id, Text: "old"} })

	if err := k.Put(created.ID, note{ID: created.ID, Text: "new"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := k.Get(created.ID)
	if got.Text != "new" {
		t.Errorf("Text = %q, want new", got.Text)
	}

	if err := k.Put("missing", note{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Put(missing) err = %v, want ErrNotFound", err)
	}
}

func TestKeyed_Delete(t *testing.T) {
	k := NewKeyed[note]()
	first := k.Create(func(id string) note { return note{ID: id, Text: "a"} })
	k.Create(func(id string) note { return note{ID: id, Text: "b"} })

	if err := k.Delete(first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := k.Get(first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if values := k.List(); len(values) != 1 || values[0].Text != "b" {
		t.Errorf("List = %+v, want just b", values)
	}

	if err := k.Delete(first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestKeyed_ConcurrentAccess(t *testing.T) {
	k := NewKeyed[note]()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := k.Create(func(id string) note { return note{ID: id} })
			if _, err := k.Get(v.ID); err != nil {
				t.Errorf("Get(%q): %v", v.ID, err)
			}
			k.List()
		}()
	}
	wg.Wait()

	if got := len(k.List()); got != 20 {
		t.Errorf("List returned %d values, want 20", got)
	}
}
