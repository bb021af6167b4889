package confdb

import (
	"testing"
)

func TestCacheInsertGet(t *testing.T) {
	c := NewCache()
	c.Insert("brlan0", "100")

	v, ok := c.Get("brlan0")
	if !ok {
		t.Fatal("expected entry for brlan0")
	}
	if v != "100" {
		t.Fatalf("got %q, want %q", v, "100")
	}
}

func TestCacheInsertOverwrites(t *testing.T) {
	c := NewCache()
	c.Insert("brlan0", "100")
	c.Insert("brlan0", "200")

	v, _ := c.Get("brlan0")
	if v != "200" {
		t.Fatalf("got %q, want %q", v, "200")
	}
	if c.Len() != 1 {
		t.Fatalf("got %d entries, want 1", c.Len())
	}
}

func TestCacheGetMissing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("brlan7"); ok {
		t.Fatal("expected no entry for brlan7")
	}
}

func TestCacheDelete(t *testing.T) {
	c := NewCache()
	c.Insert("brlan0", "100")

	if !c.Delete("brlan0") {
		t.Fatal("Delete should report an existing entry was removed")
	}
	if c.Delete("brlan0") {
		t.Fatal("Delete should report false for an absent entry")
	}
	if c.Len() != 0 {
		t.Fatalf("got %d entries, want 0", c.Len())
	}
}

func TestCacheListOrdered(t *testing.T) {
	c := NewCache()
	c.Insert("brlan7", "107")
	c.Insert("brlan0", "100")
	c.Insert("brebhaul", "1060")
	c.Insert("brlan113", "113")

	got := c.List()
	want := []Entry{
		{GroupName: "brebhaul", VLANID: "1060"},
		{GroupName: "brlan0", VLANID: "100"},
		{GroupName: "brlan113", VLANID: "113"},
		{GroupName: "brlan7", VLANID: "107"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCacheReplace(t *testing.T) {
	c := NewCache()
	c.Insert("brlan0", "100")

	c.Replace([]Entry{
		{GroupName: "brlan1", VLANID: "101"},
		{GroupName: "brlan2", VLANID: "102"},
	})

	if _, ok := c.Get("brlan0"); ok {
		t.Fatal("Replace should drop previous entries")
	}
	if c.Len() != 2 {
		t.Fatalf("got %d entries, want 2", c.Len())
	}
	if v, _ := c.Get("brlan2"); v != "102" {
		t.Fatalf("got %q, want %q", v, "102")
	}
}
