package view

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/feed"
)

func bm(id, user string) domain.Bookmark {
	return domain.Bookmark{
		ID:        id,
		UserID:    user,
		Title:     "title " + id,
		URL:       "https://" + id + ".example",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ids(list []domain.Bookmark) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func insert(b domain.Bookmark) feed.Event { return feed.Event{Type: feed.EventInsert, New: &b} }
func update(b domain.Bookmark) feed.Event { return feed.Event{Type: feed.EventUpdate, New: &b} }
func del(id, user string) feed.Event {
	return feed.Event{Type: feed.EventDelete, Old: &feed.OldRecord{ID: id, UserID: user}}
}

func TestReconcile(t *testing.T) {
	base := []domain.Bookmark{bm("b", "u1"), bm("a", "u1")}

	renamed := bm("a", "u1")
	renamed.Title = "renamed"

	tests := []struct {
		name string
		ev   feed.Event
		want []string
	}{
		{name: "insert own prepends", ev: insert(bm("c", "u1")), want: []string{"c", "b", "a"}},
		{name: "insert foreign ignored", ev: insert(bm("c", "u2")), want: []string{"b", "a"}},
		{name: "insert without owner ignored", ev: insert(bm("c", "")), want: []string{"b", "a"}},
		{name: "insert duplicate id stays unique", ev: insert(bm("a", "u1")), want: []string{"b", "a"}},
		{name: "update own replaces in place", ev: update(renamed), want: []string{"b", "a"}},
		{name: "update unknown id ignored", ev: update(bm("z", "u1")), want: []string{"b", "a"}},
		{name: "update foreign ignored", ev: update(bm("a", "u2")), want: []string{"b", "a"}},
		{name: "delete removes", ev: del("b", "u1"), want: []string{"a"}},
		{name: "delete ignores owner", ev: del("a", ""), want: []string{"b"}},
		{name: "delete unknown id ignored", ev: del("z", "u1"), want: []string{"b", "a"}},
		{name: "delete without old ignored", ev: feed.Event{Type: feed.EventDelete}, want: []string{"b", "a"}},
		{name: "unknown type ignored", ev: feed.Event{Type: "TRUNCATE"}, want: []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(base, "u1", tt.ev)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("Reconcile() = %v, want %v", ids(got), tt.want)
			}
		})
	}

	if !equalIDs(ids(base), []string{"b", "a"}) || base[1].Title != "title a" {
		t.Errorf("Reconcile() modified its input: %+v", base)
	}
}

func TestReconcile_UpdateReplacesRecord(t *testing.T) {
	base := []domain.Bookmark{bm("b", "u1"), bm("a", "u1")}
	renamed := bm("a", "u1")
	renamed.Title = "renamed"

	got := Reconcile(base, "u1", update(renamed))
	if got[1].Title != "renamed" {
		t.Errorf("Title = %q, want renamed", got[1].Title)
	}
}

func TestReconcile_NoSessionUserIgnoresInserts(t *testing.T) {
	got := Reconcile(nil, "", insert(bm("a", "")))
	if len(got) != 0 {
		t.Errorf("Reconcile() = %v, want empty", ids(got))
	}
}

func TestReconcile_SequenceKeepsIDsUnique(t *testing.T) {
	var list []domain.Bookmark
	events := []feed.Event{
		insert(bm("a", "u1")),
		insert(bm("b", "u1")),
		insert(bm("a", "u1")),
		insert(bm("c", "u2")),
		del("b", "u1"),
		insert(bm("d", "u1")),
		del("b", "u1"),
	}
	for _, ev := range events {
		list = Reconcile(list, "u1", ev)
	}

	if !equalIDs(ids(list), []string{"d", "a"}) {
		t.Errorf("list = %v, want [d a]", ids(list))
	}
}

func TestRemove(t *testing.T) {
	base := []domain.Bookmark{bm("c", "u1"), bm("b", "u1"), bm("a", "u1")}

	got := Remove(base, "b")
	if !equalIDs(ids(got), []string{"c", "a"}) {
		t.Errorf("Remove() = %v", ids(got))
	}
	if !equalIDs(ids(base), []string{"c", "b", "a"}) {
		t.Errorf("Remove() modified its input: %v", ids(base))
	}
	if got := Remove(base, "zz"); !equalIDs(ids(got), ids(base)) {
		t.Errorf("Remove(unknown) = %v", ids(got))
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]domain.Bookmark{bm("a", "u1"), bm("b", "u1"), bm("a", "u1")})
	if !equalIDs(ids(got), []string{"a", "b"}) {
		t.Errorf("Dedupe() = %v", ids(got))
	}
}

func TestOwned(t *testing.T) {
	list := []domain.Bookmark{bm("a", "u1"), bm("b", "u2"), bm("c", "u1"), bm("d", "")}

	if got := ids(Owned(list, "u1")); !equalIDs(got, []string{"a", "c"}) {
		t.Errorf("Owned(u1) = %v", got)
	}
	if got := Owned(list, ""); len(got) != 0 {
		t.Errorf("Owned(\"\") = %v, want empty", ids(got))
	}
}
