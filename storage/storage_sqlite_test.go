package storage_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/syanytska/ai-friend/storage"
)

func newTestRepos(t *testing.T) storage.Repos {
	t.Helper()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := storage.NewManager()
	if err := m.Start(db); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.Dialect() != "sqlite" {
		t.Fatalf("dialect = %q, want sqlite", m.Dialect())
	}
	if err := m.Build(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repos := m.Repos()
	if repos == nil {
		t.Fatal("driver does not expose repos")
	}
	return repos
}

func TestUserEnsure_CreateThenReuse(t *testing.T) {
	repos := newTestRepos(t)

	first, err := repos.User().Ensure("ext-1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	second, err := repos.User().Ensure("ext-1")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if first != second {
		t.Fatalf("ids differ: %d vs %d", first, second)
	}

	if _, err := repos.User().GetByExternalID("missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFactUpsert_Idempotent(t *testing.T) {
	repos := newTestRepos(t)
	userID, _ := repos.User().Ensure("ext-1")

	for i := 0; i < 2; i++ {
		if err := repos.Fact().Upsert(userID, "name", "Alice"); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	facts, err := repos.Fact().FindAll(userID)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(facts) != 1 || facts[0].Key != "name" || facts[0].Value != "Alice" {
		t.Fatalf("facts = %v, want exactly one name=Alice", facts)
	}
}

func TestFactUpsert_OverwritesValue(t *testing.T) {
	repos := newTestRepos(t)
	userID, _ := repos.User().Ensure("ext-1")

	if err := repos.Fact().Upsert(userID, "name", "Alice"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repos.Fact().Upsert(userID, "name", "Bob"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	facts, err := repos.Fact().FindAll(userID)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(facts) != 1 || facts[0].Value != "Bob" {
		t.Fatalf("facts = %v, want exactly one name=Bob", facts)
	}
}

func TestFactUpsert_ScopedPerUser(t *testing.T) {
	repos := newTestRepos(t)
	a, _ := repos.User().Ensure("ext-a")
	b, _ := repos.User().Ensure("ext-b")

	if err := repos.Fact().Upsert(a, "name", "Alice"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	facts, err := repos.Fact().FindAll(b)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(facts) != 0 {
		t.Fatalf("user b sees user a's facts: %v", facts)
	}
}

func TestConversation_GetByUUIDAndNotFound(t *testing.T) {
	repos := newTestRepos(t)
	userID, _ := repos.User().Ensure("ext-1")

	conv, err := repos.Conversation().Create(userID, "hello")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repos.Conversation().GetByUUID(conv.UUID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != conv.ID || got.UserID != userID || got.Title != "hello" {
		t.Fatalf("got = %+v", got)
	}

	if _, err := repos.Conversation().GetByUUID("no-such-uuid"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMessage_ListRecentWindowAndOrder(t *testing.T) {
	repos := newTestRepos(t)
	userID, _ := repos.User().Ensure("ext-1")
	conv, _ := repos.Conversation().Create(userID, "c")

	for i := 0; i < 10; i++ {
		if _, err := repos.Message().Create(conv.ID, userID, "user", fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	recent, err := repos.Message().ListRecent(conv.ID, 4)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("len = %d, want 4", len(recent))
	}
	for i, want := range []string{"m6", "m7", "m8", "m9"} {
		if recent[i].Content != want {
			t.Fatalf("recent[%d] = %q, want %q", i, recent[i].Content, want)
		}
	}

	all, err := repos.Message().ListAsc(conv.ID, 100)
	if err != nil {
		t.Fatalf("list asc: %v", err)
	}
	if len(all) != 10 || all[0].Content != "m0" || all[9].Content != "m9" {
		t.Fatalf("asc order broken: first=%q last=%q n=%d", all[0].Content, all[len(all)-1].Content, len(all))
	}
}

func TestConversation_TouchBumpsListOrder(t *testing.T) {
	repos := newTestRepos(t)
	userID, _ := repos.User().Ensure("ext-1")

	first, _ := repos.Conversation().Create(userID, "first")
	second, _ := repos.Conversation().Create(userID, "second")

	if err := repos.Conversation().Touch(first.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}

	convs, err := repos.Conversation().ListByUser(userID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("len = %d, want 2", len(convs))
	}
	if convs[0].ID != first.ID || convs[1].ID != second.ID {
		t.Fatalf("order = %d, %d; want touched conversation first", convs[0].ID, convs[1].ID)
	}
}

func TestConversation_Rename(t *testing.T) {
	repos := newTestRepos(t)
	userID, _ := repos.User().Ensure("ext-1")
	conv, _ := repos.Conversation().Create(userID, "before")

	if err := repos.Conversation().Rename(conv.ID, "after"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := repos.Conversation().GetByUUID(conv.UUID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "after" {
		t.Fatalf("title = %q, want after", got.Title)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	m := storage.NewManager()
	if err := m.Start(db); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if err := m.Build(); err != nil {
		t.Fatalf("second build: %v", err)
	}
}
