package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

const testPrefix = "recipeq:"

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, testPrefix)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, testPrefix)
	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestKeys(t *testing.T) {
	s := NewStoreForTest(nil, testPrefix)
	if got := s.documentKey("all_recipes", "111"); got != "recipeq:all_recipes:111" {
		t.Errorf("documentKey = %q", got)
	}
	if got := s.collectionPattern("favourites"); got != "recipeq:favourites:*" {
		t.Errorf("collectionPattern = %q", got)
	}
}

// --- documents.go tests ---

func TestFindOne_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:111")).
		Return(mock.Result(mock.RedisString(`{"_id":"x","id":"111","name":"Hot Chocolate","tags":["drink"]}`)))

	s := NewStoreForTest(c, testPrefix)
	doc, err := s.FindOne(context.Background(), "all_recipes", "111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "111" {
		t.Errorf("id = %q", doc.ID())
	}
	if _, ok := doc[db.InternalIDField]; ok {
		t.Error("internal id must be projected out")
	}
	if tags, _ := doc.Values("tags"); len(tags) != 1 || tags[0] != "drink" {
		t.Errorf("tags = %v", tags)
	}
}

func TestFindOne_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:404")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c, testPrefix)
	_, err := s.FindOne(context.Background(), "all_recipes", "404")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestFindOne_CorruptDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:1")).
		Return(mock.Result(mock.RedisString(`{"id":1}`)))

	s := NewStoreForTest(c, testPrefix)
	_, err := s.FindOne(context.Background(), "all_recipes", "1")
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestInsert_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return len(cmd) == 4 && cmd[0] == "SET" && cmd[1] == "recipeq:favourites:7" && cmd[3] == "NX"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c, testPrefix)
	err := s.Insert(context.Background(), "favourites", recipe.Document{"id": "7", "name": "Soup"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsert_Exists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SET"
		})).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c, testPrefix)
	err := s.Insert(context.Background(), "favourites", recipe.Document{"id": "7"})
	if !errors.Is(err, db.ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}
}

func TestInsert_MissingID(t *testing.T) {
	s := NewStoreForTest(nil, testPrefix)
	err := s.Insert(context.Background(), "favourites", recipe.Document{"name": "Soup"})
	if !errors.Is(err, db.ErrMissingDocumentID) {
		t.Fatalf("expected ErrMissingDocumentID, got %v", err)
	}
}

// isCompareAndSet matches the update script whether sent by hash or in full.
func isCompareAndSet(cmd []string) bool {
	return len(cmd) == 6 && (cmd[0] == "EVALSHA" || cmd[0] == "EVAL") && cmd[3] == "recipeq:all_recipes:1"
}

func TestUpdate_MergesFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	const stored = `{"_id":"u","id":"1","name":"Old","yields":"2"}`
	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:1")).
		Return(mock.Result(mock.RedisString(stored)))

	var expected, written string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(isCompareAndSet)).
		DoAndReturn(func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
			expected, written = cmd.Commands()[4], cmd.Commands()[5]
			return mock.Result(mock.RedisInt64(1))
		})

	s := NewStoreForTest(c, testPrefix)
	err := s.Update(context.Background(), "all_recipes", "1", recipe.Document{"name": "New", "id": "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expected != stored {
		t.Errorf("compared against %q, want the value read", expected)
	}

	doc, err := db.DecodeDocument([]byte(written))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if name, _ := doc.Scalar("name"); name != "New" {
		t.Errorf("name = %q", name)
	}
	if y, _ := doc.Scalar("yields"); y != "2" {
		t.Errorf("yields = %q, want untouched", y)
	}
	if doc.ID() != "1" {
		t.Errorf("id changed to %q", doc.ID())
	}
	if doc[db.InternalIDField] != "u" {
		t.Errorf("internal id changed to %v", doc[db.InternalIDField])
	}
}

func TestUpdate_RetriesOnConcurrentChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:1")).
			Return(mock.Result(mock.RedisString(`{"_id":"u","id":"1","name":"Old"}`))),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(isCompareAndSet)).
			Return(mock.Result(mock.RedisInt64(0))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:1")).
			Return(mock.Result(mock.RedisString(`{"_id":"u","id":"1","name":"Old","yields":"6"}`))),
	)

	var written string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(isCompareAndSet)).
		DoAndReturn(func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
			written = cmd.Commands()[5]
			return mock.Result(mock.RedisInt64(1))
		})

	s := NewStoreForTest(c, testPrefix)
	if err := s.Update(context.Background(), "all_recipes", "1", recipe.Document{"name": "New"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := db.DecodeDocument([]byte(written))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if y, _ := doc.Scalar("yields"); y != "6" {
		t.Errorf("yields = %q, want the concurrent write kept", y)
	}
	if name, _ := doc.Scalar("name"); name != "New" {
		t.Errorf("name = %q", name)
	}
}

func TestUpdate_GivesUpAfterRepeatedConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:1")).
		Return(mock.Result(mock.RedisString(`{"_id":"u","id":"1"}`))).
		Times(maxUpdateAttempts)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(isCompareAndSet)).
		Return(mock.Result(mock.RedisInt64(0))).
		Times(maxUpdateAttempts)

	s := NewStoreForTest(c, testPrefix)
	err := s.Update(context.Background(), "all_recipes", "1", recipe.Document{"name": "x"})
	if !errors.Is(err, errUpdateConflict) {
		t.Fatalf("expected errUpdateConflict, got %v", err)
	}
}

func TestUpdate_DeletedBeforeWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:1")).
		Return(mock.Result(mock.RedisString(`{"_id":"u","id":"1"}`)))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(isCompareAndSet)).
		Return(mock.Result(mock.RedisInt64(-1)))

	s := NewStoreForTest(c, testPrefix)
	err := s.Update(context.Background(), "all_recipes", "1", recipe.Document{"name": "x"})
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "recipeq:all_recipes:1")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c, testPrefix)
	err := s.Update(context.Background(), "all_recipes", "1", recipe.Document{"name": "x"})
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		deleted int64
		wantErr error
	}{
		{"existing", 1, nil},
		{"missing", 0, db.ErrKeyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.Match("DEL", "recipeq:favourites:3")).
				Return(mock.Result(mock.RedisInt64(tt.deleted)))

			s := NewStoreForTest(c, testPrefix)
			err := s.Delete(context.Background(), "favourites", "3")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// --- cursor tests ---

func TestFind_FiltersAcrossPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	first := true
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN" && cmd[3] == "recipeq:all_recipes:*"
		})).
		DoAndReturn(func(_ context.Context, _ rueidis.Completed) rueidis.RedisResult {
			if first {
				first = false
				return mock.Result(mock.RedisArray(
					mock.RedisInt64(42),
					mock.RedisArray(mock.RedisString("recipeq:all_recipes:1"), mock.RedisString("recipeq:all_recipes:2")),
				))
			}
			return mock.Result(mock.RedisArray(
				mock.RedisInt64(0),
				// repeated key from the first page
				mock.RedisArray(mock.RedisString("recipeq:all_recipes:2"), mock.RedisString("recipeq:all_recipes:3")),
			))
		}).Times(2)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("MGET", "recipeq:all_recipes:1", "recipeq:all_recipes:2")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString(`{"_id":"a","id":"1","cook time":"45"}`),
			mock.RedisString(`{"_id":"b","id":"2","cook time":"10"}`),
		)))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("MGET", "recipeq:all_recipes:3")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString(`{"_id":"c","id":"3","cook time":"31"}`),
		)))

	s := NewStoreForTest(c, testPrefix)
	cur, err := s.Find(context.Background(), "all_recipes", predicate.Single(predicate.NewGt("cook time", 30)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs, err := db.Collect(context.Background(), cur)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(docs) != 2 || docs[0].ID() != "1" || docs[1].ID() != "3" {
		t.Fatalf("unexpected docs: %v", docs)
	}
	for _, d := range docs {
		if _, ok := d[db.InternalIDField]; ok {
			t.Error("internal id leaked")
		}
	}
}

func TestFind_SkipsVanishedKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(mock.RedisString("recipeq:favourites:1"), mock.RedisString("recipeq:favourites:2")),
		)))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "MGET" })).
		Return(mock.Result(mock.RedisArray(
			mock.RedisNil(),
			mock.RedisString(`{"id":"2","name":"Tea"}`),
		)))

	s := NewStoreForTest(c, testPrefix)
	cur, _ := s.Find(context.Background(), "favourites", predicate.Predicate{})
	docs, err := db.Collect(context.Background(), cur)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(docs) != 1 || docs[0].ID() != "2" {
		t.Fatalf("unexpected docs: %v", docs)
	}
}

func TestFind_EmptyCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0), mock.RedisArray())))

	s := NewStoreForTest(c, testPrefix)
	cur, _ := s.Find(context.Background(), "favourites", predicate.Predicate{})
	if cur.Next(context.Background()) {
		t.Fatal("expected no documents")
	}
	if cur.Err() != nil {
		t.Fatalf("unexpected error: %v", cur.Err())
	}
}

func TestFind_ScanError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, testPrefix)
	cur, _ := s.Find(context.Background(), "favourites", predicate.Predicate{})
	_, err := db.Collect(context.Background(), cur)
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
