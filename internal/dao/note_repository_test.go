package dao

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/internal/model"
	"github.com/haierkeys/idea-inbox-service/pkg/writequeue"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (domain.NoteRepository, *Dao) {
	t.Helper()

	cfg := DatabaseConfig{
		Type:        "sqlite",
		Path:        filepath.Join(t.TempDir(), "db", "inbox.sqlite3"),
		AutoMigrate: true,
	}
	db, err := NewDBEngine(cfg)
	require.NoError(t, err)

	wq := writequeue.New(nil, nil)
	d := New(db, context.Background(), WithConfig(&cfg), WithWriteQueue(wq))
	require.NoError(t, d.Migrate())

	t.Cleanup(func() {
		_ = wq.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewNoteRepository(d), d
}

func strPtr(s string) *string { return &s }

func TestNoteRepository_Create(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, domain.NewNote("Buy milk", strPtr("Groceries"), []string{"errand"}))
	require.NoError(t, err)
	assert.Positive(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	assert.Equal(t, "Groceries", *n.Title)
	assert.Equal(t, []string{"errand"}, n.Tags)

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Content, got.Content)
	assert.Equal(t, n.Tags, got.Tags)
	assert.True(t, n.CreatedAt.Equal(got.CreatedAt))
}

func TestNoteRepository_CreateRejectsBlankContent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, content := range []string{"", "  ", "\n\t"} {
		n, err := repo.Create(ctx, domain.NewNote(content, nil, nil))
		assert.ErrorIs(t, err, domain.ErrContentEmpty)
		assert.Nil(t, n)
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNoteRepository_CreateWithoutTitleOrTags(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, &domain.Note{Content: "just a thought"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Title)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}

func TestNoteRepository_ListAllNewestFirst(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, c := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, domain.NewNote(c, nil, nil))
		require.NoError(t, err)
	}

	list, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
	assert.Equal(t, "first", list[2].Content)
}

func TestNoteRepository_ListAllEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	list, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestNoteRepository_DeleteIsIdempotent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, domain.NewNote("x", nil, nil))
	require.NoError(t, err)

	existed, err := repo.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, existed)

	existed, err = repo.Delete(ctx, 999999)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = repo.GetByID(ctx, n.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepository_DeleteAll(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := repo.Create(ctx, domain.NewNote("n", nil, nil))
		require.NoError(t, err)
	}

	removed, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	removed, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNoteRepository_MalformedTagsDecodeEmpty(t *testing.T) {
	repo, d := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Create(ctx, domain.NewNote("x", nil, []string{"a"}))
	require.NoError(t, err)

	require.NoError(t, d.Db.Model(&model.Note{}).Where("id = ?", n.ID).Update("tags", "{not json").Error)

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Tags)
}

// 属性测试：任意创建序列的列表结果按创建时间倒序，且与 ID 倒序一致
func TestProperty_ListAllOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("listAll is newest first and consistent with ids", prop.ForAll(
		func(contents []string) bool {
			repo, _ := newTestRepo(t)
			ctx := context.Background()

			for _, c := range contents {
				if _, err := repo.Create(ctx, domain.NewNote(c, nil, []string{c})); err != nil {
					t.Logf("create failed: %v", err)
					return false
				}
			}

			list, err := repo.ListAll(ctx)
			if err != nil || len(list) != len(contents) {
				return false
			}
			for i := 1; i < len(list); i++ {
				if list[i-1].CreatedAt.Before(list[i].CreatedAt) {
					t.Logf("created_at out of order at %d", i)
					return false
				}
				if list[i-1].ID <= list[i].ID {
					t.Logf("id out of order at %d", i)
					return false
				}
			}
			// newest first means reversed insertion order
			for i, n := range list {
				if n.Content != contents[len(contents)-1-i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.Identifier()),
	))

	properties.TestingRun(t)
}

// assertOrdered 校验列表按 created_at 倒序、id 严格倒序且无重复
func assertOrdered(list []*domain.Note) error {
	for i := 1; i < len(list); i++ {
		if list[i-1].CreatedAt.Before(list[i].CreatedAt) {
			return fmt.Errorf("created_at out of order at %d", i)
		}
		if list[i-1].ID <= list[i].ID {
			return fmt.Errorf("id out of order at %d: %d then %d", i, list[i-1].ID, list[i].ID)
		}
	}
	return nil
}

func TestNoteRepository_ConcurrentCreateListDeleteAll(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const writers, perWriter = 16, 8

	var (
		mu      sync.Mutex
		created []*domain.Note
		errs    []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				n, err := repo.Create(ctx, domain.NewNote(fmt.Sprintf("writer %d note %d", w, i), nil, []string{"w"}))
				if err != nil {
					record(err)
					return
				}
				mu.Lock()
				created = append(created, n)
				mu.Unlock()
			}
		}(w)
	}

	// 并发读取：每个快照都必须有序
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				list, err := repo.ListAll(ctx)
				if err == nil {
					err = assertOrdered(list)
				}
				if err != nil {
					record(err)
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := repo.DeleteAll(ctx); err != nil {
			record(err)
		}
	}()

	wg.Wait()
	require.Empty(t, errs)
	require.Len(t, created, writers*perWriter)

	// ids unique, created_at monotonic with id
	sort.Slice(created, func(i, j int) bool { return created[i].ID < created[j].ID })
	for i := 1; i < len(created); i++ {
		require.Less(t, created[i-1].ID, created[i].ID)
		require.False(t, created[i].CreatedAt.Before(created[i-1].CreatedAt), "created_at went backwards at id %d", created[i].ID)
	}

	final, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.NoError(t, assertOrdered(final))

	ids := make(map[int64]bool, len(created))
	for _, n := range created {
		ids[n.ID] = true
	}
	for _, n := range final {
		assert.True(t, ids[n.ID], "unexpected id %d", n.ID)
	}
}
