package database_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/database"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) database.Store {
		return database.NewMemoryStore()
	})
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FILETREE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FILETREE_TEST_MONGO_URI env not set")
	}
	runStoreSuite(t, func(t *testing.T) database.Store {
		ctx := context.Background()
		dbName := fmt.Sprintf("filetree_test_%d", time.Now().UnixNano())
		s, err := database.NewMongoStore(ctx, uri, dbName)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close(ctx) })
		return s
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("FILETREE_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("FILETREE_TEST_POSTGRES_URL env not set")
	}
	runStoreSuite(t, func(t *testing.T) database.Store {
		ctx := context.Background()
		s, err := database.NewPostgresDB(dsn)
		require.NoError(t, err)
		require.NoError(t, s.EnsureSchema(ctx))
		t.Cleanup(func() { s.Close(ctx) })
		return s
	})
}

// Each subtest uses its own owner so backends that share a database do not
// see each other's rows.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) database.Store) {
	ctx := context.Background()
	owner := func(t *testing.T) string {
		return fmt.Sprintf("user-%s-%d", t.Name(), time.Now().UnixNano())
	}

	t.Run("InsertAndFind", func(t *testing.T) {
		s := newStore(t)
		me := owner(t)

		id, err := s.Insert(ctx, &models.FileRecord{OwnerID: me, Name: "docs", Kind: models.KindFolder})
		require.NoError(t, err)
		_, err = models.ParseFileID(string(id))
		require.NoError(t, err, "store ids must parse at the boundary")

		got, err := s.FindByID(ctx, id, me)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "docs", got.Name)
		assert.Equal(t, models.RootID, got.ParentID)
		assert.Empty(t, got.LocalPath)
		assert.False(t, got.IsPublic)

		other, err := s.FindByID(ctx, id, "someone-else")
		require.NoError(t, err)
		assert.Nil(t, other, "owner scoped lookup must not leak")
	})

	t.Run("FindOneByKind", func(t *testing.T) {
		s := newStore(t)
		me := owner(t)

		fileID, err := s.Insert(ctx, &models.FileRecord{OwnerID: me, Name: "a.txt", Kind: models.KindFile, LocalPath: "/tmp/x"})
		require.NoError(t, err)

		got, err := s.FindOne(ctx, database.Filter{ID: fileID, Kind: models.KindFolder})
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = s.FindOne(ctx, database.Filter{ID: fileID})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "/tmp/x", got.LocalPath)

		missing, err := s.FindOne(ctx, database.Filter{ID: models.NewID()})
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("PublicOrOwned", func(t *testing.T) {
		s := newStore(t)
		me := owner(t)

		id, err := s.Insert(ctx, &models.FileRecord{OwnerID: me, Name: "a.txt", Kind: models.KindFile, LocalPath: "/tmp/a"})
		require.NoError(t, err)

		got, err := s.FindPublicOrOwned(ctx, id, "stranger")
		require.NoError(t, err)
		assert.Nil(t, got)

		_, err = s.UpdateField(ctx, id, me, models.FieldIsPublic, true)
		require.NoError(t, err)

		got, err = s.FindPublicOrOwned(ctx, id, "stranger")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsPublic)
	})

	t.Run("ListPaging", func(t *testing.T) {
		s := newStore(t)
		me := owner(t)

		folder, err := s.Insert(ctx, &models.FileRecord{OwnerID: me, Name: "docs", Kind: models.KindFolder})
		require.NoError(t, err)
		for i := 0; i < 25; i++ {
			_, err := s.Insert(ctx, &models.FileRecord{
				OwnerID:   me,
				Name:      fmt.Sprintf("f%02d", i),
				Kind:      models.KindFile,
				ParentID:  folder,
				LocalPath: fmt.Sprintf("/tmp/f%02d", i),
			})
			require.NoError(t, err)
		}

		first, err := s.List(ctx, me, folder, 0, database.DefaultPageSize)
		require.NoError(t, err)
		require.Len(t, first, 20)
		assert.Equal(t, "f00", first[0].Name)
		assert.Equal(t, "f19", first[19].Name)

		second, err := s.List(ctx, me, folder, 1, database.DefaultPageSize)
		require.NoError(t, err)
		require.Len(t, second, 5)
		assert.Equal(t, "f20", second[0].Name)

		_, err = s.List(ctx, me, folder, 2, database.DefaultPageSize)
		assert.ErrorIs(t, err, models.ErrPageOutOfRange)
		assert.ErrorIs(t, err, models.ErrNotFound)

		root, err := s.List(ctx, me, models.RootID, 0, database.DefaultPageSize)
		require.NoError(t, err)
		require.Len(t, root, 1)
		assert.Equal(t, folder, root[0].ID)
	})

	t.Run("ListEmptyOwner", func(t *testing.T) {
		s := newStore(t)
		me := owner(t)

		got, err := s.List(ctx, me, models.RootID, 0, database.DefaultPageSize)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = s.List(ctx, me, models.RootID, 5, database.DefaultPageSize)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ListHugePage", func(t *testing.T) {
		s := newStore(t)
		me := owner(t)
		huge := math.MaxInt / 10

		got, err := s.List(ctx, me, models.RootID, huge, database.DefaultPageSize)
		require.NoError(t, err)
		assert.Empty(t, got)

		for i := 0; i < 3; i++ {
			_, err := s.Insert(ctx, &models.FileRecord{OwnerID: me, Name: fmt.Sprintf("d%d", i), Kind: models.KindFolder})
			require.NoError(t, err)
		}
		got, err = s.List(ctx, me, models.RootID, huge, database.DefaultPageSize)
		assert.ErrorIs(t, err, models.ErrPageOutOfRange)
		assert.Empty(t, got)
	})

	t.Run("ListNegativePage", func(t *testing.T) {
		s := newStore(t)
		_, err := s.List(ctx, owner(t), models.RootID, -1, database.DefaultPageSize)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("UpdateField", func(t *testing.T) {
		s := newStore(t)
		me := owner(t)

		id, err := s.Insert(ctx, &models.FileRecord{OwnerID: me, Name: "a.txt", Kind: models.KindFile, LocalPath: "/tmp/a"})
		require.NoError(t, err)

		updated, err := s.UpdateField(ctx, id, me, models.FieldIsPublic, true)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.True(t, updated.IsPublic)

		updated, err = s.UpdateField(ctx, id, me, models.FieldIsPublic, false)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.False(t, updated.IsPublic)

		notMine, err := s.UpdateField(ctx, id, "someone-else", models.FieldIsPublic, true)
		require.NoError(t, err)
		assert.Nil(t, notMine)

		_, err = s.UpdateField(ctx, id, me, "name", "renamed")
		assert.Error(t, err)
	})

	t.Run("Count", func(t *testing.T) {
		s := newStore(t)
		before, err := s.Count(ctx)
		require.NoError(t, err)

		_, err = s.Insert(ctx, &models.FileRecord{OwnerID: owner(t), Name: "x", Kind: models.KindFolder})
		require.NoError(t, err)

		after, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+1, after)
		assert.NoError(t, s.Ping(ctx))
	})
}
