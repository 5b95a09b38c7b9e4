package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

func TestSaveAndGetRoundTrip(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc, err := aggregates.NewDocument("user-1", "Round Trip")
	require.NoError(t, err)
	_, err = doc.AddChild(doc.RootID(), "child")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, doc))

	loaded, err := repo.GetByID(ctx, "user-1", doc.ID())
	require.NoError(t, err)
	assert.Equal(t, doc.Name(), loaded.Name())
	assert.True(t, doc.Root().Equal(loaded.Root()))
	assert.Equal(t, doc.Version(), loaded.Version())
}

func TestGetReturnsDetachedCopy(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc, err := aggregates.NewDocument("user-1", "Isolation")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, doc))

	first, err := repo.GetByID(ctx, "user-1", doc.ID())
	require.NoError(t, err)
	_, err = first.AddChild(first.RootID(), "local edit")
	require.NoError(t, err)

	second, err := repo.GetByID(ctx, "user-1", doc.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, second.NodeCount(), "store is unaffected by caller mutations")
}

func TestGetMissingDocument(t *testing.T) {
	repo := NewDocumentRepository()

	_, err := repo.GetByID(context.Background(), "user-1", aggregates.NewDocumentID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestListByOwnerFiltersAndSorts(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	first, err := aggregates.NewDocument("user-1", "First")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := aggregates.NewDocument("user-1", "Second")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	other, err := aggregates.NewDocument("user-2", "Not Mine")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	summaries, err := repo.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Second", summaries[0].Name, "most recently updated first")
}

func TestDelete(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc, err := aggregates.NewDocument("user-1", "Doomed")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, doc))

	require.NoError(t, repo.Delete(ctx, "user-1", doc.ID()))
	assert.Equal(t, 0, repo.Len())

	err = repo.Delete(ctx, "user-1", doc.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSaveViewportLeavesTreeAlone(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc, err := aggregates.NewDocument("user-1", "Viewport")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, doc))

	// The live document gains a node that is never saved, then its
	// viewport is written. Only the viewport may change in the store.
	_, err = doc.AddChild(doc.RootID(), "unsaved")
	require.NoError(t, err)
	doc.SetViewport(valueobjects.Viewport{Position: valueobjects.Point{X: -50, Y: -50}, Scale: 1.5})

	require.NoError(t, repo.SaveViewport(ctx, doc))

	loaded, err := repo.GetByID(ctx, "user-1", doc.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.NodeCount())
	assert.Equal(t, 1.5, loaded.Viewport().Scale)
	assert.Equal(t, -50.0, loaded.Viewport().Position.X)
}
