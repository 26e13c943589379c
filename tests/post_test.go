package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
	"github.com/campusworks-org/backend/internal/services/post"
	"github.com/campusworks-org/backend/tests/fixtures"
)

func newPostService(t *testing.T) services.PostService {
	t.Helper()
	return post.NewPostService(dbClient, nil, post.Config{}, zap.NewNop())
}

func TestCreateAndGetPost(t *testing.T) {
	author, err := fixtures.CreateProfile(dbClient)
	require.NoError(t, err)
	service := newPostService(t)

	created, err := service.CreatePost(context.Background(), author.ID.String(), services.CreatePostInput{
		Title:       "Photographer for a grad shoot",
		Description: "One hour session at the quad.",
		Rate:        "$60 flat",
		Location:    "Main quad",
		Skills:      []string{"photography"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(orm.PostStatusOpenToWork), created.Status)

	fetched, err := service.GetPost(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Photographer for a grad shoot", fetched.Title)
	assert.Equal(t, author.FullName, fetched.Author.FullName)
}

func TestCreatePostValidation(t *testing.T) {
	author, err := fixtures.CreateProfile(dbClient)
	require.NoError(t, err)
	service := newPostService(t)

	_, err = service.CreatePost(context.Background(), author.ID.String(), services.CreatePostInput{
		Title: "Missing everything else",
	})
	assert.ErrorIs(t, err, lib.ErrValidation)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	created, author, err := fixtures.CreatePost(dbClient)
	require.NoError(t, err)
	stranger, err := fixtures.CreateProfile(dbClient)
	require.NoError(t, err)
	service := newPostService(t)

	newTitle := "Updated title"
	_, err = service.UpdatePost(context.Background(), created.ID.String(), stranger.ID.String(), services.UpdatePostInput{
		Title: &newTitle,
	})
	assert.ErrorIs(t, err, lib.ErrForbidden)

	updated, err := service.UpdatePost(context.Background(), created.ID.String(), author.ID.String(), services.UpdatePostInput{
		Title: &newTitle,
	})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)

	badStatus := "NOT_A_STATUS"
	_, err = service.UpdatePost(context.Background(), created.ID.String(), author.ID.String(), services.UpdatePostInput{
		Status: &badStatus,
	})
	assert.ErrorIs(t, err, lib.ErrValidation)
}

func TestListPostsByAuthorPaginates(t *testing.T) {
	author, err := fixtures.CreateProfile(dbClient)
	require.NoError(t, err)
	service := newPostService(t)

	var created []string
	for i := 0; i < 5; i++ {
		post, err := service.CreatePost(context.Background(), author.ID.String(), services.CreatePostInput{
			Title:       fmt.Sprintf("Posting %d", i),
			Description: "Details inside.",
			Rate:        "$20/hr",
			Location:    "Library",
		})
		require.NoError(t, err)
		created = append(created, post.ID.String())
	}

	var seen []string
	cursor := ""
	for {
		page, err := service.ListPosts(context.Background(), author.ID.String(), orm.PostSortRecent, 2, cursor)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, post := range page {
			seen = append(seen, post.ID.String())
		}
		cursor = page[len(page)-1].ID.String()
	}

	require.Len(t, seen, 5)
	for i, id := range seen {
		assert.Equal(t, created[len(created)-1-i], id, "recent feed is newest first")
	}
}
