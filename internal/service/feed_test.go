package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/BloggingApp/feed-service/internal/dto"
	"github.com/stretchr/testify/require"
)

func TestFeedService_NewPostPlacement(t *testing.T) {
	services, st, _ := newTestService()
	ctx := context.Background()

	alice := st.addUser("alice")
	cats := st.addGroup("Cats", "cats")
	dogs := st.addGroup("Dogs", "dogs")

	st.addPost(alice.ID, nil, "older post")

	created, err := services.Post.Create(ctx, alice.ID, dto.CreatePostRequest{Content: "hello from cats", GroupID: &cats.ID})
	require.NoError(t, err)

	global, err := services.Feed.Global(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, global.Items)
	require.Equal(t, created.ID, global.Items[0].Post.ID)

	author, err := services.Feed.Author(ctx, "alice", nil, 1)
	require.NoError(t, err)
	require.Equal(t, created.ID, author.Page.Items[0].Post.ID)

	catsFeed, err := services.Feed.Group(ctx, "cats", 1)
	require.NoError(t, err)
	require.Len(t, catsFeed.Page.Items, 1)
	require.Equal(t, created.ID, catsFeed.Page.Items[0].Post.ID)
	require.Equal(t, "cats", catsFeed.Page.Items[0].Group.Slug)

	dogsFeed, err := services.Feed.Group(ctx, dogs.Slug, 1)
	require.NoError(t, err)
	require.Empty(t, dogsFeed.Page.Items)
}

func TestFeedService_NewestFirstOrdering(t *testing.T) {
	services, st, _ := newTestService()
	ctx := context.Background()

	alice := st.addUser("alice")
	for i := 0; i < 3; i++ {
		st.addPost(alice.ID, nil, fmt.Sprintf("post %d", i))
	}

	global, err := services.Feed.Global(ctx, 1)
	require.NoError(t, err)
	require.Len(t, global.Items, 3)
	require.Greater(t, global.Items[0].Post.ID, global.Items[1].Post.ID)
	require.Greater(t, global.Items[1].Post.ID, global.Items[2].Post.ID)
}

func TestFeedService_FollowingFeed(t *testing.T) {
	services, st, _ := newTestService()
	ctx := context.Background()

	reader := st.addUser("reader")
	alice := st.addUser("alice")
	bob := st.addUser("bob")

	st.addPost(alice.ID, nil, "by alice")
	st.addPost(bob.ID, nil, "by bob")

	require.NoError(t, services.Follow.Follow(ctx, reader.ID, "alice"))

	feed, err := services.Feed.Following(ctx, reader.ID, 1)
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	require.Equal(t, "alice", feed.Items[0].Author.Username)

	// A post published after the follow shows up on the next fetch.
	created, err := services.Post.Create(ctx, alice.ID, dto.CreatePostRequest{Content: "fresh from alice"})
	require.NoError(t, err)

	feed, err = services.Feed.Following(ctx, reader.ID, 1)
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	require.Equal(t, created.ID, feed.Items[0].Post.ID)
}

func TestFeedService_FollowingFeedExcludesAfterUnfollow(t *testing.T) {
	services, st, _ := newTestService()
	ctx := context.Background()

	reader := st.addUser("reader")
	alice := st.addUser("alice")
	st.addPost(alice.ID, nil, "by alice")

	require.NoError(t, services.Follow.Follow(ctx, reader.ID, "alice"))

	feed, err := services.Feed.Following(ctx, reader.ID, 1)
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)

	require.NoError(t, services.Follow.Unfollow(ctx, reader.ID, "alice"))

	feed, err = services.Feed.Following(ctx, reader.ID, 1)
	require.NoError(t, err)
	require.Empty(t, feed.Items)
}

func TestFeedService_AuthorFeedMetadata(t *testing.T) {
	services, st, _ := newTestService()
	ctx := context.Background()

	viewer := st.addUser("viewer")
	alice := st.addUser("alice")
	alice.DisplayName = "Alice A."
	st.addPost(alice.ID, nil, "one")
	st.addPost(alice.ID, nil, "two")

	// Anonymous viewers get no following flag at all.
	feed, err := services.Feed.Author(ctx, "alice", nil, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), feed.PostsCount)
	require.Equal(t, "alice", feed.Author.Username)
	require.Nil(t, feed.IsFollowing)

	// Set profile fields come through as pointers, unset ones stay null.
	require.NotNil(t, feed.Author.DisplayName)
	require.Equal(t, "Alice A.", *feed.Author.DisplayName)
	require.Nil(t, feed.Author.AvatarURL)

	feed, err = services.Feed.Author(ctx, "alice", &viewer.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, feed.IsFollowing)
	require.False(t, *feed.IsFollowing)

	require.NoError(t, services.Follow.Follow(ctx, viewer.ID, "alice"))

	feed, err = services.Feed.Author(ctx, "alice", &viewer.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, feed.IsFollowing)
	require.True(t, *feed.IsFollowing)
}

func TestFeedService_NotFound(t *testing.T) {
	services, st, _ := newTestService()
	ctx := context.Background()

	st.addUser("alice")

	_, err := services.Feed.Group(ctx, "no-such-group", 1)
	require.ErrorIs(t, err, ErrGroupNotFound)

	_, err = services.Feed.Author(ctx, "nobody", nil, 1)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestFeedService_OutOfRangePageClamps(t *testing.T) {
	services, st, _ := newTestService()
	ctx := context.Background()

	alice := st.addUser("alice")
	for i := 0; i < 13; i++ {
		st.addPost(alice.ID, nil, fmt.Sprintf("post %d", i))
	}

	page, err := services.Feed.Global(ctx, 999)
	require.NoError(t, err)
	require.Equal(t, 2, page.Number)
	require.Len(t, page.Items, 3)
	require.False(t, page.HasNext)
	require.True(t, page.HasPrevious)

	page, err = services.Feed.Global(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 10)
	require.True(t, page.HasNext)
}
