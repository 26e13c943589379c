package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
)

// fakeStore is an in-memory EngagementStore with the same atomicity
// contract as the Postgres implementation: counter mutations and the
// conditional like insert/delete hold the lock for their whole operation.
type fakeStore struct {
	mu       sync.Mutex
	posts    map[string]*orm.Post
	likes    map[string]map[string]bool
	comments []*orm.Comment

	failNextIncrement bool
	incrementAttempts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts: make(map[string]*orm.Post),
		likes: make(map[string]map[string]bool),
	}
}

func (f *fakeStore) addPost(authorID uuid.UUID, imageURLs ...string) *orm.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	post := &orm.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     "Looking for a nail tech",
		Status:    string(orm.PostStatusOpenToWork),
		ImageURLs: imageURLs,
		CreatedAt: time.Now(),
	}
	f.posts[post.ID.String()] = post
	f.likes[post.ID.String()] = make(map[string]bool)
	return post
}

func (f *fakeStore) SelectPostByID(id string) (*orm.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *post
	return &copied, nil
}

func (f *fakeStore) SelectPostCounters(id string) (*orm.PostCounters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &orm.PostCounters{
		Views:        post.Views,
		LikeCount:    post.LikeCount,
		Applications: post.Applications,
	}, nil
}

func (f *fakeStore) IncrementPostViews(id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incrementAttempts++
	if f.failNextIncrement {
		f.failNextIncrement = false
		return 0, errors.New("connection reset")
	}
	post, ok := f.posts[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	post.Views++
	return post.Views, nil
}

func (f *fakeStore) IncrementPostApplications(id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	post.Applications++
	return post.Applications, nil
}

func (f *fakeStore) AdjustPostLikeCount(id string, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	post.LikeCount += delta
	if post.LikeCount < 0 {
		post.LikeCount = 0
	}
	return post.LikeCount, nil
}

func (f *fakeStore) InsertPostLike(like *orm.PostLike) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users, ok := f.likes[like.PostID.String()]
	if !ok {
		return false, errors.New("foreign key violation")
	}
	if users[like.UserID.String()] {
		return false, nil
	}
	users[like.UserID.String()] = true
	return true, nil
}

func (f *fakeStore) DeletePostLike(postID string, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users, ok := f.likes[postID]
	if !ok || !users[userID] {
		return false, nil
	}
	delete(users, userID)
	return true, nil
}

func (f *fakeStore) HasPostLike(postID string, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likes[postID][userID], nil
}

func (f *fakeStore) InsertComment(comment *orm.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[comment.PostID.String()]; !ok {
		return errors.New("foreign key violation")
	}
	comment.ID = uuid.New()
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeStore) SelectCommentsWithPagination(postID string, order lib.SortOrder, limit int, cursor string) ([]*orm.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*orm.Comment
	for _, comment := range f.comments {
		if comment.PostID.String() == postID {
			out = append(out, comment)
		}
	}
	// f.comments is already in insertion order, which is the oldest-first
	// presentation order.
	if order != lib.SortOldestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountCommentsByPostID(postID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, comment := range f.comments {
		if comment.PostID.String() == postID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) DeletePostCascade(post *orm.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := post.ID.String()
	if _, ok := f.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.posts, id)
	delete(f.likes, id)
	kept := f.comments[:0]
	for _, comment := range f.comments {
		if comment.PostID != post.ID {
			kept = append(kept, comment)
		}
	}
	f.comments = kept
	return nil
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (f *fakeDeduper) FirstView(ctx context.Context, postID string, sessionID string, window time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	key := postID + ":" + sessionID
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

type fakeImageStore struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeImageStore) DeleteFile(ctx context.Context, bucket string, key string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImageStore) ObjectKeyFromURL(bucket string, url string) string {
	prefix := "https://cdn.test/" + bucket + "/"
	if len(url) <= len(prefix) || url[:len(prefix)] != prefix {
		return ""
	}
	return url[len(prefix):]
}

func newTestService(store *fakeStore, policy ViewDedupPolicy, deduper ViewDeduper, images ImageStore) services.EngagementService {
	return NewEngagementService(store, deduper, nil, images, Config{
		ViewDedupPolicy: policy,
		ViewDedupWindow: time.Minute,
		ImageBucket:     "post-images",
	}, zap.NewNop())
}

func TestLikeIsIdempotent(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)
	user := uuid.NewString()

	first, err := service.Like(context.Background(), post.ID.String(), user)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, int64(1), first.Count)

	second, err := service.Like(context.Background(), post.ID.String(), user)
	require.NoError(t, err)
	assert.True(t, second.Liked)
	assert.Equal(t, int64(1), second.Count, "second like must not increment")
}

func TestLikeUnlikeLike(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)
	user := uuid.NewString()

	_, err := service.Like(context.Background(), post.ID.String(), user)
	require.NoError(t, err)

	unliked, err := service.Unlike(context.Background(), post.ID.String(), user)
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Equal(t, int64(0), unliked.Count)

	liked, err := service.Like(context.Background(), post.ID.String(), user)
	require.NoError(t, err)
	assert.True(t, liked.Liked)
	assert.Equal(t, int64(1), liked.Count, "net change after like/unlike/like is +1")
}

func TestUnlikeWithoutLikeIsIdempotent(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)

	result, err := service.Unlike(context.Background(), post.ID.String(), uuid.NewString())
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, int64(0), result.Count)
}

func TestConcurrentLikesFromDistinctUsers(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)

	const users = 50
	var waitGroup sync.WaitGroup
	errs := make(chan error, users)
	for i := 0; i < users; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, err := service.Like(context.Background(), post.ID.String(), uuid.NewString())
			errs <- err
		}()
	}
	waitGroup.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	counters, err := store.SelectPostCounters(post.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(users), counters.LikeCount, "no lost updates under concurrent likers")
}

func TestRecordViewNoDedup(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)

	var views int64
	var err error
	for i := 0; i < 10; i++ {
		views, err = service.RecordView(context.Background(), post.ID.String(), "session-1")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(10), views)
}

func TestRecordViewSessionDedup(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupSession, &fakeDeduper{}, nil)

	for i := 0; i < 5; i++ {
		_, err := service.RecordView(context.Background(), post.ID.String(), "session-1")
		require.NoError(t, err)
	}
	views, err := service.RecordView(context.Background(), post.ID.String(), "session-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), views, "one view per session within the window")
}

func TestRecordViewAnonymousNeverDeduped(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupSession, &fakeDeduper{}, nil)

	for i := 0; i < 3; i++ {
		_, err := service.RecordView(context.Background(), post.ID.String(), "")
		require.NoError(t, err)
	}
	counters, err := store.SelectPostCounters(post.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counters.Views)
}

func TestRecordViewDedupOutageStillCounts(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupSession, &fakeDeduper{err: errors.New("redis down")}, nil)

	views, err := service.RecordView(context.Background(), post.ID.String(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)
}

func TestRecordViewRetriesTransientFailure(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	store.failNextIncrement = true
	service := newTestService(store, ViewDedupNone, nil, nil)

	views, err := service.RecordView(context.Background(), post.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)
	assert.Equal(t, 2, store.incrementAttempts)
}

func TestRecordViewUnknownPost(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, ViewDedupNone, nil, nil)

	_, err := service.RecordView(context.Background(), uuid.NewString(), "")
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestAddCommentValidation(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)
	user := uuid.NewString()

	_, err := service.AddComment(context.Background(), post.ID.String(), user, "")
	assert.ErrorIs(t, err, lib.ErrValidation)

	_, err = service.AddComment(context.Background(), post.ID.String(), user, "   ")
	assert.ErrorIs(t, err, lib.ErrValidation)

	comment, err := service.AddComment(context.Background(), post.ID.String(), user, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", comment.Content, "comment text is trimmed")
}

func TestCommentsKeepInsertionOrder(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)
	user := uuid.NewString()

	for i := 0; i < 3; i++ {
		_, err := service.AddComment(context.Background(), post.ID.String(), user, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	comments, err := service.ListComments(context.Background(), post.ID.String(), lib.SortOldestFirst, 10, "")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i, comment := range comments {
		assert.Equal(t, fmt.Sprintf("comment %d", i), comment.Content)
	}
}

func TestCommentDoesNotTouchCounters(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)

	_, err := service.AddComment(context.Background(), post.ID.String(), uuid.NewString(), "hello")
	require.NoError(t, err)

	counters, err := store.SelectPostCounters(post.ID.String())
	require.NoError(t, err)
	assert.Equal(t, orm.PostCounters{}, *counters)
}

func TestDeletePostForbiddenForNonAuthor(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)

	err := service.DeletePost(context.Background(), post.ID.String(), uuid.NewString())
	assert.ErrorIs(t, err, lib.ErrForbidden)

	_, err = store.SelectPostByID(post.ID.String())
	assert.NoError(t, err, "post survives a forbidden delete")
}

func TestDeletePostRemovesEverything(t *testing.T) {
	store := newFakeStore()
	author := uuid.New()
	images := &fakeImageStore{}
	post := store.addPost(author,
		"https://cdn.test/post-images/a/1.png",
		"https://cdn.test/post-images/a/2.png",
		"https://elsewhere.test/3.png",
	)
	service := newTestService(store, ViewDedupNone, nil, images)

	_, err := service.Like(context.Background(), post.ID.String(), uuid.NewString())
	require.NoError(t, err)
	_, err = service.AddComment(context.Background(), post.ID.String(), uuid.NewString(), "hello")
	require.NoError(t, err)

	err = service.DeletePost(context.Background(), post.ID.String(), author.String())
	require.NoError(t, err)

	_, err = service.GetPostDetail(context.Background(), post.ID.String(), "")
	assert.ErrorIs(t, err, lib.ErrNotFound)
	assert.Equal(t, []string{"a/1.png", "a/2.png"}, images.deleted, "only owned objects are deleted")
}

func TestDeletePostSwallowsImageCleanupFailure(t *testing.T) {
	store := newFakeStore()
	author := uuid.New()
	images := &fakeImageStore{err: errors.New("bucket unreachable")}
	post := store.addPost(author, "https://cdn.test/post-images/a/1.png")
	service := newTestService(store, ViewDedupNone, nil, images)

	err := service.DeletePost(context.Background(), post.ID.String(), author.String())
	assert.NoError(t, err, "image cleanup failures are logged, not fatal")
}

func TestGetPostDetail(t *testing.T) {
	store := newFakeStore()
	post := store.addPost(uuid.New())
	service := newTestService(store, ViewDedupNone, nil, nil)
	viewer := uuid.NewString()

	_, err := service.Like(context.Background(), post.ID.String(), viewer)
	require.NoError(t, err)
	_, err = service.AddComment(context.Background(), post.ID.String(), viewer, "hello")
	require.NoError(t, err)

	detail, err := service.GetPostDetail(context.Background(), post.ID.String(), viewer)
	require.NoError(t, err)
	assert.Equal(t, post.ID, detail.Post.ID)
	assert.True(t, detail.LikedByViewer)
	assert.Equal(t, int64(1), detail.Counters.LikeCount)
	assert.Equal(t, int64(1), detail.CommentCount)
	require.Len(t, detail.Comments, 1)

	anonymous, err := service.GetPostDetail(context.Background(), post.ID.String(), "")
	require.NoError(t, err)
	assert.False(t, anonymous.LikedByViewer)
}
