package testutil

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
)

// ErrInjected is returned by stubs configured to fail.
var ErrInjected = errors.New("injected failure")

// MediaRepoStub is an in-memory media repository.
type MediaRepoStub struct {
	mu    sync.Mutex
	items map[string]*entity.Media

	FailDelete bool
	FailLookup bool
}

func NewMediaRepoStub() *MediaRepoStub {
	return &MediaRepoStub{items: make(map[string]*entity.Media)}
}

var _ contract.IMediaRepository = (*MediaRepoStub)(nil)

func cloneMedia(m *entity.Media, withPayload bool) *entity.Media {
	c := *m
	if withPayload {
		c.Payload = slices.Clone(m.Payload)
	} else {
		c.Payload = nil
	}
	return &c
}

// Put seeds a record directly.
func (s *MediaRepoStub) Put(m *entity.Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[m.ID] = cloneMedia(m, true)
}

func (s *MediaRepoStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MediaRepoStub) CreateMedia(_ context.Context, media *entity.Media) error {
	s.Put(media)
	return nil
}

func (s *MediaRepoStub) GetMediaByID(_ context.Context, mediaID string) (*entity.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[mediaID]
	if !ok {
		return nil, contract.ErrMediaNotFound
	}
	return cloneMedia(m, true), nil
}

func (s *MediaRepoStub) GetMediaMetaByID(_ context.Context, mediaID string) (*entity.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[mediaID]
	if !ok {
		return nil, contract.ErrMediaNotFound
	}
	return cloneMedia(m, false), nil
}

func (s *MediaRepoStub) ListMediaByOwner(_ context.Context, ownerID string, category *entity.MediaCategory) ([]*entity.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*entity.Media{}
	for _, m := range s.items {
		if m.OwnerID != ownerID || (category != nil && m.Category != *category) {
			continue
		}
		out = append(out, cloneMedia(m, false))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MediaRepoStub) DeleteOwnedMedia(_ context.Context, mediaID, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete {
		return false, ErrInjected
	}
	m, ok := s.items[mediaID]
	if !ok || m.OwnerID != ownerID {
		return false, nil
	}
	delete(s.items, mediaID)
	return true, nil
}

func (s *MediaRepoStub) MediaExists(_ context.Context, mediaID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[mediaID]
	return ok, nil
}

func (s *MediaRepoStub) ExistingMediaIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLookup {
		return nil, ErrInjected
	}
	found := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			found[id] = struct{}{}
		}
	}
	return found, nil
}

func (s *MediaRepoStub) ListMediaIDsByCategory(_ context.Context, category entity.MediaCategory) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for id, m := range s.items {
		if m.Category == category {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MediaRepoStub) DeleteMediaByIDs(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

func (s *MediaRepoStub) CountMediaByCategory(_ context.Context) (map[entity.MediaCategory]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[entity.MediaCategory]int64)
	for _, c := range entity.MediaCategories() {
		counts[c] = 0
	}
	for _, m := range s.items {
		counts[m.Category]++
	}
	return counts, nil
}

func (s *MediaRepoStub) TotalPayloadBytes(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.items {
		n += int64(len(m.Payload))
	}
	return n, nil
}

// PostRepoStub is an in-memory post repository. Every method takes the lock
// for its whole body, which gives the same atomicity as a single document
// update in the real store.
type PostRepoStub struct {
	mu    sync.Mutex
	posts map[string]*entity.Post

	// FailWritesFor makes conditional writes on these post ids fail.
	FailWritesFor map[string]bool
	// BeforeConditionalWrite runs, without the lock, before each auditor write.
	BeforeConditionalWrite func(postID string)

	unreadable map[string]error
}

func NewPostRepoStub() *PostRepoStub {
	return &PostRepoStub{posts: make(map[string]*entity.Post), FailWritesFor: map[string]bool{}}
}

var _ contract.IPostRepository = (*PostRepoStub)(nil)

func clonePost(p *entity.Post) *entity.Post {
	c := *p
	c.LikedBy = slices.Clone(p.LikedBy)
	if c.LikedBy == nil {
		c.LikedBy = []string{}
	}
	return &c
}

// Put seeds a post directly, bypassing validation, as legacy data would be.
func (s *PostRepoStub) Put(p *entity.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = clonePost(p)
}

// Get returns a post by id, or nil.
func (s *PostRepoStub) Get(postID string) *entity.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil
	}
	return clonePost(p)
}

func (s *PostRepoStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func (s *PostRepoStub) byExternalRef(ref string) *entity.Post {
	for _, p := range s.posts {
		if p.ExternalRef == ref {
			return p
		}
	}
	return nil
}

func (s *PostRepoStub) CreatePost(_ context.Context, post *entity.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byExternalRef(post.ExternalRef) != nil {
		return contract.ErrDuplicateExternalRef
	}
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *PostRepoStub) GetPostByExternalRef(_ context.Context, externalRef string) (*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byExternalRef(externalRef)
	if p == nil {
		return nil, contract.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (s *PostRepoStub) sorted() []*entity.Post {
	out := make([]*entity.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *PostRepoStub) ListFeed(_ context.Context, page, limit int) ([]entity.FeedItem, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sorted()
	start := (page - 1) * limit
	items := []entity.FeedItem{}
	for i := start; i < len(all) && i < start+limit; i++ {
		items = append(items, entity.FeedItem{Post: *all[i]})
	}
	return items, int64(len(all)), nil
}

func (s *PostRepoStub) ListPostsByOwner(_ context.Context, ownerID string) ([]*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*entity.Post{}
	for _, p := range s.sorted() {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PostRepoStub) UpdateDescription(_ context.Context, externalRef, ownerID string, description *string) (*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byExternalRef(externalRef)
	if p == nil || p.OwnerID != ownerID {
		return nil, contract.ErrPostNotFound
	}
	p.Description = description
	p.UpdatedAt = time.Now().UTC()
	return clonePost(p), nil
}

func (s *PostRepoStub) DeletePost(_ context.Context, externalRef, ownerID string) (*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byExternalRef(externalRef)
	if p == nil || p.OwnerID != ownerID {
		return nil, contract.ErrPostNotFound
	}
	delete(s.posts, p.ID)
	return p, nil
}

func (s *PostRepoStub) ToggleLike(_ context.Context, externalRef, userID string) (*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byExternalRef(externalRef)
	if p == nil {
		return nil, contract.ErrPostNotFound
	}
	if i := slices.Index(p.LikedBy, userID); i >= 0 {
		p.LikedBy = slices.Delete(p.LikedBy, i, i+1)
	} else {
		p.LikedBy = append(p.LikedBy, userID)
	}
	p.LikeCount = len(p.LikedBy)
	return clonePost(p), nil
}

// PutUnreadable seeds a stored record that fails to decode, as a document
// written with the wrong field types would.
func (s *PostRepoStub) PutUnreadable(id string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unreadable == nil {
		s.unreadable = make(map[string]error)
	}
	s.unreadable[id] = cause
}

type iterEntry struct {
	id   string
	post *entity.Post
	err  error
}

// IteratePosts walks a snapshot so fn may call back into the stub.
func (s *PostRepoStub) IteratePosts(ctx context.Context, fn func(*entity.Post, error) error) error {
	s.mu.Lock()
	snapshot := make([]iterEntry, 0, len(s.posts)+len(s.unreadable))
	for _, p := range s.posts {
		snapshot = append(snapshot, iterEntry{id: p.ID, post: clonePost(p)})
	}
	for id, cause := range s.unreadable {
		snapshot = append(snapshot, iterEntry{id: id, err: &contract.PostDecodeError{PostID: id, Err: cause}})
	}
	s.mu.Unlock()
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].id < snapshot[j].id })

	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e.post, e.err); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostRepoStub) conditional(postID string, expected mediaref.Ref, apply func(p *entity.Post)) error {
	if s.BeforeConditionalWrite != nil {
		s.BeforeConditionalWrite(postID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWritesFor[postID] {
		return ErrInjected
	}
	p, ok := s.posts[postID]
	if !ok {
		return contract.ErrPostNotFound
	}
	if p.MediaRef.Raw() != expected.Raw() || p.MediaRef.Kind() != expected.Kind() {
		return contract.ErrMediaRefChanged
	}
	apply(p)
	return nil
}

func (s *PostRepoStub) ReplaceMediaRef(_ context.Context, postID string, expected mediaref.Ref, canonical string) error {
	return s.conditional(postID, expected, func(p *entity.Post) {
		p.MediaRef = mediaref.Decode(canonical)
		p.UpdatedAt = time.Now().UTC()
	})
}

func (s *PostRepoStub) DeletePostIfMediaRef(_ context.Context, postID string, expected mediaref.Ref) error {
	return s.conditional(postID, expected, func(p *entity.Post) {
		delete(s.posts, postID)
	})
}

func (s *PostRepoStub) MarkPending(_ context.Context, postIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range postIDs {
		if p, ok := s.posts[id]; ok {
			p.MediaRef = mediaref.Pending()
			p.NeedsNewImage = true
			n++
		}
	}
	return n, nil
}

func (s *PostRepoStub) CountPosts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.posts)), nil
}

func (s *PostRepoStub) CountPendingPosts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.posts {
		if p.NeedsNewImage {
			n++
		}
	}
	return n, nil
}

// UserRepoStub is an in-memory user repository.
type UserRepoStub struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func NewUserRepoStub() *UserRepoStub {
	return &UserRepoStub{users: make(map[string]*entity.User)}
}

var _ contract.IUserRepository = (*UserRepoStub)(nil)

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Photos = slices.Clone(u.Photos)
	if c.Photos == nil {
		c.Photos = []string{}
	}
	return &c
}

func (s *UserRepoStub) Put(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = cloneUser(u)
}

func (s *UserRepoStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserRepoStub) CreateUser(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.PasswordHash != "" && u.Email == user.Email {
			return contract.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserRepoStub) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, contract.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *UserRepoStub) GetLocalUserByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.PasswordHash != "" && u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, contract.ErrUserNotFound
}

func (s *UserRepoStub) FindOrCreateBySubject(_ context.Context, identity entity.Identity, newID string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Subject == identity.Subject {
			return cloneUser(u), nil
		}
	}
	now := time.Now().UTC()
	u := &entity.User{
		ID:        newID,
		Subject:   identity.Subject,
		Name:      identity.Name,
		Email:     identity.Email,
		Photos:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[newID] = u
	return cloneUser(u), nil
}

func (s *UserRepoStub) SearchUsersByName(_ context.Context, query string, limit int) ([]*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	out := []*entity.User{}
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *UserRepoStub) UpdateProfile(_ context.Context, id string, name *string, bio *string, photos []string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, contract.ErrUserNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if bio != nil {
		u.Bio = bio
	}
	if photos != nil {
		u.Photos = slices.Clone(photos)
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (s *UserRepoStub) CountUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// FeedCacheStub records cache traffic in memory.
type FeedCacheStub struct {
	mu            sync.Mutex
	pages         map[[2]int]*contract.CachedFeedPage
	Invalidations int
}

func NewFeedCacheStub() *FeedCacheStub {
	return &FeedCacheStub{pages: make(map[[2]int]*contract.CachedFeedPage)}
}

var _ contract.IFeedCache = (*FeedCacheStub)(nil)

func (c *FeedCacheStub) GetFeedPage(_ context.Context, page, limit int) (*contract.CachedFeedPage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[[2]int{page, limit}]
	return p, ok, nil
}

func (c *FeedCacheStub) SetFeedPage(_ context.Context, page, limit int, data *contract.CachedFeedPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[[2]int{page, limit}] = data
	return nil
}

func (c *FeedCacheStub) InvalidateFeed(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[[2]int]*contract.CachedFeedPage)
	c.Invalidations++
	return nil
}

// Cached reports whether a page is currently cached.
func (c *FeedCacheStub) Cached(page, limit int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pages[[2]int{page, limit}]
	return ok
}
