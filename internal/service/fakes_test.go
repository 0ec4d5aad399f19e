package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"bulletin_board/internal/avatar"
	"bulletin_board/internal/model"

	"github.com/google/uuid"
)

// fakeUserRepo is an in-memory repository.UserRepository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *fakeUserRepo) add(u *model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *fakeUserRepo) get(id uuid.UUID) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	for _, u := range r.users {
		if u.Username == user.Username || (user.Email != nil && u.Email != nil && *u.Email == *user.Email) {
			r.mu.Unlock()
			return model.ErrConflict
		}
	}
	r.mu.Unlock()
	r.add(user)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.get(id), nil
}

func (r *fakeUserRepo) find(match func(u *model.User) bool) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email != nil && *u.Email == email })
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateJoined.After(out[j].DateJoined) })
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if req.Email != nil {
		for _, other := range r.users {
			if *req.Email != "" && other.ID != id && other.Email != nil && *other.Email == *req.Email {
				return nil, model.ErrConflict
			}
		}
		u.Email = req.Email
		if *req.Email == "" {
			u.Email = nil
		}
	}
	if req.FirstName != nil {
		u.FirstName = req.FirstName
	}
	if req.LastName != nil {
		u.LastName = req.LastName
	}
	if req.PasswordHint != nil {
		u.PasswordHint = req.PasswordHint
	}
	if req.AvatarURL != nil {
		u.AvatarURL = req.AvatarURL
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = &hash
	}
	return nil
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, id uuid.UUID, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.AvatarURL = &avatarURL
	}
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role model.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if ok {
		u.Role = role
	}
	return ok, nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if ok {
		u.IsActive = active
	}
	return ok, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	delete(r.users, id)
	return ok, nil
}

// fakeMessageRepo keeps messages in memory and maintains post counts on users
type fakeMessageRepo struct {
	mu       sync.Mutex
	users    *fakeUserRepo
	messages map[int64]*model.Message
	nextID   int64
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{users: users, messages: map[int64]*model.Message{}}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *model.Message) error {
	r.users.mu.Lock()
	owner, ok := r.users.users[msg.UserID]
	if !ok {
		r.users.mu.Unlock()
		return model.ErrNotFound
	}
	owner.PostCount++
	r.users.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	msg.Timestamp = time.Now().Add(time.Duration(r.nextID) * time.Millisecond)
	cp := *msg
	r.messages[msg.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) FindByID(_ context.Context, id int64) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messages[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeMessageRepo) List(_ context.Context, limit, offset int) ([]model.MessageWithUser, error) {
	r.mu.Lock()
	all := make([]model.Message, 0, len(r.messages))
	for _, m := range r.messages {
		all = append(all, *m)
	}
	r.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })

	out := []model.MessageWithUser{}
	for i := offset; i < len(all) && len(out) < limit; i++ {
		owner := r.users.get(all[i].UserID)
		out = append(out, model.MessageWithUser{Message: all[i], User: owner.Public()})
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages)), nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id int64, decrementOwner bool) (bool, error) {
	r.mu.Lock()
	m, ok := r.messages[id]
	delete(r.messages, id)
	r.mu.Unlock()
	if !ok {
		return false, nil
	}
	if decrementOwner {
		r.users.mu.Lock()
		if owner, ok := r.users.users[m.UserID]; ok && owner.PostCount > 0 {
			owner.PostCount--
		}
		r.users.mu.Unlock()
	}
	return true, nil
}

// fakeSessionRepo is an in-memory repository.SessionRepository
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]model.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) Find(_ context.Context, sid string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	return nil
}

func (r *fakeSessionRepo) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for sid, s := range r.sessions {
		if s.Data.UserID == userID {
			delete(r.sessions, sid)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for sid, s := range r.sessions {
		if !s.ExpiresAt.After(time.Now()) {
			delete(r.sessions, sid)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// recordingNotifier captures live events
type recordingNotifier struct {
	mu      sync.Mutex
	created []model.MessageWithUser
	deleted []int64
}

func (n *recordingNotifier) MessageCreated(msg model.MessageWithUser) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, msg)
}

func (n *recordingNotifier) MessageDeleted(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, id)
}

// recordingDisconnector captures users whose live connections were dropped
type recordingDisconnector struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (d *recordingDisconnector) DisconnectUser(userID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = append(d.users, userID)
}

func (d *recordingDisconnector) disconnected() []uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uuid.UUID(nil), d.users...)
}

// fakeFetcher returns a canned image or error
type fakeFetcher struct {
	img *avatar.Image
	err error
}

func (f *fakeFetcher) FetchAndNormalizeImage(_ context.Context, _ string) (*avatar.Image, error) {
	return f.img, f.err
}

// fakeAvatarStore records saves and deletes
type fakeAvatarStore struct {
	saved     map[string][]byte
	deleted   []string
	deleteErr error
}

func newFakeAvatarStore() *fakeAvatarStore {
	return &fakeAvatarStore{saved: map[string][]byte{}}
}

func (s *fakeAvatarStore) Save(_ context.Context, name string, img *avatar.Image) (string, error) {
	s.saved[name] = img.Data
	return "/avatars/" + name, nil
}

func (s *fakeAvatarStore) Delete(_ context.Context, publicPath string) error {
	s.deleted = append(s.deleted, publicPath)
	return s.deleteErr
}

func (s *fakeAvatarStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	data, ok := s.saved[name]
	if !ok {
		return nil, "", avatar.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), "image/png", nil
}
