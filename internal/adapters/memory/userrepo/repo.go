package userrepo

import (
	"context"
	"sync"
	"time"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.UserID]userrepo.User
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.UserID]userrepo.User),
	}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	_ = ctx
	if u.ID == "" {
		return userrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; ok {
		return userrepo.ErrAlreadyExists
	}
	for _, other := range r.byID {
		if other.Subject == u.Subject {
			return userrepo.ErrSubjectAlreadyBound
		}
		if other.Handle == u.Handle {
			return userrepo.ErrHandleTaken
		}
		if other.Email == u.Email {
			return userrepo.ErrEmailTaken
		}
	}
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *Repo) Update(ctx context.Context, u userrepo.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return userrepo.ErrNotFound
	}
	for id, other := range r.byID {
		if id == u.ID {
			continue
		}
		if other.Handle == u.Handle {
			return userrepo.ErrHandleTaken
		}
		if other.Email == u.Email {
			return userrepo.ErrEmailTaken
		}
	}
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Subject == subject {
			return cloneUser(u), nil
		}
	}
	return userrepo.User{}, userrepo.ErrNotFound
}

func (r *Repo) Delete(ctx context.Context, id domain.UserID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return userrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneUser(u userrepo.User) userrepo.User {
	cp := u
	cp.Phone = cloneStringPtr(u.Phone)
	cp.Bio = cloneStringPtr(u.Bio)
	cp.DateOfBirth = cloneTimePtr(u.DateOfBirth)
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
