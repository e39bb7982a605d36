// Package store wires one repository per aggregate over a shared database
// handle and worker pool.
package store

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/schoolgate/identity/internal/domain"
	"github.com/schoolgate/identity/internal/repository"
)

type Manager struct {
	db            *bun.DB
	users         *repository.Async[*domain.User]
	roles         *repository.Async[*domain.Role]
	guardians     *repository.Async[*domain.Guardian]
	students      *repository.Async[*domain.Student]
	refreshTokens *repository.Async[*domain.RefreshToken]
}

func NewManager(db *bun.DB, pool *repository.Pool) *Manager {
	return &Manager{
		db:            db,
		users:         repository.NewAsync(repository.NewRepository(db, userHandlers()), pool),
		roles:         repository.NewAsync(repository.NewRepository(db, roleHandlers()), pool),
		guardians:     repository.NewAsync(repository.NewRepository(db, guardianHandlers()), pool),
		students:      repository.NewAsync(repository.NewRepository(db, studentHandlers()), pool),
		refreshTokens: repository.NewAsync(repository.NewRepository(db, refreshTokenHandlers()), pool),
	}
}

func (m *Manager) Users() *repository.Async[*domain.User]                 { return m.users }
func (m *Manager) Roles() *repository.Async[*domain.Role]                 { return m.roles }
func (m *Manager) Guardians() *repository.Async[*domain.Guardian]         { return m.guardians }
func (m *Manager) Students() *repository.Async[*domain.Student]           { return m.students }
func (m *Manager) RefreshTokens() *repository.Async[*domain.RefreshToken] { return m.refreshTokens }

// Validate pings the underlying database.
func (m *Manager) Validate(ctx context.Context) error {
	if m.db == nil {
		return errors.New("store manager has no database handle", errors.CategoryInternal)
	}
	if err := m.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "database ping failed")
	}
	return nil
}

func userHandlers() repository.ModelHandlers[*domain.User] {
	return repository.ModelHandlers[*domain.User]{
		NewRecord: func() *domain.User { return &domain.User{} },
		GetID: func(u *domain.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *domain.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	}
}

func roleHandlers() repository.ModelHandlers[*domain.Role] {
	return repository.ModelHandlers[*domain.Role]{
		NewRecord: func() *domain.Role { return &domain.Role{} },
		GetID: func(r *domain.Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *domain.Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	}
}

func guardianHandlers() repository.ModelHandlers[*domain.Guardian] {
	return repository.ModelHandlers[*domain.Guardian]{
		NewRecord: func() *domain.Guardian { return &domain.Guardian{} },
		GetID: func(g *domain.Guardian) uuid.UUID {
			if g == nil {
				return uuid.Nil
			}
			return g.ID
		},
		SetID: func(g *domain.Guardian, id uuid.UUID) {
			if g != nil {
				g.ID = id
			}
		},
	}
}

func studentHandlers() repository.ModelHandlers[*domain.Student] {
	return repository.ModelHandlers[*domain.Student]{
		NewRecord: func() *domain.Student { return &domain.Student{} },
		GetID: func(s *domain.Student) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *domain.Student, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
	}
}

func refreshTokenHandlers() repository.ModelHandlers[*domain.RefreshToken] {
	return repository.ModelHandlers[*domain.RefreshToken]{
		NewRecord: func() *domain.RefreshToken { return &domain.RefreshToken{} },
		GetID: func(rt *domain.RefreshToken) uuid.UUID {
			if rt == nil {
				return uuid.Nil
			}
			return rt.ID
		},
		SetID: func(rt *domain.RefreshToken, id uuid.UUID) {
			if rt != nil {
				rt.ID = id
			}
		},
	}
}
