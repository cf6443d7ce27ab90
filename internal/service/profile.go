package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"linkup/internal/domain"
	"linkup/internal/dto"
	"linkup/internal/store"
)

const searchLimit = 25

type ProfileService struct {
	store *store.Store
	now   func() time.Time
}

func NewProfileService(st *store.Store) *ProfileService {
	return &ProfileService{store: st, now: time.Now}
}

func (p *ProfileService) Get(ctx context.Context, id domain.UserID) (*dto.Profile, error) {
	u, err := p.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	prof := profileDTO(u)
	return &prof, nil
}

// Resolve maps a batch of identities to their current profiles in one
// in-list query. Unknown ids are absent from the result, not errors.
func (p *ProfileService) Resolve(ctx context.Context, ids []domain.UserID) (map[domain.UserID]dto.Profile, error) {
	users, err := p.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.UserID]dto.Profile, len(users))
	for id, u := range users {
		out[id] = profileDTO(u)
	}
	return out, nil
}

// Search runs the name-prefix lookup over the lowered search key and
// annotates each hit with the viewer's relationship to it. The viewer is
// never part of the result.
func (p *ProfileService) Search(ctx context.Context, viewer domain.UserID, term string) ([]dto.SearchResult, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	users, err := p.store.Users().SearchByNamePrefix(ctx, term, searchLimit)
	if err != nil {
		return nil, err
	}

	results := make([]dto.SearchResult, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.ID == viewer {
			continue
		}
		isFriend, err := p.store.Edges().Exists(ctx, viewer, u.ID)
		if err != nil {
			return nil, err
		}
		pending := false
		if !isFriend {
			pending, err = p.store.Requests().PendingExists(ctx, viewer, u.ID)
			if err != nil {
				return nil, err
			}
		}
		results = append(results, dto.SearchResult{
			Profile:        profileDTO(u),
			IsFriend:       isFriend,
			RequestPending: pending,
		})
	}
	return results, nil
}

// Rename changes the display name. The lowered search key is written in the
// same statement so the nameLower == lower(name) invariant never breaks.
// Friend-edge snapshots holding the old name are left as they are.
func (p *ProfileService) Rename(ctx context.Context, id domain.UserID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidName
	}
	u := &domain.User{}
	u.SetName(name)
	return p.store.Users().UpdateName(ctx, id, u.Name, u.NameLower)
}

func profileDTO(u *domain.User) dto.Profile {
	return dto.Profile{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
