package clinicsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

func (s *Session) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	if err := s.get(ctx, "/v1/profiles/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles lists profiles of a role, or all when r is empty.
func (s *Session) ListProfiles(ctx context.Context, r role.Role, limit int) ([]Profile, error) {
	q := url.Values{}
	if r != "" {
		q.Set("role", r.String())
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/profiles"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []Profile
	if err := s.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateProfile(ctx context.Context, p Profile) (*Profile, error) {
	var out Profile
	if err := s.do(ctx, http.MethodPost, "/v1/profiles", p, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateProfile(ctx context.Context, id string, u ProfileUpdate) (*Profile, error) {
	var out Profile
	if err := s.do(ctx, http.MethodPatch, "/v1/profiles/"+url.PathEscape(id), u, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
