package clinicsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListVeterinarians returns vets joined with their profiles, newest first.
// Only Status and Limit of opts apply.
func (s *Session) ListVeterinarians(ctx context.Context, opts ListOptions) ([]Veterinarian, error) {
	var out []Veterinarian
	if err := s.get(ctx, "/v1/veterinarians"+opts.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) GetVeterinarian(ctx context.Context, id string) (*Veterinarian, error) {
	var v Veterinarian
	if err := s.get(ctx, "/v1/veterinarians/"+url.PathEscape(id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVeterinarian creates the account, profile and registration of a vet
// in one call. Admin only.
func (s *Session) CreateVeterinarian(ctx context.Context, req CreateVeterinarianRequest) (*CreateVeterinarianResponse, error) {
	var out CreateVeterinarianResponse
	if err := s.do(ctx, http.MethodPost, "/v1/veterinarians", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateVeterinarian(ctx context.Context, id string, req UpdateVeterinarianRequest) (*Veterinarian, error) {
	var out Veterinarian
	if err := s.do(ctx, http.MethodPatch, "/v1/veterinarians/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SetVeterinarianStatus(ctx context.Context, id, status string) (*Veterinarian, error) {
	var out Veterinarian
	path := "/v1/veterinarians/" + url.PathEscape(id) + "/status"
	if err := s.do(ctx, http.MethodPut, path, StatusRequest{Status: status}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetVeterinarianPassword sends a recovery token to the vet's email.
func (s *Session) ResetVeterinarianPassword(ctx context.Context, id string) error {
	path := "/v1/veterinarians/" + url.PathEscape(id) + "/password-reset"
	return s.do(ctx, http.MethodPost, path, nil, nil, http.StatusAccepted)
}

func (s *Session) VeterinarianCounts(ctx context.Context) (*VeterinarianCounts, error) {
	var out VeterinarianCounts
	if err := s.get(ctx, "/v1/veterinarians/counts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
