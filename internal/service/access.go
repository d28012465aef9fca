package service

import (
	"context"
	"errors"
	"fmt"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/phone"
	"ledgerbot/internal/repository"
)

// AccessService decides who may talk to the bot
type AccessService struct {
	directory  repository.DirectoryRepository
	phones     *phone.Normalizer
	adminPhone string
}

// NewAccessService creates a new access service. adminPhone may be in any accepted shape.
func NewAccessService(directory repository.DirectoryRepository, phones *phone.Normalizer, adminPhone string) *AccessService {
	return &AccessService{
		directory:  directory,
		phones:     phones,
		adminPhone: phones.Normalize(adminPhone),
	}
}

// Identity returns the canonical identity of a raw sender
func (s *AccessService) Identity(raw string) string {
	return s.phones.Normalize(raw)
}

// IsAdmin checks a canonical identity against the admin phone
func (s *AccessService) IsAdmin(identity string) bool {
	return identity != "" && identity == s.adminPhone
}

// Resolve returns the subscriber record of an authorized identity.
// Unknown and deauthorized identities get domain.ErrUnauthorized.
// The admin is always authorized and gets a directory row on first contact.
func (s *AccessService) Resolve(ctx context.Context, identity string) (*domain.Subscriber, error) {
	if identity == "" {
		return nil, domain.ErrUnauthorized
	}

	sub, err := s.directory.FindByPhone(ctx, identity)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if !s.IsAdmin(identity) {
			return nil, domain.ErrUnauthorized
		}
		if err := s.directory.Append(ctx, identity); err != nil {
			return nil, fmt.Errorf("append admin row: %w", err)
		}
		return &domain.Subscriber{Phone: identity, Authorized: true}, nil
	case err != nil:
		return nil, fmt.Errorf("find subscriber: %w", err)
	}

	if s.IsAdmin(identity) {
		sub.Authorized = true
	}
	if !sub.Authorized {
		return nil, domain.ErrUnauthorized
	}
	return sub, nil
}
