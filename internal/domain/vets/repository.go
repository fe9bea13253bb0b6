package vets

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("vet not found")
	ErrEmailTaken   = errors.New("vet email already registered")
	ErrSubjectTaken = errors.New("vet auth subject already registered")
)

type Repository interface {
	Create(ctx context.Context, v Vet) error
	Update(ctx context.Context, v Vet) error
	GetByID(ctx context.Context, id string) (Vet, error)
	GetBySubject(ctx context.Context, subject string) (Vet, error)
	GetByEmail(ctx context.Context, email string) (Vet, error)
	List(ctx context.Context, status ApprovalStatus) ([]Vet, error)
}
