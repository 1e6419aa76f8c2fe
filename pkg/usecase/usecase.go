package usecase

import (
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model/config"
	"github.com/secmon-lab/briareus/pkg/service/notify"
)

type UseCases struct {
	repo     interfaces.Repository
	matrix   *config.RiskMatrix
	roles    *config.RoleCatalog
	notifier notify.Service

	Risk   *RiskUseCase
	Access *AccessUseCase
	Auth   *AuthUseCase
}

type Option func(*UseCases)

func WithRiskMatrix(m *config.RiskMatrix) Option {
	return func(uc *UseCases) {
		uc.matrix = m
	}
}

func WithRoleCatalog(c *config.RoleCatalog) Option {
	return func(uc *UseCases) {
		uc.roles = c
	}
}

func WithNotifier(n notify.Service) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.matrix == nil {
		uc.matrix = config.DefaultRiskMatrix()
	}
	if uc.roles == nil {
		uc.roles = config.DefaultRoleCatalog()
	}

	uc.Risk = NewRiskUseCase(repo, uc.matrix, uc.notifier)
	uc.Access = NewAccessUseCase(repo, uc.roles, uc.notifier)
	uc.Auth = NewAuthUseCase(repo)

	return uc
}

// Matrix returns the scoring matrix in use
func (uc *UseCases) Matrix() *config.RiskMatrix {
	return uc.matrix
}

// Roles returns the role catalog in use
func (uc *UseCases) Roles() *config.RoleCatalog {
	return uc.roles
}
