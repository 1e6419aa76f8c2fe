package memory

import (
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory repository used for development and tests
type Memory struct {
	risk    *riskRepository
	account *accountRepository
	tokens  *tokenStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk:    newRiskRepository(),
		account: newAccountRepository(),
		tokens:  newTokenStore(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Account() interfaces.AccountRepository {
	return m.account
}

// Close is a no-op for the in-memory backend
func (m *Memory) Close() error {
	return nil
}
