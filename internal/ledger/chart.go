package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"golang.org/x/sync/singleflight"
)

// ChartOfAccounts is the registry of accounts with lazy provisioning of the
// well-known codes.
type ChartOfAccounts struct {
	repo   account.Repository
	tx     TxManager
	group  singleflight.Group
	logger *slog.Logger
}

// NewChartOfAccounts creates a new ChartOfAccounts
func NewChartOfAccounts(repo account.Repository, tx TxManager, logger *slog.Logger) *ChartOfAccounts {
	return &ChartOfAccounts{
		repo:   repo,
		tx:     tx,
		logger: logger.With("component", "chart_of_accounts"),
	}
}

// List returns the accounts matching filter, sorted by code.
func (c *ChartOfAccounts) List(ctx context.Context, filter account.Filter) ([]*account.Account, error) {
	return c.repo.List(ctx, filter)
}

// Get returns the account for code without provisioning it.
func (c *ChartOfAccounts) Get(ctx context.Context, code string) (*account.Account, error) {
	return c.repo.GetByCode(ctx, code)
}

// Create registers a new account. The parent, when given, must exist.
func (c *ChartOfAccounts) Create(ctx context.Context, code, name string, typ account.Type, parentCode string) (*account.Account, error) {
	acc, err := account.NewAccount(code, name, typ, parentCode)
	if err != nil {
		return nil, err
	}
	if parentCode != "" {
		parent, err := c.repo.GetByCode(ctx, parentCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("parent account does not exist", "code", code, "parent_code", parentCode)
			}
			return nil, err
		}
		if parent.Type != typ {
			return nil, shared.NewValidationError("child account type must match its parent", "code", code, "parent_code", parentCode)
		}
		acc.Level = parent.Level + 1
	}
	if err := c.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	c.logger.Info("Account created", "code", acc.Code, "type", acc.Type)
	return acc, nil
}

// Ensure returns the account for code, provisioning it when it is on the
// well-known list. Any other unknown code is a validation error.
func (c *ChartOfAccounts) Ensure(ctx context.Context, code string) (*account.Account, error) {
	acc, err := c.repo.GetByCode(ctx, code)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if _, ok := account.WellKnown[code]; !ok {
		return nil, shared.NewValidationError("unknown account code", "code", code)
	}

	v, err, collapsed := c.group.Do(code, func() (any, error) {
		return c.provision(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	if collapsed {
		c.logger.Debug("Provisioning collapsed with concurrent caller", "code", code)
	}
	return v.(*account.Account), nil
}

// EnsureAll ensures every code and returns the accounts keyed by code.
func (c *ChartOfAccounts) EnsureAll(ctx context.Context, codes []string) (map[string]*account.Account, error) {
	out := make(map[string]*account.Account, len(codes))
	for _, code := range codes {
		if _, ok := out[code]; ok {
			continue
		}
		acc, err := c.Ensure(ctx, code)
		if err != nil {
			return nil, err
		}
		out[code] = acc
	}
	return out, nil
}

// provision writes through a detached context: collapsed callers may belong
// to different transactions.
func (c *ChartOfAccounts) provision(ctx context.Context, code string) (*account.Account, error) {
	acc, ok := account.NewWellKnown(code)
	if !ok {
		return nil, shared.NewValidationError("unknown account code", "code", code)
	}

	dctx, cancel := c.tx.Detach(ctx)
	defer cancel()

	if err := c.repo.Create(dctx, acc); err != nil {
		if !errors.Is(err, shared.ErrConflict) {
			return nil, fmt.Errorf("provision account %s: %w", code, err)
		}
		existing, getErr := c.repo.GetByCode(dctx, code)
		if getErr != nil {
			return nil, fmt.Errorf("re-read provisioned account %s: %w", code, getErr)
		}
		return existing, nil
	}
	c.logger.Info("Account provisioned", "code", code, "name", acc.Name, "type", acc.Type)
	return acc, nil
}
