// Package approval holds the admin self-signup workflow: a fresh admin
// account starts inactive and stays locked out until an existing admin
// approves it. Rejection deletes the account outright.
package approval

import (
	"context"
	"fmt"

	"outreach/internal/authn"
	"outreach/pkg/types"

	"github.com/sirupsen/logrus"
)

type Service struct {
	provider authn.Provider
	logger   *logrus.Logger
}

func NewService(provider authn.Provider, logger *logrus.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// PendingAdmins lists admin accounts still awaiting approval.
func (s *Service) PendingAdmins(ctx context.Context) ([]*types.Account, error) {

	accounts, err := s.provider.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	pending := []*types.Account{}
	for _, account := range accounts {
		if account.Metadata.Role == types.RoleAdmin && !account.Metadata.IsActive {
			pending = append(pending, account)
		}
	}

	return pending, nil
}

// Approve activates a pending admin account. Approving an account that is not
// a pending admin is rejected.
func (s *Service) Approve(ctx context.Context, accountID string) error {

	account, err := s.pendingByID(ctx, accountID)
	if err != nil {
		return err
	}

	metadata := account.Metadata
	metadata.IsActive = true

	err = s.provider.UpdateAccountMetadata(ctx, account.Email, metadata)
	if err != nil {
		return fmt.Errorf("activate admin: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"email":      account.Email,
	}).Info("admin account approved")

	return nil
}

// Reject deletes a pending admin account permanently.
func (s *Service) Reject(ctx context.Context, accountID string) error {

	account, err := s.pendingByID(ctx, accountID)
	if err != nil {
		return err
	}

	err = s.provider.DeleteAccount(ctx, account.Email)
	if err != nil {
		return fmt.Errorf("delete rejected admin: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"email":      account.Email,
	}).Info("admin account rejected")

	return nil
}

func (s *Service) pendingByID(ctx context.Context, accountID string) (*types.Account, error) {

	pending, err := s.PendingAdmins(ctx)
	if err != nil {
		return nil, err
	}

	for _, account := range pending {
		if account.ID == accountID {
			return account, nil
		}
	}

	return nil, types.ErrAccountNotFound
}
