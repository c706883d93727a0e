// Package quota implements the daily free-action tracker gating swipes
// and messages. One algorithm serves both counters: lazily create the
// row, reset it when its day is stale, consume a free slot when one is
// left, otherwise authorize a point charge if the wallet can cover it.
//
// The tracker is deliberately advisory (phase 1 of the two-phase
// design): the ledger debit inside the calling engine's transaction is
// the authoritative balance check. A consumed counter slot is not
// refunded when that later debit fails.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundmatch/internal/config"
	"fundmatch/internal/repositories"
)

// Service decides whether a swipe or message is free, chargeable, or
// denied for the day.
type Service interface {
	CheckAndConsume(ctx context.Context, userID uint, kind ActionKind) (*Decision, error)
	Status(ctx context.Context, userID uint, kind ActionKind) (*Status, error)
}

type service struct {
	quotas  repositories.QuotaRepository
	wallets repositories.WalletRepository
	cfg     config.EngineConfig
	now     func() time.Time
}

func NewService(quotas repositories.QuotaRepository, wallets repositories.WalletRepository, cfg config.EngineConfig) Service {
	if quotas == nil {
		panic("quota repository is required")
	}
	if wallets == nil {
		panic("wallet repository is required")
	}
	return &service{
		quotas:  quotas,
		wallets: wallets,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *service) CheckAndConsume(ctx context.Context, userID uint, kind ActionKind) (*Decision, error) {
	switch kind {
	case ActionMessage:
		return s.consumeMessage(userID)
	case ActionSwipe:
		return s.consumeSwipe(userID)
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
}

func (s *service) consumeMessage(userID uint) (*Decision, error) {
	now := s.now()
	if _, err := s.quotas.GetOrCreateMessageQuota(userID, now); err != nil {
		return nil, err
	}

	// The guarded increment both checks and consumes the free slot in a
	// single statement, so concurrent requests cannot overdraw the free
	// tier or lose an increment across the midnight reset.
	free, err := s.quotas.IncrementMessageIfBelow(userID, now, s.cfg.DailyFreeMessageLimit)
	if err != nil {
		return nil, err
	}
	if free {
		return &Decision{Allowed: true}, nil
	}

	return s.authorizeCharge(userID, s.cfg.PointsPerMessage, func() error {
		return s.quotas.IncrementMessage(userID, now)
	})
}

func (s *service) consumeSwipe(userID uint) (*Decision, error) {
	now := s.now()
	quota, err := s.quotas.GetOrCreateSwipeQuota(userID, now)
	if err != nil {
		return nil, err
	}

	free, err := s.quotas.IncrementSwipeIfBelow(userID, now, quota.DailyFreeLimit)
	if err != nil {
		return nil, err
	}
	if free {
		return &Decision{Allowed: true}, nil
	}

	return s.authorizeCharge(userID, quota.PointsPerSwipe, func() error {
		return s.quotas.IncrementSwipe(userID, now)
	})
}

// authorizeCharge handles the beyond-free-tier path: the action is
// allowed only if the wallet currently covers the cost. The counter
// still tracks chargeable actions, so it is incremented here too.
func (s *service) authorizeCharge(userID uint, cost int, increment func() error) (*Decision, error) {
	balance := 0
	wallet, err := s.wallets.GetByUserID(userID)
	if err != nil && !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, err
	}
	if wallet != nil {
		balance = wallet.Balance
	}

	if balance < cost {
		return &Decision{
			Allowed:         false,
			RequiresPoints:  true,
			Reason:          "insufficient balance",
			PointsPerAction: cost,
			Balance:         balance,
			Required:        cost,
		}, nil
	}

	if err := increment(); err != nil {
		return nil, err
	}
	return &Decision{
		Allowed:         true,
		RequiresPoints:  true,
		PointsPerAction: cost,
		Balance:         balance,
	}, nil
}

func (s *service) Status(ctx context.Context, userID uint, kind ActionKind) (*Status, error) {
	now := s.now()
	switch kind {
	case ActionMessage:
		quota, err := s.quotas.GetOrCreateMessageQuota(userID, now)
		if err != nil {
			return nil, err
		}
		return &Status{
			Kind:            ActionMessage,
			UsedToday:       quota.MessagesSentToday,
			DailyFreeLimit:  s.cfg.DailyFreeMessageLimit,
			FreeRemaining:   max(0, s.cfg.DailyFreeMessageLimit-quota.MessagesSentToday),
			PointsPerAction: s.cfg.PointsPerMessage,
		}, nil
	case ActionSwipe:
		quota, err := s.quotas.GetOrCreateSwipeQuota(userID, now)
		if err != nil {
			return nil, err
		}
		return &Status{
			Kind:            ActionSwipe,
			UsedToday:       quota.SwipesToday,
			DailyFreeLimit:  quota.DailyFreeLimit,
			FreeRemaining:   max(0, quota.DailyFreeLimit-quota.SwipesToday),
			PointsPerAction: quota.PointsPerSwipe,
		}, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
}
