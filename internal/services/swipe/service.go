// Package swipe implements the directional interaction engine: the
// candidate stack, the LIKE/DISLIKE/SKIP state machine with mutual-LIKE
// match formation, and the time-boxed paid undo of the last skip.
package swipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fundmatch/internal/config"
	domainerrors "fundmatch/internal/errors"
	"fundmatch/internal/models"
	"fundmatch/internal/repositories"
	"fundmatch/internal/services/ledger"
	"fundmatch/internal/services/quota"
	"fundmatch/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// candidatePoolSize bounds how many profiles are loaded for scoring
// before the requested page is cut.
const candidatePoolSize = 200

// Service is the swipe engine interface.
type Service interface {
	GetCandidates(ctx context.Context, userID uint, limit int) ([]Candidate, error)
	Swipe(ctx context.Context, userID, targetID uint, action string) (*Result, error)
	UndoLastSkip(ctx context.Context, userID uint) (*UndoResult, error)
	ListMatches(ctx context.Context, userID uint) ([]MatchResult, error)
}

type service struct {
	db      *gorm.DB
	users   repositories.UserRepository
	swipes  repositories.SwipeRepository
	quotas  repositories.QuotaRepository
	tracker quota.Service
	ledger  ledger.Service
	cfg     config.EngineConfig
	now     func() time.Time
}

func NewService(
	db *gorm.DB,
	users repositories.UserRepository,
	swipes repositories.SwipeRepository,
	quotas repositories.QuotaRepository,
	tracker quota.Service,
	ledgerSvc ledger.Service,
	cfg config.EngineConfig,
) Service {
	if db == nil {
		panic("db is required")
	}
	return &service{
		db:      db,
		users:   users,
		swipes:  swipes,
		quotas:  quotas,
		tracker: tracker,
		ledger:  ledgerSvc,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *service) GetCandidates(ctx context.Context, userID uint, limit int) ([]Candidate, error) {
	me, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, domainerrors.ErrProfileNotFound
		}
		return nil, err
	}

	oppositeRole := models.OppositeRole(me.Role)
	if oppositeRole == "" {
		return []Candidate{}, nil
	}

	swiped, err := s.swipes.ListSwipedProfileIDs(userID)
	if err != nil {
		return nil, err
	}
	exclude := append(swiped, userID)

	pool, err := s.users.ListByRoleExcluding(oppositeRole, exclude, candidatePoolSize)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(pool))
	for _, u := range pool {
		candidates = append(candidates, Candidate{
			Profile:    u.Public(),
			MatchScore: sharedCategories(me.Categories, u.Categories),
		})
	}

	// Order: match score, then activity, then id. The id tie-break
	// keeps the stack deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.Profile.ActivityScore != b.Profile.ActivityScore {
			return a.Profile.ActivityScore > b.Profile.ActivityScore
		}
		return a.Profile.ID < b.Profile.ID
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (s *service) Swipe(ctx context.Context, userID, targetID uint, action string) (*Result, error) {
	switch action {
	case models.SwipeActionLike, models.SwipeActionDislike, models.SwipeActionSkip:
	default:
		return nil, domainerrors.ErrInvalidSwipeAction
	}
	if userID == targetID {
		return nil, domainerrors.ErrSelfSwipe
	}

	if _, err := s.users.GetByID(targetID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, domainerrors.ErrProfileNotFound
		}
		return nil, err
	}

	// Early duplicate check for a clean rejection; the composite unique
	// index remains the enforcement point under concurrency.
	if _, err := s.swipes.GetInteraction(userID, targetID); err == nil {
		return nil, domainerrors.ErrDuplicateInteraction
	} else if !errors.Is(err, repositories.ErrInteractionNotFound) {
		return nil, err
	}

	// Phase 1: advisory quota check. The authoritative balance check is
	// the guarded debit inside the transaction below.
	decision, err := s.tracker.CheckAndConsume(ctx, userID, quota.ActionSwipe)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, domainerrors.ErrQuotaExceeded.WithDetails(map[string]interface{}{
			"balance":  decision.Balance,
			"required": decision.Required,
		})
	}

	now := s.now()
	result := &Result{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txSwipes := repositories.NewSwipeRepository(tx)

		interaction := models.SwipeInteraction{
			SwiperID:        userID,
			SwipedProfileID: targetID,
			Action:          action,
			CreatedAt:       now,
		}
		if err := txSwipes.CreateInteraction(&interaction); err != nil {
			if errors.Is(err, repositories.ErrDuplicateInteraction) {
				return domainerrors.ErrDuplicateInteraction
			}
			return err
		}
		result.Interaction = interaction

		// Any later interaction supersedes a pending skip: a new SKIP
		// retargets the undo, everything else closes the window.
		txQuotas := repositories.NewQuotaRepository(tx)
		if action == models.SwipeActionSkip {
			if err := txQuotas.SetLastSkip(userID, targetID, now); err != nil {
				return err
			}
		} else if err := txQuotas.ClearLastSkip(userID); err != nil {
			return err
		}

		if decision.RequiresPoints {
			reference := fmt.Sprintf("swipe-%s", uuid.NewString())
			_, err := s.ledger.DebitInTx(tx, userID, decision.PointsPerAction, reference,
				fmt.Sprintf("swipe on profile %d", targetID))
			if err != nil {
				// Aborts the whole unit; the interaction row above is
				// rolled back with it.
				return err
			}
			result.PointsSpent = decision.PointsPerAction
		}

		if action == models.SwipeActionLike {
			reciprocal, err := txSwipes.HasLike(targetID, userID)
			if err != nil {
				return err
			}
			if reciprocal {
				u1, u2 := models.MatchPair(userID, targetID)
				match, err := txSwipes.CreateMatchIfAbsent(u1, u2, now)
				if err != nil {
					return err
				}
				result.Match = &MatchResult{Match: *match}
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.classify("swipe", err)
	}

	if result.PointsSpent > 0 {
		s.ledger.InvalidateWallet(ctx, userID)
	}

	if result.Match != nil {
		profiles, err := s.publicProfiles(result.Match.Match.User1ID, result.Match.Match.User2ID)
		if err != nil {
			logger.Warnf("failed to load match profiles: %v", err)
		} else {
			result.Match.Profiles = profiles
		}
	}
	return result, nil
}

func (s *service) UndoLastSkip(ctx context.Context, userID uint) (*UndoResult, error) {
	now := s.now()

	// Re-read the stored markers; an intervening swipe may have moved
	// them since the client last looked.
	q, err := s.quotas.GetOrCreateSwipeQuota(userID, now)
	if err != nil {
		return nil, err
	}
	if q.LastSkippedProfileID == nil || q.LastSkipTime == nil {
		return nil, domainerrors.ErrNoRecentSkip
	}
	if now.Sub(*q.LastSkipTime) > s.cfg.UndoWindow {
		return nil, domainerrors.ErrUndoWindowExpired
	}

	restoredID := *q.LastSkippedProfileID
	skippedAt := *q.LastSkipTime
	cost := q.PointsPerUndo

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txSwipes := repositories.NewSwipeRepository(tx)
		if err := txSwipes.DeleteInteraction(userID, restoredID); err != nil {
			if errors.Is(err, repositories.ErrInteractionNotFound) {
				return domainerrors.ErrNoRecentSkip
			}
			return err
		}

		if err := repositories.NewQuotaRepository(tx).ClearLastSkip(userID); err != nil {
			return err
		}

		// Undo is always paid, never quota-gated, and the consumed
		// swipe slot is not refunded.
		reference := fmt.Sprintf("undo-%s", uuid.NewString())
		_, err := s.ledger.DebitInTx(tx, userID, cost, reference,
			fmt.Sprintf("undo skip on profile %d", restoredID))
		return err
	})
	if err != nil {
		return nil, s.classify("undo", err)
	}

	s.ledger.InvalidateWallet(ctx, userID)

	return &UndoResult{
		RestoredProfileID: restoredID,
		PointsSpent:       cost,
		SkippedAt:         skippedAt,
	}, nil
}

func (s *service) ListMatches(ctx context.Context, userID uint) ([]MatchResult, error) {
	matches, err := s.swipes.ListMatchesForUser(userID)
	if err != nil {
		return nil, err
	}

	results := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		profiles, err := s.publicProfiles(m.User1ID, m.User2ID)
		if err != nil {
			return nil, err
		}
		results = append(results, MatchResult{Match: m, Profiles: profiles})
	}
	return results, nil
}

func (s *service) publicProfiles(ids ...uint) ([]models.PublicProfile, error) {
	users, err := s.users.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Public())
	}
	return profiles, nil
}

// classify keeps deterministic domain rejections intact and collapses
// everything else into the generic retryable failure.
func (s *service) classify(op string, err error) error {
	var derr *domainerrors.DomainError
	if errors.As(err, &derr) {
		return derr
	}
	logger.WithFields(map[string]interface{}{"op": op}).Error(err)
	return domainerrors.ErrTransactionFailed
}

func sharedCategories(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, c := range a {
		set[c] = struct{}{}
	}
	score := 0
	for _, c := range b {
		if _, ok := set[c]; ok {
			score++
		}
	}
	return score
}
