// Package merchant manages merchant accounts and the lifecycle of
// their Bakong gateway credential.
package merchant

import (
	"context"
	"errors"
	"log"

	"khqrpos/internal/models"
	"khqrpos/internal/repositories"
	"khqrpos/internal/repositories/cache"
	"khqrpos/internal/utils"
)

type Service interface {
	// Credential lifecycle. Admin enforcement happens at the handler.
	GetToken(ctx context.Context, merchantID uint) (string, error)
	SetToken(ctx context.Context, merchantID uint, token string, adminID uint) error
	ClearToken(ctx context.Context, merchantID uint, adminID uint) error

	// Merchant selection for issuance/verification.
	Resolve(ctx context.Context, merchantID uint, userID uint) (*models.MerchantAccount, error)

	// CRUD used by the merchant-account endpoints.
	Create(ctx context.Context, input *models.CreateMerchantAccountInput) (*models.MerchantAccount, error)
	List(ctx context.Context) ([]models.MerchantAccount, error)
	Get(ctx context.Context, id uint) (*models.MerchantAccount, error)
	Update(ctx context.Context, id uint, input *models.UpdateMerchantAccountInput) (*models.MerchantAccount, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo  repositories.MerchantAccountRepository
	cache *cache.CacheService
}

// NewService returns the merchant directory service. The cache may be
// nil, in which case every token read hits the database.
func NewService(repo repositories.MerchantAccountRepository, cacheSvc *cache.CacheService) Service {
	return &service{repo: repo, cache: cacheSvc}
}

// GetToken returns the merchant's current gateway token, serving from
// redis when warm. Tokens are cached for 55 minutes, mirroring the
// gateway's one-hour validity window.
func (s *service) GetToken(ctx context.Context, merchantID uint) (string, error) {
	if s.cache != nil {
		var cached string
		key := s.cache.BakongTokenKey(merchantID)
		if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok && cached != "" {
			return cached, nil
		}
	}

	m, err := s.repo.GetByID(merchantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantAccountNotFound) {
			return "", ErrMerchantNotFound
		}
		return "", err
	}
	if m.BakongToken == nil || *m.BakongToken == "" {
		return "", ErrTokenNotFound
	}

	if s.cache != nil {
		key := s.cache.BakongTokenKey(merchantID)
		if err := s.cache.SetWithTTL(ctx, key, *m.BakongToken, cache.BakongTokenTTL); err != nil {
			log.Printf("failed to cache bakong token for merchant %d: %v", merchantID, err)
		}
	}
	return *m.BakongToken, nil
}

// SetToken overwrites the stored token unconditionally. The previous
// value is recorded only as a truncated log line, never retained.
func (s *service) SetToken(ctx context.Context, merchantID uint, token string, adminID uint) error {
	m, err := s.repo.GetByID(merchantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantAccountNotFound) {
			return ErrMerchantNotFound
		}
		return err
	}

	oldToken := ""
	if m.BakongToken != nil {
		oldToken = *m.BakongToken
	}

	if err := s.repo.UpdateToken(merchantID, &token); err != nil {
		return err
	}
	s.invalidateTokenCache(ctx, merchantID)

	log.Printf("Bakong token updated by admin user ID: %d (merchant %d, old prefix %q, new prefix %q)",
		adminID, merchantID, utils.TokenPrefix(oldToken, 20), utils.TokenPrefix(token, 20))
	return nil
}

// ClearToken removes the stored token. Issued transactions keep their
// QR payloads and remain verifiable once a new token is set.
func (s *service) ClearToken(ctx context.Context, merchantID uint, adminID uint) error {
	m, err := s.repo.GetByID(merchantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantAccountNotFound) {
			return ErrMerchantNotFound
		}
		return err
	}
	if m.BakongToken == nil || *m.BakongToken == "" {
		return ErrTokenNotFound
	}

	oldToken := *m.BakongToken
	if err := s.repo.UpdateToken(merchantID, nil); err != nil {
		return err
	}
	s.invalidateTokenCache(ctx, merchantID)

	log.Printf("Bakong token deleted by admin user ID: %d (merchant %d, deleted prefix %q)",
		adminID, merchantID, utils.TokenPrefix(oldToken, 20))
	return nil
}

// Resolve picks the merchant account an operation should run against.
// A non-zero merchantID wins; otherwise the user's first account, then
// the global first (single-tenant deployments).
func (s *service) Resolve(ctx context.Context, merchantID uint, userID uint) (*models.MerchantAccount, error) {
	if merchantID != 0 {
		m, err := s.repo.GetByID(merchantID)
		if err != nil {
			if errors.Is(err, repositories.ErrMerchantAccountNotFound) {
				return nil, ErrMerchantNotFound
			}
			return nil, err
		}
		return m, nil
	}

	if m, err := s.repo.GetFirstForUser(userID); err == nil {
		return m, nil
	}

	m, err := s.repo.GetFirst()
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantAccountNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *service) Create(ctx context.Context, input *models.CreateMerchantAccountInput) (*models.MerchantAccount, error) {
	m := &models.MerchantAccount{
		AccountID:        input.AccountID,
		MerchantName:     input.MerchantName,
		Location:         input.Location,
		BakongToken:      input.BakongToken,
		TelegramChatID:   input.TelegramChatID,
		TelegramBotToken: input.TelegramBotToken,
		UserID:           input.UserID,
	}
	if err := s.repo.Create(m); err != nil {
		if errors.Is(err, repositories.ErrDuplicateAccountID) {
			return nil, ErrDuplicateAccountID
		}
		return nil, err
	}
	return m, nil
}

func (s *service) List(ctx context.Context) ([]models.MerchantAccount, error) {
	return s.repo.List()
}

func (s *service) Get(ctx context.Context, id uint) (*models.MerchantAccount, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantAccountNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *service) Update(ctx context.Context, id uint, input *models.UpdateMerchantAccountInput) (*models.MerchantAccount, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantAccountNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}

	if input.AccountID != nil {
		m.AccountID = *input.AccountID
	}
	if input.MerchantName != nil {
		m.MerchantName = *input.MerchantName
	}
	if input.Location != nil {
		m.Location = *input.Location
	}
	if input.BakongToken != nil {
		m.BakongToken = input.BakongToken
		s.invalidateTokenCache(ctx, id)
	}
	if input.TelegramChatID != nil {
		m.TelegramChatID = *input.TelegramChatID
	}
	if input.TelegramBotToken != nil {
		m.TelegramBotToken = *input.TelegramBotToken
	}
	if input.UserID != nil {
		m.UserID = *input.UserID
	}

	if err := s.repo.Update(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(id)
	if errors.Is(err, repositories.ErrMerchantAccountNotFound) {
		return ErrMerchantNotFound
	}
	if err == nil {
		s.invalidateTokenCache(ctx, id)
	}
	return err
}

func (s *service) invalidateTokenCache(ctx context.Context, merchantID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cache.BakongTokenKey(merchantID)); err != nil {
		log.Printf("failed to invalidate token cache for merchant %d: %v", merchantID, err)
	}
}
