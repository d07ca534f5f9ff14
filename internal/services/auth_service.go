// internal/services/auth_service.go
package services

import (
	"errors"
	"time"

	"github.com/javajoker/scholarship-escrow/internal/config"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

var ErrTokenIssuanceDisabled = errors.New("token issuance is disabled")

type AuthService struct {
	cfg   *config.Config
	chain *BlockchainService
}

type TokenRequest struct {
	Address string `json:"address" validate:"required,address"`
}

type TokenResponse struct {
	Address     models.Address `json:"address"`
	Role        models.Role    `json:"role"`
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int            `json:"expires_in"` // in seconds
}

// Identity describes the caller behind a token as the chain sees it.
type Identity struct {
	Address  models.Address `json:"address"`
	Role     models.Role    `json:"role"`
	Verified bool           `json:"verified"`
	Balance  uint64         `json:"balance"`
}

func NewAuthService(cfg *config.Config, chain *BlockchainService) *AuthService {
	return &AuthService{
		cfg:   cfg,
		chain: chain,
	}
}

// IssueToken signs an access token for any address. It only runs when AUTH_DEV_TOKENS is set;
// otherwise callers present tokens minted elsewhere with the shared secret.
func (s *AuthService) IssueToken(req *TokenRequest) (*TokenResponse, error) {
	if !s.cfg.Auth.DevTokens {
		return nil, ErrTokenIssuanceDisabled
	}

	addr, err := models.HexToAddress(req.Address)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(s.cfg.JWT.AccessTokenTTL) * time.Hour
	token, err := utils.GenerateJWT(addr, ttl)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		Address:     addr,
		Role:        s.chain.GetRole(addr),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

func (s *AuthService) Me(addr models.Address) Identity {
	return Identity{
		Address:  addr,
		Role:     s.chain.GetRole(addr),
		Verified: s.chain.IsVerified(addr),
		Balance:  s.chain.Balance(addr),
	}
}
