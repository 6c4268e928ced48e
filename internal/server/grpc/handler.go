package grpc

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) GetAuthConfig(ctx context.Context, req *api.GetAuthConfigRequest) (*api.GetAuthConfigResponse, error) {
	items := s.sessions.AuthConfig()
	resp := &api.GetAuthConfigResponse{Items: make([]api.AuthConfigItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, api.AuthConfigItem{Provider: it.Provider})
	}
	return resp, nil
}

func (s *GRPCServer) EmailSignup(ctx context.Context, req *api.EmailSignupRequest) (*api.VerificationResponse, error) {
	session, err := s.sessions.EmailSignup(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return verificationResponse(session), nil
}

func (s *GRPCServer) EmailLogin(ctx context.Context, req *api.EmailLoginRequest) (*api.TokenPair, error) {
	tokens, err := s.sessions.EmailLogin(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return tokenPair(tokens), nil
}

func (s *GRPCServer) CreateVerification(ctx context.Context, req *api.CreateVerificationRequest) (*api.VerificationResponse, error) {
	session, err := s.sessions.CreateVerification(ctx, req.Email, req.Purpose, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return verificationResponse(session), nil
}

func (s *GRPCServer) ResendVerification(ctx context.Context, req *api.ResendVerificationRequest) (*api.ResendVerificationResponse, error) {
	if err := s.sessions.ResendVerification(ctx, req.SessionID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ResendVerificationResponse{}, nil
}

func (s *GRPCServer) CheckVerification(ctx context.Context, req *api.CheckVerificationRequest) (*api.CheckVerificationResponse, error) {
	res, err := s.sessions.CheckVerification(ctx, req.SessionID, req.Code)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.CheckVerificationResponse{
		User:    user(res.User),
		Purpose: res.Session.Purpose,
		Tokens:  *tokenPair(res.Tokens),
	}, nil
}

func (s *GRPCServer) OAuthLogin(ctx context.Context, req *api.OAuthLoginRequest) (*api.OAuthLoginResponse, error) {
	u, tokens, err := s.sessions.OAuthLogin(ctx, services.OAuthProfile{
		Provider:          req.Provider,
		ProviderAccountID: req.ProviderAccountID,
		Emails:            req.Emails,
		DisplayName:       req.DisplayName,
		PhotoURL:          req.PhotoURL,
		AccessToken:       req.AccessToken,
		RefreshToken:      req.RefreshToken,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.OAuthLoginResponse{User: user(u), Tokens: *tokenPair(tokens)}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *api.RefreshRequest) (*api.TokenPair, error) {
	tokens, err := s.sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return tokenPair(tokens), nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *api.LogoutRequest) (*api.LogoutResponse, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	if err := s.sessions.Logout(ctx, claims.UserID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "logged out", "uid", claims.UserID)
	return &api.LogoutResponse{}, nil
}

func verificationResponse(v *models.VerificationSession) *api.VerificationResponse {
	return &api.VerificationResponse{SessionID: v.SessionID, ExpiresAt: v.ExpiresAt}
}

func tokenPair(p *models.TokenPair) *api.TokenPair {
	return &api.TokenPair{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func user(u *models.User) api.User {
	out := api.User{
		UID:           u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Nickname:      u.Nickname,
		EmailVerified: u.EmailVerified,
	}
	if u.Avatar != nil {
		out.Avatar = *u.Avatar
	}
	return out
}
