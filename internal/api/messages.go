package api

import "time"

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type User struct {
	UID           string     `json:"uid"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Nickname      string     `json:"nickname"`
	Avatar        string     `json:"avatar,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
}

type GetAuthConfigRequest struct{}

type AuthConfigItem struct {
	Provider string `json:"provider"`
}

type GetAuthConfigResponse struct {
	Items []AuthConfigItem `json:"items"`
}

type EmailSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerificationResponse identifies a verification session. The code itself
// is only ever sent by email.
type VerificationResponse struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type EmailLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateVerificationRequest struct {
	Email    string `json:"email"`
	Purpose  string `json:"purpose"`
	Password string `json:"password,omitempty"`
}

type ResendVerificationRequest struct {
	SessionID string `json:"session_id"`
}

type ResendVerificationResponse struct{}

type CheckVerificationRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

type CheckVerificationResponse struct {
	User    User      `json:"user"`
	Purpose string    `json:"purpose"`
	Tokens  TokenPair `json:"tokens"`
}

// OAuthLoginRequest carries a profile already authenticated by the provider
// callback service. The server only accepts it from callers presenting the
// shared caller secret in metadata.
type OAuthLoginRequest struct {
	Provider          string   `json:"provider"`
	ProviderAccountID string   `json:"provider_account_id"`
	Emails            []string `json:"emails"`
	DisplayName       string   `json:"display_name,omitempty"`
	PhotoURL          string   `json:"photo_url,omitempty"`
	AccessToken       string   `json:"access_token,omitempty"`
	RefreshToken      string   `json:"refresh_token,omitempty"`
}

type OAuthLoginResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}
