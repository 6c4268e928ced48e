package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// CallerSecretHeaderName carries the shared secret of trusted internal
// callers, such as the OAuth provider callback service.
const CallerSecretHeaderName = "x-caller-secret"

// Verification purposes.
const (
	PurposeSignup        = "signup"
	PurposeResetPassword = "resetPassword"
)

// Account types and the implicit password provider.
const (
	AccountTypeEmail = "email"
	AccountTypeOAuth = "oauth"

	ProviderEmail  = "email"
	ProviderGoogle = "google"
	ProviderGithub = "github"
)
