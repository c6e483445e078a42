package domain

// TokenPair carries a freshly issued access/refresh token couple. It is
// ephemeral and never persisted; token expiry is the only cancellation
// mechanism in this design.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
