package memory

import "context"

// EmailVerifier mirrors the postgres verifier for handler tests: consume
// the token, then flip the user's verified flag.
type EmailVerifier struct {
	Tokens *VerificationTokensRepo
	Users  *UsersRepo
}

func (v *EmailVerifier) VerifyEmail(ctx context.Context, token string) (string, error) {
	userID, err := v.Tokens.Consume(ctx, token)

	if err != nil {
		return "", err
	}

	err = v.Users.MarkVerified(ctx, userID)

	if err != nil {
		return "", err
	}

	return userID, nil
}
