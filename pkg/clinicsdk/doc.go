/*
Package clinicsdk is the client for the BillyBuddy clinic backend.

It is organised around two types:

  - Client: unauthenticated calls (sign-up, sign-in, password recovery,
    bootstrap, health) that return tokens or create a Session.
  - Session: calls made on behalf of a signed-in user. Access tokens are
    refreshed automatically shortly before they expire.

Every request carries the project API key in the apikey header:

	client := clinicsdk.New("https://clinic.example", apiKey)

	sess, err := client.SignInWithPassword(ctx, email, password)
	var mfa *clinicsdk.MFARequiredError
	if errors.As(err, &mfa) {
		sess, err = client.VerifyMFA(ctx, mfa.MFAToken, code)
	}

	profile, err := sess.GetProfile(ctx, sess.UserID())

Errors returned by the backend are *APIError values carrying the HTTP status
and a stable error code.
*/
package clinicsdk
