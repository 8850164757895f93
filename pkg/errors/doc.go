// Package errors provides structured errors with codes that map onto HTTP statuses.
//
// Domain packages declare their failures as package-level *Error sentinels so that
// callers can match them with errors.Is while handlers render them uniformly:
//
//	var ErrCodeExpired = errors.New(errors.ErrCodeExpired, "Code has expired")
//
//	if err := svc.Verify(ctx, email, code); err != nil {
//		errors.Render(w, r, err)
//		return
//	}
//
// Codes and statuses:
//
//	VALIDATION_FAILED, EXPIRED, INVALID_CODE, INVALID_TOKEN,
//	INVALID_CREDENTIALS, ACCOUNT_INACTIVE   -> 400
//	UNAUTHORIZED                            -> 401
//	FORBIDDEN                               -> 403
//	NOT_FOUND                               -> 404
//	CONFLICT                                -> 409
//	RATE_LIMIT_EXCEEDED                     -> 429
//	anything else                           -> 500
package errors
