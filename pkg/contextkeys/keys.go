package contextkeys

type contextKey string

const (
	ClaimsKey    contextKey = "Claims"
	ProfileKey   contextKey = "UserProfile"
	RequestIDKey contextKey = "RequestID"
)
