// Package auth provides password hashing and bearer token sessions backed by
// Redis.
//
// Passwords are hashed with bcrypt before they reach the user store. Tokens
// are opaque random strings; only their SHA-256 digest is used as the Redis
// key, and each session is stored with a TTL so Redis expires it on its own.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	tokens := auth.NewTokenStore(redisClient, 30*time.Minute)
//	authenticator := auth.New(users, tokens)
//
//	// Register
//	err := authenticator.Signup(ctx, "user1", "password123")
//
//	// Exchange credentials for a token
//	token, session, err := authenticator.Login(ctx, "user1", "password123")
//
//	// Validate a bearer token
//	session, err = authenticator.Authenticate(ctx, token)
//	if errors.Is(err, auth.ErrInvalidToken) {
//		// respond 401
//	}
//
// # Metrics
//
// The package exports Prometheus counters for issued tokens, lookup results
// and Redis failures. They are registered with the default registry.
package auth
