// Package cookie writes and reads HTTP cookies through a Jar of shared
// attributes.
//
// A Jar is usually built from the application's JAR settings:
//
//	jar := cookie.FromMap(map[string]any{
//	    "expire":   3600,
//	    "samesite": "strict",
//	    "secure":   true,
//	}, cookie.WithSecret(os.Getenv("COOKIE_SECRET")))
//
//	jar.Set(w, "theme", "dark", 0)          // jar lifetime
//	jar.Set(w, "visit", "1", 24*time.Hour) // explicit lifetime
//	jar.Delete(w, "theme")
//
// With a secret of at least 32 bytes the jar also writes tamper-evident
// values (SetSigned, HMAC-SHA256), confidential values (SetEncrypted,
// AES-256-GCM) and one-shot flash messages (SetFlash/Flash). Without a
// secret those calls return ErrNoSecret.
package cookie
