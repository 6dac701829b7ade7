//go:build e2e

package test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlowE2E(t *testing.T) {
	env := SetupTestEnvironment(t)

	const (
		email    = "bob@example.com"
		password = "Password123"
	)

	t.Run("register", func(t *testing.T) {
		apiCall{
			name:   "padded email fails validation",
			method: http.MethodPost,
			path:   registerEndpoint,
			body:   map[string]string{"fullName": "Bob Builder", "email": "  Bob@Example.com ", "password": password},
			want:   http.StatusBadRequest,
		}.run(t, env)

		resp := apiCall{
			name:   "mixed case email is normalized",
			method: http.MethodPost,
			path:   registerEndpoint,
			body:   map[string]string{"fullName": "Bob Builder", "email": "Bob@Example.com", "password": password},
			want:   http.StatusCreated,
			check:  hasFields("token", "user"),
		}.run(t, env)

		user := resp["user"].(map[string]any)
		assert.Equal(t, email, user["email"])
		assert.Equal(t, "Bob Builder", user["fullName"])
		assert.NotEmpty(t, user["id"])
		assert.NotContains(t, user, "password")
		assert.NotContains(t, user, "passwordHash")

		apiCall{
			name:   "duplicate in another case",
			method: http.MethodPost,
			path:   registerEndpoint,
			body:   map[string]string{"fullName": "Other Bob", "email": "BOB@example.COM", "password": password},
			want:   http.StatusBadRequest,
			check:  hasMessage("Email already in use"),
		}.run(t, env)
	})

	t.Run("bad_credentials_are_uniform", func(t *testing.T) {
		runCalls(t, env,
			apiCall{
				name:   "wrong password",
				method: http.MethodPost,
				path:   loginEndpoint,
				body:   map[string]string{"email": email, "password": "wrong-password"},
				want:   http.StatusUnauthorized,
				check:  hasMessage("Invalid credentials"),
			},
			apiCall{
				name:   "unknown email",
				method: http.MethodPost,
				path:   loginEndpoint,
				body:   map[string]string{"email": "nobody@example.com", "password": password},
				want:   http.StatusUnauthorized,
				check:  hasMessage("Invalid credentials"),
			},
		)
	})

	var token string
	t.Run("login_and_me", func(t *testing.T) {
		resp := apiCall{
			name:   "login",
			method: http.MethodPost,
			path:   loginEndpoint,
			body:   map[string]string{"email": "BOB@example.com", "password": password},
			want:   http.StatusOK,
			check:  hasFields("token", "user"),
		}.run(t, env)
		token = stringField(t, resp, "token")

		me := apiCall{name: "me", method: http.MethodGet, path: meEndpoint, header: bearer(token), want: http.StatusOK}.run(t, env)
		assert.Equal(t, email, me["user"].(map[string]any)["email"])
	})

	t.Run("gate_rejections", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "683cdb8aa96ad71e8e075bd1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		})
		expiredToken, err := expired.SignedString([]byte(e2eSecret))
		require.NoError(t, err)

		tampered := []byte(token)
		tampered[len(tampered)-2] ^= 1

		for name, header := range map[string]map[string]string{
			"missing":   nil,
			"scheme":    {"Authorization": "Token " + token},
			"expired":   bearer(expiredToken),
			"tampered":  bearer(string(tampered)),
			"malformed": bearer("not-a-jwt"),
		} {
			apiCall{
				name:   name,
				method: http.MethodGet,
				path:   meEndpoint,
				header: header,
				want:   http.StatusUnauthorized,
				check:  hasMessage("Unauthorized"),
			}.run(t, env)
		}
	})

	t.Run("change_password", func(t *testing.T) {
		runCalls(t, env,
			apiCall{
				name:   "wrong current password",
				method: http.MethodPut,
				path:   profileEndpoint + "/password",
				body:   map[string]string{"currentPassword": "nope-nope", "newPassword": "Password456"},
				header: bearer(token),
				want:   http.StatusBadRequest,
				check:  hasMessage("Current password is incorrect"),
			},
			apiCall{
				name:   "change password",
				method: http.MethodPut,
				path:   profileEndpoint + "/password",
				body:   map[string]string{"currentPassword": password, "newPassword": "Password456"},
				header: bearer(token),
				want:   http.StatusOK,
				check:  hasMessage("Password updated successfully"),
			},
		)

		loginExpect(t, env, email, password, http.StatusUnauthorized)
		loginExpect(t, env, email, "Password456", http.StatusOK)

		// issued tokens stay valid until they expire
		apiCall{name: "me after change", method: http.MethodGet, path: meEndpoint, header: bearer(token), want: http.StatusOK}.run(t, env)
	})

	t.Run("profile_update", func(t *testing.T) {
		registerUser(t, env, "Carol", "carol@example.com", password)

		runCalls(t, env,
			apiCall{
				name:   "take carol's email",
				method: http.MethodPut,
				path:   profileEndpoint,
				body:   map[string]string{"email": "Carol@example.com"},
				header: bearer(token),
				want:   http.StatusBadRequest,
				check:  hasMessage("Email already in use"),
			},
			apiCall{
				name:   "bio only",
				method: http.MethodPut,
				path:   profileEndpoint,
				body:   map[string]string{"bio": "<b>builds</b> things"},
				header: bearer(token),
				want:   http.StatusOK,
				check: func(t *testing.T, m map[string]any) {
					assert.Equal(t, "builds things", m["bio"])
					assert.Equal(t, "Bob Builder", m["fullName"])
					assert.Equal(t, email, m["email"])
				},
			},
		)
	})
}
