// Package jwt issues and verifies the engine's access and refresh tokens.
// The two kinds are signed with distinct secrets and validated with strict
// semantics: HS256 only, issuer pinned, role claim closed-set.
package jwt
