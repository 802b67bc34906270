// Package password implements one-way password hashing with bcrypt and
// generation of temporary passwords for the forgot-password and
// admin-provisioning flows.
//
// # Output format
//
// Hashes are standard bcrypt strings ($2a$10$...) produced at cost 10; each
// hash embeds its own random salt.
//
// # Architecture boundaries
//
// This package owns hashing, verification, and temporary-password
// generation only. When a password is accepted or required is decided by
// the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other fixauth package.
//   - Log plaintext passwords at runtime.
package password
