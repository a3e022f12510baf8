// Package usercfg models the per-installation configuration carried in
// the URL path of every addon request, either inline as an escaped JSON
// token or indirectly as a stored session id. It also owns the AES-GCM
// context that protects embedded credentials.
package usercfg
