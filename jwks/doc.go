/*
Package jwks fetches and caches the signing keys an Entra ID tenant
publishes, and resolves individual keys by kid for token verification.

CachingProvider is the production type: it memoizes the discovery document
and the key set per tenant settings for the process lifetime, populates
each cache entry exactly once even under concurrent first use, and forces
a single key-set refresh when a token names a kid the cached set does not
contain (key rotation). A failed fetch is never cached; the next request
retries.

	provider := jwks.NewCachingProvider()
	key, err := provider.FindKey(ctx, cfg, kid)

Multiple tenant settings can share one CachingProvider; entries are keyed
by the settings identity, so tenants never see each other's keys.
*/
package jwks
