/*
Package entramiddleware provides HTTP middleware that authenticates
requests carrying Microsoft Entra ID (Azure AD) bearer tokens.

The gateway extracts the token from the Authorization header, validates
its signature against the tenant's published JWKS, checks expiry, and
accepts both protocol generations the provider may stamp on a token: the
v2 issuer or the legacy sts.windows.net issuer, and the Application ID URI
audience or the bare client ID. Verified claims are projected into a
normalized identity record available from the request context.

# Quick Start

	import (
	    entramiddleware "github.com/entrakit/go-entra-middleware"
	    "github.com/entrakit/go-entra-middleware/jwks"
	    "github.com/entrakit/go-entra-middleware/settings"
	    "github.com/entrakit/go-entra-middleware/validator"
	)

	func main() {
	    cfg, err := settings.FromEnv()
	    if err != nil {
	        log.Fatal(err)
	    }

	    provider := jwks.NewCachingProvider()

	    jwtValidator, err := validator.New(cfg, provider)
	    if err != nil {
	        log.Fatal(err)
	    }

	    gateway, err := entramiddleware.New(
	        entramiddleware.WithValidator(jwtValidator),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.ListenAndServe(":8080", gateway.CheckAuth(myHandler))
	}

Inside a handler:

	record, ok := entramiddleware.IdentityFromContext(r.Context())
	if ok {
	    fmt.Println(record.Email, record.Groups)
	}

Adapters for echo, gin, and gRPC live under framework/.
*/
package entramiddleware
