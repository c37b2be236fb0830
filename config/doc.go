// Package config loads the qrpreview service configuration from YAML.
//
// Secret-bearing fields (the token signing secret and admin API keys) are
// resolved after decoding: "${VAR}" expands strictly from the environment
// and "secretref:<provider>:<ref>" reads from a secret provider, so secrets
// need not live in the file.
//
//	auth:
//	  method: hmac
//	  secret: secretref:file:hmac_secret
//	  admin_keys:
//	    - id: ops
//	      key: ${QRPREVIEW_ADMIN_KEY}
package config
