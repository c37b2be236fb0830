// Package secret keeps signing secrets and admin keys out of config files.
//
// Config values are first expanded against the environment with
// ExpandEnvStrict, where a reference to an unset variable is an error
// rather than an empty string. A value of the form
//
//	secretref:<provider>:<ref>
//
// is then resolved through a Provider. Two providers are built in: "env"
// reads an environment variable and "file" reads a file such as a mounted
// Kubernetes secret. References may also appear inline inside a longer
// value.
package secret
