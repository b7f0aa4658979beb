// Package domain contains the core model of the sample-test launcher.
//
// The domain is transport- and persistence-agnostic: it does not depend on YAML parsing,
// net/http, subprocesses or the filesystem. Infra/adapters map into/from these types.
package domain
