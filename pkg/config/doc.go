// Package config provides shared configuration helpers and env-tagged
// config structs used by the orgidm service binaries.
package config
