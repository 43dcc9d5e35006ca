// Package env reports which deployment the process runs in.
package env

import (
	"os"
	"strings"
)

type Environment string

const (
	Local      Environment = "local"
	Production Environment = "production"

	Key string = "ENV"
)

// Current is read from ENV once at startup.
var Current = FromEnv()

func (e Environment) IsProduction() bool { return e == Production }

func (e Environment) String() string { return string(e) }

// Parse maps a raw ENV value to an Environment. Matching ignores case and
// accepts "prod"; anything else is Local.
func Parse(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return Production
	default:
		return Local
	}
}

func FromEnv() Environment { return Parse(os.Getenv(Key)) }
