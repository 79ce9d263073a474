package analysis

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// guardSecrets rejects a closure that would ship credential-looking files.
// Excludes are supposed to keep these out of the tree entirely; the guard is
// the backstop for anything that slips through. Files explicitly declared as
// data or binaries never reach the closure, so everything flagged here is an
// accidental inclusion.
func guardSecrets(c *Closure, declared map[string]struct{}) error {
	var errs []error
	for _, f := range c.Files {
		if _, ok := declared[f.Src]; ok {
			continue
		}
		base := strings.ToLower(path.Base(f.Path))
		switch {
		case isEnvFile(base):
			errs = append(errs, fmt.Errorf("bundle would include environment file %s%s", f.Path, leakedKeys(f.Src)))
		case strings.Contains(base, "credential"), strings.Contains(base, "secret"):
			errs = append(errs, fmt.Errorf("bundle would include credential file %s", f.Path))
		case strings.HasSuffix(base, ".key"),
			strings.HasPrefix(base, "id_rsa"),
			strings.HasPrefix(base, "id_ed25519"):
			errs = append(errs, fmt.Errorf("bundle would include private key %s", f.Path))
		}
	}
	return errors.Join(errs...)
}

func isEnvFile(base string) bool {
	return base == ".env" || strings.HasPrefix(base, ".env.")
}

// leakedKeys names which keys an env file would have exposed, without ever
// touching the values.
func leakedKeys(src string) string {
	vars, err := godotenv.Read(src)
	if err != nil || len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf(" (keys: %s)", strings.Join(keys, ", "))
}
