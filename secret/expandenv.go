package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// literalDollar masks "$$" escapes during expansion so the dollar
// survives os.ExpandEnv untouched.
const literalDollar = "\x00mapops-dollar\x00"

// ExpandEnvStrict expands environment variables in s.
//
// `$VAR` and `${VAR}` both expand, but only the braced form is
// strict: a `${VAR}` whose variable is unset fails instead of
// silently expanding to "". `$$` emits a literal `$`.
func ExpandEnvStrict(s string) (string, error) {
	masked := strings.ReplaceAll(s, "$$", literalDollar)

	var missing []string
	for _, match := range envVarPattern.FindAllStringSubmatch(masked, -1) {
		name := match[1]
		if _, ok := os.LookupEnv(name); !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("secret: unset environment variables: %s", strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(os.ExpandEnv(masked), literalDollar, "$"), nil
}
