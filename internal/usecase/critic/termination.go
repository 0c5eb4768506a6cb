package critic

import (
	"strings"

	"github.com/tidwall/gjson"
)

// IsFinal reports whether a conversation message is a finished JSON object:
// after fence stripping it must start with '{', end with '}' and parse.
func IsFinal(content string) bool {
	s := StripFences(content)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return false
	}
	return gjson.Valid(s)
}
