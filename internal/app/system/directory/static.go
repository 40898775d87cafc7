// internal/app/system/directory/static.go
package directory

import (
	"context"
	"strings"
)

// Static is a Client over a fixed result set, used in development (no API
// key configured) and in tests. It filters its businesses by term and
// location substring match and truncates to MaxResults.
type Static struct {
	Businesses []Business

	// Err, when set, is returned by every Search call.
	Err error
}

func (s *Static) Search(ctx context.Context, q Query) ([]Business, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	term := strings.ToLower(q.Term)
	loc := strings.ToLower(q.Location)

	var out []Business
	for _, b := range s.Businesses {
		if term != "" && !strings.Contains(strings.ToLower(b.Name), term) &&
			!strings.Contains(strings.ToLower(b.Category), term) {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(b.Address), loc) {
			continue
		}
		out = append(out, b)
		if q.MaxResults > 0 && len(out) == q.MaxResults {
			break
		}
	}
	return out, nil
}
