package breach

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/oksasatya/auth-service/internal/domain/entity"
)

// Corpus is a local, in-memory set of known-compromised passwords.
type Corpus struct {
	passwords map[string]struct{}
}

func NewCorpus(passwords ...string) *Corpus {
	c := &Corpus{passwords: make(map[string]struct{}, len(passwords))}
	for _, p := range passwords {
		c.passwords[p] = struct{}{}
	}
	return c
}

// LoadCorpus reads one password per line. Blank lines and lines starting
// with '#' are skipped; surrounding whitespace is not part of the password.
func LoadCorpus(r io.Reader) (*Corpus, error) {
	c := NewCorpus()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c.passwords[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Corpus) IsBreached(ctx context.Context, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := c.passwords[password]
	return ok, nil
}

func (c *Corpus) Len() int { return len(c.passwords) }

var _ entity.BreachChecker = (*Corpus)(nil)
