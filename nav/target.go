package nav

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	pagePattern     = regexp.MustCompile(`^[A-Za-z0-9_\-./]+\.html?$`)
	fragmentPattern = regexp.MustCompile(`^[A-Za-z0-9_\-:.]+$`)

	ErrInvalidTarget = errors.New("invalid target")
)

// Target a page reference with an optional in-page anchor
type Target struct {
	Page     string `json:"page"`
	Fragment string `json:"fragment,omitempty"`
}

// ParseTarget splits "<page>.html#<fragment>" or "<page>.html" into a Target
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return Target{}, errors.Wrap(ErrInvalidTarget, "empty target")
	}
	page, fragment, hasFragment := strings.Cut(s, FragmentSeparator)
	if !pagePattern.MatchString(page) {
		return Target{}, errors.Wrapf(ErrInvalidTarget, "bad page %q in %q", page, s)
	}
	if leavesRoot(page) {
		return Target{}, errors.Wrapf(ErrInvalidTarget, "page %q in %q is not relative to the documentation root", page, s)
	}
	if hasFragment && !fragmentPattern.MatchString(fragment) {
		return Target{}, errors.Wrapf(ErrInvalidTarget, "bad fragment %q in %q", fragment, s)
	}
	return Target{Page: page, Fragment: fragment}, nil
}

// IsPage true if the target addresses a whole page
func (t Target) IsPage() bool {
	return t.Fragment == ""
}

func (t Target) String() string {
	if t.Fragment == "" {
		return t.Page
	}
	return t.Page + FragmentSeparator + t.Fragment
}

// leavesRoot absolute pages and ".." segments
func leavesRoot(page string) bool {
	if strings.HasPrefix(page, "/") {
		return true
	}
	for _, segment := range strings.Split(page, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}
