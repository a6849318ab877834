package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fileshare-api/internal/interface/api/rest/middleware"
)

// actorFrom extracts the verified actor identity placed into the context
// by the auth middleware.
func actorFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	s, _ := v.(string)
	id, err := uuid.Parse(s)

	return id, err == nil
}

// contentDisposition builds an attachment header that survives non-ASCII
// file names: an ASCII fallback in filename plus the RFC 5987 encoded
// original in filename*.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	if fallback == "" {
		fallback = "file"
	}

	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, rfc5987Encode(name))
}

// rfc5987Encode percent-encodes every byte outside the attr-char set of
// RFC 5987, which is narrower than what url.PathEscape leaves bare.
func rfc5987Encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte("!#$&+-.^_`|~", c) >= 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}

	return b.String()
}
