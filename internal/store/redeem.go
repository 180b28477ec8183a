package store

import (
	"time"

	"github.com/gbakws/testimonial-server/internal/domain"
)

// CheckRedeemable classifies a loaded link for redemption at the given
// time. A nil link is ErrNotFound. Used is reported before expired.
func CheckRedeemable(link *domain.Link, at time.Time) error {
	switch {
	case link == nil:
		return ErrNotFound
	case link.IsUsed:
		return ErrLinkUsed
	case link.IsExpiredAt(at):
		return ErrLinkExpired
	default:
		return nil
	}
}
