// Package policy decides who may change a message.
package policy

import "messageboard/internal/domain"

// CanModify reports whether actor owns m. Only the author may edit or delete.
func CanModify(actor domain.User, m domain.Message) bool {
	return actor.ID == m.AuthorID
}

func Authorize(actor domain.User, m domain.Message) error {
	if !CanModify(actor, m) {
		return domain.ErrForbidden
	}
	return nil
}
