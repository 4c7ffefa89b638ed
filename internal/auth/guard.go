package auth

import "blogapp/internal/model"

// CanModify reports whether user may edit or delete post.
// Only the owner may; anonymous users never may.
func CanModify(user *model.User, post *model.Post) bool {
	if user == nil || post == nil {
		return false
	}
	return post.OwnerID == user.ID
}
