package domain

type (
	Email    = string
	Password = string
	UserId   = int64

	DocumentId = string
	Username   = string

	// Visibility tiers for documents
	Visibility = string
)

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

func ValidVisibility(v Visibility) bool {
	return v == VisibilityPublic || v == VisibilityPrivate || v == VisibilityUnlisted
}
