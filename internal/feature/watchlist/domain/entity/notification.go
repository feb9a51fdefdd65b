package entity

// Variant controls how a notification is styled.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a short user-facing message (a toast).
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}
