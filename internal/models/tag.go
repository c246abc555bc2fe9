package models

// GlobalTag is a tag known to the whole store with its default color.
type GlobalTag struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

// TagWithColor overrides the display color of one tag on one account.
type TagWithColor struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}
