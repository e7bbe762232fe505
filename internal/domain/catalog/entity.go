package catalog

import "errors"

var (
	ErrPestNotFound  = errors.New("pest not found")
	ErrDuplicateSlug = errors.New("duplicate pest slug")
)

// Pest is one static catalog entry.
type Pest struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Biology     string   `json:"biology"`
	Signs       string   `json:"signs"`
	Prevention  string   `json:"prevention"`
	Treatment   string   `json:"treatment"`
	DIY         string   `json:"diy"`
	FolderName  string   `json:"folder_name"`
	Images      []string `json:"images"`
}

// ImageResolver maps an image folder to public URLs.
type ImageResolver interface {
	ImagesFor(folder string) []string
	FirstImage(folder string) string
}
