package gallery

// Viewer is the position within one pest's image list.
// Index always satisfies 0 <= Index < len(Images).
type Viewer struct {
	Images []string `json:"images"`
	Index  int      `json:"index"`
}

// NewViewer starts at the first image. An empty list has nothing to show.
func NewViewer(images []string) (*Viewer, error) {
	if len(images) == 0 {
		return nil, ErrEmptyGallery
	}
	list := make([]string, len(images))
	copy(list, images)
	return &Viewer{Images: list}, nil
}

// Next advances one image, wrapping to the first.
func (v *Viewer) Next() {
	v.Index = (v.Index + 1) % len(v.Images)
}

// Previous steps back one image, wrapping to the last.
func (v *Viewer) Previous() {
	n := len(v.Images)
	v.Index = (v.Index - 1 + n) % n
}

// JumpTo moves to index i. Out of range indexes are ignored.
func (v *Viewer) JumpTo(i int) bool {
	if i < 0 || i >= len(v.Images) {
		return false
	}
	v.Index = i
	return true
}

// Current returns the URL at the current index.
func (v *Viewer) Current() string {
	return v.Images[v.Index]
}

func (v *Viewer) valid() bool {
	return len(v.Images) > 0 && v.Index >= 0 && v.Index < len(v.Images)
}
