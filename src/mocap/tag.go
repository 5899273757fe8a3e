package mocap

import (
	"fmt"
	"strings"
)

const (
	// Separator joins a rigid body name and one of its markers.
	Separator = ":"

	excludedMarker = "Unlabeled"
)

// Tag names a rigid body ("Rigid Body 1") or one of its markers
// ("Rigid Body 1:Marker1").
type Tag string

// NewTag validates s as an addressable marker tag.
func NewTag(s string) (Tag, error) {
	if strings.TrimSpace(s) == "" || strings.Contains(s, excludedMarker) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, s)
	}
	return Tag(s), nil
}

// ParseTags validates every string in names.
func ParseTags(names []string) ([]Tag, error) {
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		tag, err := NewTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Qualified reports whether the tag names a marker of a rigid body.
func (t Tag) Qualified() bool {
	return strings.Contains(string(t), Separator)
}

// Body returns the rigid body part of the tag.
func (t Tag) Body() string {
	body, _, _ := strings.Cut(string(t), Separator)
	return body
}

func (t Tag) String() string {
	return string(t)
}

// ListTags returns the distinct addressable labels of the header row in
// first-seen order.
func ListTags(doc *Document) []Tag {
	seen := make(map[string]bool)
	tags := []Tag{}
	for _, label := range doc.Header() {
		if seen[label] {
			continue
		}
		tag, err := NewTag(label)
		if err != nil {
			continue
		}
		seen[label] = true
		tags = append(tags, tag)
	}
	return tags
}
