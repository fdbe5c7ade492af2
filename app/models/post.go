package models

import (
	"strings"
	"time"
)

// Normalize trims whitespace, applies the default category and drops blank tags.
func (in *PostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = DefaultCategory
	}

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	in.Tags = tags
}

// Validate checks the input and returns every violation found.
// It does not mutate the input; call Normalize first.
func (in PostInput) Validate() ValidationErrors {
	return validateStruct(in)
}

// BeforeCreate sets up timestamps before the post is first stored
func (p *Post) BeforeCreate(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
}

// Apply replaces the editable fields of the post with the input.
// Owner and CreatedAt are left untouched.
func (p *Post) Apply(in PostInput, now time.Time) {
	p.Title = in.Title
	p.Content = in.Content
	p.Category = in.Category
	p.Tags = append([]string{}, in.Tags...)
	p.Touch(now)
}

// Touch advances UpdatedAt to now, never moving it backwards.
func (p *Post) Touch(now time.Time) {
	if now.After(p.UpdatedAt) {
		p.UpdatedAt = now
	}
}

// HasTag reports whether the post carries the tag exactly.
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
