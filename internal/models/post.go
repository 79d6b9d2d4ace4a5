package models

import "strings"

// Author is the stored, structured form of a post's author.
type Author struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
}

type Post struct {
	ID      string
	Title   string
	Content string
	Author  Author
}

// PostUpdate carries the fields of a partial update. Nil fields are left
// untouched.
type PostUpdate struct {
	Title   *string
	Content *string
	Author  *Author
}

func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Author == nil
}

// Apply returns a copy of p with the set fields of u replaced.
func (u PostUpdate) Apply(p Post) Post {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Author != nil {
		p.Author = *u.Author
	}
	return p
}

// PostResponse is the wire form of a post. The author is always flattened.
type PostResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// SplitFullName splits at the first space only, so "Anne Marie Smith"
// becomes Anne / "Marie Smith".
func SplitFullName(fullName string) Author {
	first, last, _ := strings.Cut(fullName, " ")
	return Author{FirstName: first, LastName: last}
}

func FullName(a Author) string {
	switch {
	case a.LastName == "":
		return a.FirstName
	case a.FirstName == "":
		return a.LastName
	}
	return a.FirstName + " " + a.LastName
}

func Serialize(p Post) PostResponse {
	return PostResponse{
		ID:      p.ID,
		Title:   p.Title,
		Author:  FullName(p.Author),
		Content: p.Content,
	}
}

func SerializeAll(posts []Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, Serialize(p))
	}
	return out
}
