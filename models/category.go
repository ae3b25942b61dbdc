package models

import (
	"strings"

	"github.com/gosimple/slug"
)

type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

var categoryNames = []string{
	"business",
	"technology",
	"comedy",
	"education",
	"hobbies",
	"government",
	"mental health",
	"family",
	"music",
	"politics",
	"spirituality",
	"culture",
	"arts",
}

// Categories trả về danh mục cố định theo đúng thứ tự hiển thị.
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		out = append(out, Category{Name: name, Slug: slug.Make(name)})
	}
	return out
}

// ResolveCategory nhận tên hoặc slug, trả về tên chuẩn.
func ResolveCategory(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}
	s := slug.Make(v)
	for _, name := range categoryNames {
		if name == v || slug.Make(name) == s {
			return name, true
		}
	}
	return "", false
}

// Voices là các voice tag mà client được chọn.
var Voices = []string{"alloy", "shimmer", "nova", "echo", "fable", "onyx"}

func IsKnownVoice(v string) bool {
	for _, voice := range Voices {
		if voice == v {
			return true
		}
	}
	return false
}
