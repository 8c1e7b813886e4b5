package models

import "strings"

// FilesKey is the interview metadata entry that carries uploaded file descriptors.
// It is never treated as an answer.
const FilesKey = "__files__"

// Answers maps an interview question id to the owner's free-text answer.
type Answers map[string]string

// Get returns the trimmed answer for the question, or an empty string when absent.
func (a Answers) Get(questionID string) string {
	if a == nil || questionID == FilesKey {
		return ""
	}

	return strings.TrimSpace(a[questionID])
}
