package utils

import "time"

func StringPtr(s string) *string {
	return &s
}

// StringPtrOrNil maps the empty string to nil so optional form fields land as
// NULL rather than "".
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func PtrTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}

	return *t
}
