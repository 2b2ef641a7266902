package cli

import "fmt"

type notFoundError struct {
	kind string
	key  string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.key)
}

func errNotFound(kind, key string) error {
	return notFoundError{kind: kind, key: key}
}

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func errUsage(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}
