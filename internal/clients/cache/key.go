package cache

import "strings"

const separator = ":"

// Key joins a namespace and key parts: Key("dashboard", "42", "summary") is "dashboard:42:summary".
func Key(namespace string, parts ...string) string {
	return strings.Join(append([]string{namespace}, parts...), separator)
}

// InNamespace reports whether key equals namespace or lies under it.
func InNamespace(key, namespace string) bool {
	return key == namespace || strings.HasPrefix(key, namespace+separator)
}

func namespaceOf(key string) string {
	if i := strings.Index(key, separator); i >= 0 {
		return key[:i]
	}
	return key
}
