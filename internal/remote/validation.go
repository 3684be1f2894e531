package remote

import (
	"fmt"
	"strings"
)

// Title limits enforced before a request leaves the adapter. The hosted
// service rejects these too, but catching them here keeps the error local
// and avoids burning a remote call.
const (
	maxListTitleLen = 1024
	maxTaskTitleLen = 1024
)

// ValidateListTitle validates a task list title.
func ValidateListTitle(title string) error {
	return validateTitle("task list", title, maxListTitleLen)
}

// ValidateTaskTitle validates a task title.
func ValidateTaskTitle(title string) error {
	return validateTitle("task", title, maxTaskTitleLen)
}

func validateTitle(kind, title string, maxLen int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%s title must not be empty", kind)
	}
	if len(title) > maxLen {
		return fmt.Errorf("%s title is %d bytes long (maximum: %d)", kind, len(title), maxLen)
	}
	if strings.ContainsAny(title, "\r\n") {
		return fmt.Errorf("%s title must not contain line breaks", kind)
	}
	return nil
}
