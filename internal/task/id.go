package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// suffixLength is the number of random characters appended to each task ID.
const suffixLength = 8

// NewTaskID derives a task identifier of the form
// <prefix>_<unix-millis>_<8-char-random-suffix>. The prefix names the task
// category (e.g. the content type being generated). Uniqueness is
// probabilistic, not formally guaranteed; consumers must treat IDs as opaque
// handles and must not rely on their lexicographic or temporal ordering.
func NewTaskID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}
