package board

import (
	"fmt"
	"time"
)

func LastUpdatedLabel(updated, now time.Time) string {
	if updated.IsZero() {
		return "Never"
	}

	diff := int(now.Sub(updated) / time.Second)
	switch {
	case diff < 60:
		return fmt.Sprintf("%ds ago", diff)
	case diff < 3600:
		return fmt.Sprintf("%dm ago", diff/60)
	}
	return fmt.Sprintf("%dh ago", diff/3600)
}
