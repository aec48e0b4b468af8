package output

import (
	"fmt"
	"strings"

	"github.com/swoopdl/swoop/internal/utils"
)

// PrintProgressBar renders a fixed-width bar for current/total bytes. With
// an unknown total it falls back to a byte counter.
func PrintProgressBar(current, total int64, width int) string {
	if total <= 0 {
		return debugStyle.Render(fmt.Sprintf("[%s downloaded]", utils.FormatBytes(uint64(max(current, 0)))))
	}
	if current > total {
		current = total
	}
	filled := int(float64(width) * float64(current) / float64(total))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
	percent := float64(current) / float64(total) * 100
	return fmt.Sprintf("%s %5.1f%% ", pendingStyle.Render(bar), percent)
}
