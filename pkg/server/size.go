package server

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with 1024-based units up to GB, rounded to
// two decimals without trailing zeros: 1536 is "1.5 KB". Anything past the
// last unit stays in GB.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	i := 0
	for i < len(sizeUnits)-1 && bytes >= int64(1)<<(10*(i+1)) {
		i++
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}
