package server

import "fmt"

// ANSI escapes for the DEV route table.
const (
	ansiReset   = "\033[0m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
	ansiGray    = "\033[90m"
)

func methodColour(method string) string {
	switch method {
	case "GET":
		return ansiGreen
	case "POST":
		return ansiBlue
	case "PATCH":
		return ansiMagenta
	case "OPTIONS":
		return ansiCyan
	case "DELETE":
		return ansiYellow
	default:
		return ansiGray
	}
}

// paintMethod pads method to a fixed width and colours it.
func paintMethod(method string) string {
	return methodColour(method) + fmt.Sprintf(" %-7s", method) + ansiReset
}
