package utils

import (
	"strconv"
	"strings"
)

func IntFromString(s string, defaultValue int) int {
	atoi, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}
	return atoi
}
