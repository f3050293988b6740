package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// chapterHeadingPattern matches the fixed chapter-name prefix of a
// top-level heading: "第一章 绪论" or "第2章 相关工作".
var chapterHeadingPattern = regexp.MustCompile(`^第\s*([一二三四五六七八九十百零两\d]+)\s*章\s*(.*)$`)

var cnDigits = map[rune]int{
	'零': 0, '一': 1, '两': 2, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var cnUnits = []string{"", "十", "二十", "三十", "四十", "五十", "六十", "七十", "八十", "九十"}

// parseChapterHeading splits a chapter heading into its written numeral
// value and the bare title. Returns ok=false for non-chapter headings.
func parseChapterHeading(title string) (num int, bare string, ok bool) {
	m := chapterHeadingPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return 0, "", false
	}
	return parseCNNumeral(m[1]), strings.TrimSpace(m[2]), true
}

// parseCNNumeral converts a Chinese numeral (or plain digits) up to 99
// to an int. Returns 0 when the numeral cannot be read; callers treat 0
// as "unknown" since chapter ordinals start at 1.
func parseCNNumeral(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	runes := []rune(s)
	switch len(runes) {
	case 1:
		if runes[0] == '十' {
			return 10
		}
		return cnDigits[runes[0]]
	case 2:
		if runes[0] == '十' { // 十一..十九
			return 10 + cnDigits[runes[1]]
		}
		if runes[1] == '十' { // 二十, 三十...
			return cnDigits[runes[0]] * 10
		}
	case 3:
		if runes[1] == '十' { // 二十一..九十九
			return cnDigits[runes[0]]*10 + cnDigits[runes[2]]
		}
	}
	return 0
}

// formatCNNumeral renders 1..99 as a Chinese numeral for computed
// chapter labels ("第三章").
func formatCNNumeral(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	if n < 10 {
		return cnNumeralDigit(n)
	}
	if n < 100 {
		tens := cnUnits[n/10]
		if n%10 == 0 {
			return tens
		}
		return tens + cnNumeralDigit(n%10)
	}
	return strconv.Itoa(n)
}

func cnNumeralDigit(n int) string {
	return [...]string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}[n]
}
