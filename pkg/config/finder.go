package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter 使用 glob 模式匹配远程名称,没有模式时返回全部远程
// '*' 不跨越 '/', '**' 可以跨越, '{a,b}' 表示多选; 结果按注册顺序去重
func (r *Registry) Filter(patterns []string) ([]string, error) {
	names := r.Names()
	if len(patterns) == 0 {
		return names, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	var matched []string
	for _, name := range names {
		for _, p := range patterns {
			ok, err := doublestar.Match(p, name)
			if err != nil {
				return nil, fmt.Errorf("match %q: %w", p, err)
			}
			if ok {
				matched = append(matched, name)
				break
			}
		}
	}
	return matched, nil
}
