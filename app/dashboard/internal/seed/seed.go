// Package seed 提供新用户的示例提交
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

//go:embed samples.yaml
var samples []byte

// Samples 解析内置的示例提交，每次返回新的副本
func Samples() ([]*policy.Submission, error) {
	var list []*policy.Submission
	if err := yaml.Unmarshal(samples, &list); err != nil {
		return nil, fmt.Errorf("parse sample submissions: %w", err)
	}
	return list, nil
}
