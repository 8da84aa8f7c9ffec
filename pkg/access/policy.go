package access

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy holds the ordered rules of each controller.
//
//	articles:
//	  - actions: [delete]
//	    roles: [ROLE_ADMIN]
//	  - actions: [search]
//	    data: true
type Policy map[string][]Rule

// For returns the rules of controller, matched case-insensitively.
func (p Policy) For(controller string) []Rule {
	if rules, ok := p[controller]; ok {
		return rules
	}
	for name, rules := range p {
		if strings.EqualFold(name, controller) {
			return rules
		}
	}
	return nil
}

func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read access policy %s: %w", path, err)
	}
	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse access policy: %w", err)
	}

	for controller, rules := range p {
		for i, r := range rules {
			if len(r.Actions) == 0 {
				return nil, fmt.Errorf("access policy %s[%d]: rule has no actions", controller, i)
			}
		}
	}
	if p == nil {
		p = Policy{}
	}
	return p, nil
}
