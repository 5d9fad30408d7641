// pkg/config/rules.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"StockAtlas/pkg/classifier"
	"StockAtlas/pkg/model"
	"StockAtlas/pkg/scorer"
)

// RuleSet 一次运行内不可变的规则配置：分类规则、抽取词表、
// 打分词表、来源优先级和行业树。
type RuleSet struct {
	Classification *classifier.Rules      `yaml:"classification"`
	Vocabulary     *classifier.Vocabulary `yaml:"vocabulary"`
	Lexicon        *scorer.Lexicon        `yaml:"lexicon"`
	SourcePriority []string               `yaml:"source_priority"`
	IndustryTree   []*model.IndustryNode  `yaml:"industry_tree"`
}

// DefaultRuleSet 内置规则配置
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Classification: classifier.DefaultRules(),
		Vocabulary:     classifier.DefaultVocabulary(),
		Lexicon:        scorer.DefaultLexicon(),
		SourcePriority: []string{"wind", "eastmoney", "static", "csv", "cls", "auto"},
	}
}

// LoadRuleSet 从文件加载规则配置，path 为空时返回内置配置。
// 行业树不满足不变量时报错，不静默修正。
func LoadRuleSet(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取规则文件失败: %w", err)
	}

	ruleSet := DefaultRuleSet()
	if err := yaml.Unmarshal(data, ruleSet); err != nil {
		return nil, fmt.Errorf("解析规则文件失败: %w", err)
	}

	if err := ValidateIndustryTree(ruleSet.IndustryTree); err != nil {
		return nil, fmt.Errorf("行业树校验失败: %w", err)
	}

	return ruleSet, nil
}

// ValidateIndustryTree 校验行业树不变量：
// 根节点 level 为 1 且无父节点；非根节点的父节点必须存在且 level 恰好小 1。
func ValidateIndustryTree(nodes []*model.IndustryNode) error {
	byCode := make(map[string]*model.IndustryNode, len(nodes))
	for _, node := range nodes {
		if node.Code == "" {
			return fmt.Errorf("存在缺少代码的行业节点")
		}
		if _, dup := byCode[node.Code]; dup {
			return fmt.Errorf("行业代码重复: %s", node.Code)
		}
		if node.Level < 1 {
			return fmt.Errorf("行业节点 %s 的层级非法: %d", node.Code, node.Level)
		}
		byCode[node.Code] = node
	}

	for _, node := range nodes {
		if node.Level == 1 {
			if node.ParentCode != nil {
				return fmt.Errorf("根节点 %s 不应有父节点", node.Code)
			}
			continue
		}
		if node.ParentCode == nil {
			return fmt.Errorf("非根节点 %s 缺少父节点", node.Code)
		}
		parent, ok := byCode[*node.ParentCode]
		if !ok {
			return fmt.Errorf("节点 %s 的父节点 %s 不存在", node.Code, *node.ParentCode)
		}
		if parent.Level != node.Level-1 {
			return fmt.Errorf("节点 %s 的父节点 %s 层级不匹配", node.Code, parent.Code)
		}
	}
	return nil
}
