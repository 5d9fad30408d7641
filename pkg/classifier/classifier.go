// pkg/classifier/classifier.go
package classifier

import (
	"strings"

	"StockAtlas/pkg/model"
)

const defaultMaxKeywords = 10

// 自动映射的启发式置信度；权威名单校验过的记录为 1.0
const autoMappedConfidence = 0.8

// Classification 股票分类结果
type Classification struct {
	IndustryCode  *string
	IndustryName  *string
	Confidence    float64
	MappingStatus model.MappingStatus
}

// Extraction 热点抽取结果
type Extraction struct {
	Keywords          []string
	RelatedCompanies  []string
	RelatedIndustries []string // 行业代码
}

// Classifier 规则分类器。规则和词表在构造时注入，运行期间不可变。
type Classifier struct {
	rules *Rules
	vocab *Vocabulary
}

// New 创建分类器
func New(rules *Rules, vocab *Vocabulary) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Classifier{rules: rules, vocab: vocab}
}

// Classify 对股票名称做有序规则匹配。按规则声明顺序扫描，
// 第一条关键词是名称子串的规则生效，不做最长匹配。
// 未命中时置信度为 0，映射状态为 pending。
func (c *Classifier) Classify(name string, validated bool) Classification {
	for _, rule := range c.rules.Ordered {
		if rule.Keyword == "" || !strings.Contains(name, rule.Keyword) {
			continue
		}

		code := rule.IndustryCode
		industryName := c.rules.IndustryNames[code]
		result := Classification{
			IndustryCode:  &code,
			Confidence:    autoMappedConfidence,
			MappingStatus: model.MappingAutoMapped,
		}
		if industryName != "" {
			result.IndustryName = &industryName
		}
		if validated {
			result.Confidence = 1.0
			result.MappingStatus = model.MappingConfirmed
		}
		return result
	}

	return Classification{Confidence: 0.0, MappingStatus: model.MappingPending}
}

// Extract 扫描标题加正文，抽取财经关键词、关联公司和关联行业。
// 三类结果都是按词表顺序插入的去重集合，达到上限后忽略后续命中。
func (c *Classifier) Extract(title, content string) Extraction {
	text := title + " " + content
	limit := c.vocab.MaxKeywords
	if limit <= 0 {
		limit = defaultMaxKeywords
	}

	var result Extraction
	seen := make(map[string]bool)
	for _, kw := range c.vocab.FinanceKeywords {
		if len(result.Keywords) >= limit {
			break
		}
		if kw != "" && !seen[kw] && strings.Contains(text, kw) {
			seen[kw] = true
			result.Keywords = append(result.Keywords, kw)
		}
	}

	seen = make(map[string]bool)
	for _, company := range c.vocab.CompanyNames {
		if len(result.RelatedCompanies) >= limit {
			break
		}
		if company != "" && !seen[company] && strings.Contains(text, company) {
			seen[company] = true
			result.RelatedCompanies = append(result.RelatedCompanies, company)
		}
	}

	seen = make(map[string]bool)
	for _, term := range c.vocab.IndustryTerms {
		if len(result.RelatedIndustries) >= limit {
			break
		}
		if term.Term != "" && !seen[term.Code] && strings.Contains(text, term.Term) {
			seen[term.Code] = true
			result.RelatedIndustries = append(result.RelatedIndustries, term.Code)
		}
	}

	return result
}
