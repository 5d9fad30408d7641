// pkg/classifier/rules.go
package classifier

// Rule 一条关键词到行业代码的映射规则
type Rule struct {
	Keyword      string `yaml:"keyword" json:"keyword"`
	IndustryCode string `yaml:"industry_code" json:"industry_code"`
}

// Rules 分类规则配置。规则列表是有序的：扫描按声明顺序进行，
// 第一条关键词命中的规则生效，后面更具体的规则不再参与。
// 调整顺序会改变历史数据的分类结果。
type Rules struct {
	Ordered       []Rule            `yaml:"rules"`
	IndustryNames map[string]string `yaml:"industry_names"` // 行业代码 -> 行业名称
}

// IndustryTerm 行业关键词到行业代码的映射，列表有序以保证抽取结果稳定
type IndustryTerm struct {
	Term string `yaml:"term" json:"term"`
	Code string `yaml:"code" json:"code"`
}

// Vocabulary 热点抽取词表
type Vocabulary struct {
	FinanceKeywords []string       `yaml:"finance_keywords"` // 财经关键词
	CompanyNames    []string       `yaml:"company_names"`    // 已知公司名
	IndustryTerms   []IndustryTerm `yaml:"industry_terms"`   // 行业关键词 -> 行业代码
	MaxKeywords     int            `yaml:"max_keywords"`     // 每类抽取上限，0 取默认值 10
}

// DefaultRules 内置规则表，生产环境通常由规则文件覆盖
func DefaultRules() *Rules {
	return &Rules{
		Ordered: []Rule{
			{Keyword: "银行", IndustryCode: "BK0475"},
			{Keyword: "证券", IndustryCode: "BK0473"},
			{Keyword: "保险", IndustryCode: "BK0474"},
			{Keyword: "白酒", IndustryCode: "BK0477"},
			{Keyword: "医药", IndustryCode: "BK0465"},
			{Keyword: "生物", IndustryCode: "BK0465"},
			{Keyword: "半导体", IndustryCode: "BK1036"},
			{Keyword: "芯片", IndustryCode: "BK1036"},
			{Keyword: "软件", IndustryCode: "BK0737"},
			{Keyword: "科技", IndustryCode: "BK0737"},
			{Keyword: "汽车", IndustryCode: "BK0481"},
			{Keyword: "地产", IndustryCode: "BK0451"},
			{Keyword: "钢铁", IndustryCode: "BK0479"},
			{Keyword: "煤炭", IndustryCode: "BK0437"},
			{Keyword: "电力", IndustryCode: "BK0428"},
			{Keyword: "能源", IndustryCode: "BK1015"},
		},
		IndustryNames: map[string]string{
			"BK0475": "银行",
			"BK0473": "证券",
			"BK0474": "保险",
			"BK0477": "酿酒行业",
			"BK0465": "医药制造",
			"BK1036": "半导体",
			"BK0737": "软件开发",
			"BK0481": "汽车整车",
			"BK0451": "房地产开发",
			"BK0479": "钢铁行业",
			"BK0437": "煤炭行业",
			"BK0428": "电力行业",
			"BK1015": "能源金属",
		},
	}
}

// DefaultVocabulary 内置热点抽取词表
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		FinanceKeywords: []string{
			"涨停", "跌停", "融资", "并购", "重组", "上市", "退市",
			"分红", "回购", "减持", "增持", "业绩", "财报", "IPO",
		},
		CompanyNames: []string{
			"平安银行", "招商银行", "贵州茅台", "宁德时代", "比亚迪",
			"中国平安", "万科A", "五粮液", "中芯国际", "腾讯控股",
		},
		IndustryTerms: []IndustryTerm{
			{Term: "银行", Code: "BK0475"},
			{Term: "证券", Code: "BK0473"},
			{Term: "白酒", Code: "BK0477"},
			{Term: "医药", Code: "BK0465"},
			{Term: "半导体", Code: "BK1036"},
			{Term: "芯片", Code: "BK1036"},
			{Term: "新能源", Code: "BK1015"},
			{Term: "汽车", Code: "BK0481"},
			{Term: "房地产", Code: "BK0451"},
		},
		MaxKeywords: 10,
	}
}
