package domain

import "fmt"

// NamingKind 标识输出文件名的生成策略。四种策略互斥。
type NamingKind int

const (
	// NamingDerived：输出名 = 首个输入文件名（默认）。
	NamingDerived NamingKind = iota
	// NamingExplicit：输出名由配置/CLI 直接给出。
	NamingExplicit
	// NamingExtract：从首个输入文件名中按位置截取。
	NamingExtract
	// NamingSplit：首个输入文件名按正则切分后取第 N 段。
	NamingSplit
)

func (k NamingKind) String() string {
	switch k {
	case NamingExplicit:
		return "explicit"
	case NamingExtract:
		return "extract"
	case NamingSplit:
		return "split"
	default:
		return "derived"
	}
}

// NamingStrategy 是“带标签的变体”：Kind 决定哪些字段有意义。
//
//   - Explicit：Name
//   - Extract：From（从 1 开始）、Length
//   - Split：Regex、Index（从 1 开始）
//   - Derived：无参数
//
// 构造请使用下面的构造函数；参数合法性由 config 在加载阶段校验。
type NamingStrategy struct {
	Kind NamingKind

	Name string

	From   int
	Length int

	Regex string
	Index int
}

func DerivedNaming() NamingStrategy { return NamingStrategy{Kind: NamingDerived} }

func ExplicitNaming(name string) NamingStrategy {
	return NamingStrategy{Kind: NamingExplicit, Name: name}
}

func ExtractNaming(from, length int) NamingStrategy {
	return NamingStrategy{Kind: NamingExtract, From: from, Length: length}
}

func SplitNaming(regex string, index int) NamingStrategy {
	return NamingStrategy{Kind: NamingSplit, Regex: regex, Index: index}
}

func (s NamingStrategy) String() string {
	switch s.Kind {
	case NamingExplicit:
		return fmt.Sprintf("explicit(%q)", s.Name)
	case NamingExtract:
		return fmt.Sprintf("extract(from=%d, length=%d)", s.From, s.Length)
	case NamingSplit:
		return fmt.Sprintf("split(regex=%q, index=%d)", s.Regex, s.Index)
	default:
		return "derived"
	}
}
