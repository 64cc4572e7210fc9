package theme

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	themeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	symbols    = themeLexer.Symbols()
	tokenNames = tokenNameIndex(symbols)
	// 命令参数遇到这些记号即结束
	argStops    = map[lexer.TokenType]bool{symbols["Newline"]: true, symbols["LBrace"]: true, symbols["RBrace"]: true}
	symbolToken = symbols["Symbol"]
	stringToken = symbols["String"]

	documentParser = participle.MustBuild[Document](
		participle.Lexer(themeLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document 是主题文件的根节点：card <名称> <版本> { ... }。
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'card' @Ident"`
	Version string         `parser:"@Ident"`
	Block   *Block         `parser:"@@ Newline*"`
}

// Block 是花括号包围的语句列表，分号或换行分隔。
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement 为赋值、命令或独立字符串之一。
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment 形如 key: value。
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Command 既可以是小节（fonts { ... }），也可以是位置参数指令（tier 10 120pt）。
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// TextLiteral 是块内单独成行的字符串，例如 fonts 小节里的字体路径。
type TextLiteral struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Value StringLiteral  `parser:"@String"`
}

// Value 是赋值右侧的值。
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
}

// ArrayValue 对应 [ ... ] 列表。
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Lexeme 是命令的一个参数记号，保留原文与位置以便报错。
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse 实现 participle.Parseable。
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if isArgEnd(tok) {
		return participle.NextMatch
	}
	lexeme, err := toLexeme(*lex.Next())
	if err != nil {
		return err
	}
	*l = lexeme
	return nil
}

// StringLiteral 在捕获时按 Go 语法去掉引号。
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串字面量为空")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// ParseDocument 从 io.Reader 解析主题源码，只做语法分析。
func ParseDocument(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseDocumentString 同 ParseDocument，输入为字符串。
func ParseDocumentString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

func isArgEnd(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	if argStops[tok.Type] {
		return true
	}
	return tok.Type == symbolToken && (tok.Value == ";" || tok.Value == ":")
}

func toLexeme(tok lexer.Token) (Lexeme, error) {
	l := Lexeme{Type: tokenNames[tok.Type], Value: tok.Value, Raw: tok.Value, Pos: tok.Pos}
	if l.Type == "" {
		l.Type = fmt.Sprintf("#%d", tok.Type)
	}
	if tok.Type == stringToken {
		v, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Lexeme{}, fmt.Errorf("%s: %w", tok.Pos, err)
		}
		l.Value = v
	}
	return l, nil
}

func tokenNameIndex(symbols map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		out[tt] = name
	}
	return out
}
