package highlight

// Shared single-line patterns.
const (
	patLineCommentSlash = `//.*$`
	patLineCommentHash  = `#.*$`
	patDoubleString     = `"(?:[^"\\]|\\.)*"`
	patSingleString     = `'(?:[^'\\]|\\.)*'`
	patCharLiteral      = `'(?:[^'\\]|\\.)'`
	patHex              = `\b0[xX][0-9a-fA-F_]+\b`
	patOctal            = `\b0[oO][0-7_]+\b`
	patBinary           = `\b0[bB][01_]+\b`
	patDecimal          = `\b\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?\b`
)

// Builtins returns the built-in grammars.
func Builtins() []*RuleTokenizer {
	return []*RuleTokenizer{
		GoTokenizer(),
		PythonTokenizer(),
		JavaScriptTokenizer(),
		RustTokenizer(),
		MarkdownTokenizer(),
	}
}

// GoTokenizer returns a tokenizer for Go.
func GoTokenizer() *RuleTokenizer {
	t := NewRuleTokenizer("go", ".go")

	t.AddRegion("block-comment", "/*", "*/", "comment.block")
	t.AddRegion("raw-string", "`", "`", "string.quoted.raw")

	t.AddRule(patLineCommentSlash, "comment.line.double-slash")
	t.AddRule(patDoubleString, "string.quoted.double")
	t.AddRule(patCharLiteral, "constant.character")
	t.AddRule(patHex, "constant.numeric.hex")
	t.AddRule(patOctal, "constant.numeric.octal")
	t.AddRule(patBinary, "constant.numeric.binary")
	t.AddRule(patDecimal, "constant.numeric")

	t.AddKeywords("keyword.control",
		"if", "else", "for", "range", "switch", "case", "default",
		"break", "continue", "return", "goto", "fallthrough", "select",
		"defer", "go")
	t.AddKeywords("storage.type",
		"func", "var", "const", "type", "struct", "interface", "map", "chan")
	t.AddKeywords("keyword.other", "package", "import")
	t.AddKeywords("constant.language", "true", "false", "nil", "iota")
	t.AddKeywords("support.type",
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "complex64", "complex128",
		"bool", "byte", "rune", "string", "error", "any")
	t.AddKeywords("support.function.builtin",
		"make", "new", "len", "cap", "append", "copy", "delete",
		"close", "panic", "recover", "print", "println",
		"real", "imag", "complex", "min", "max", "clear")

	return t
}

// PythonTokenizer returns a tokenizer for Python.
func PythonTokenizer() *RuleTokenizer {
	t := NewRuleTokenizer("python", ".py", ".pyw", ".pyi")

	t.AddEscapedRegion("docstring-double", `"""`, `"""`, '\\', "string.quoted.docstring")
	t.AddEscapedRegion("docstring-single", `'''`, `'''`, '\\', "string.quoted.docstring")

	t.AddRule(patLineCommentHash, "comment.line.number-sign")
	t.AddRule(patDoubleString, "string.quoted.double")
	t.AddRule(patSingleString, "string.quoted.single")
	t.AddRule(patHex, "constant.numeric.hex")
	t.AddRule(patOctal, "constant.numeric.octal")
	t.AddRule(patBinary, "constant.numeric.binary")
	t.AddRule(`\b\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?j?\b`, "constant.numeric")
	t.AddRule(`@[\w.]+`, "entity.name.function.decorator")

	t.AddKeywords("keyword.control",
		"if", "elif", "else", "for", "while", "break", "continue",
		"return", "try", "except", "finally", "raise", "with", "as",
		"match", "case", "yield", "pass")
	t.AddKeywords("storage.type", "def", "class", "lambda", "async", "await")
	t.AddKeywords("keyword.other",
		"import", "from", "global", "nonlocal", "assert", "del")
	t.AddKeywords("keyword.operator.logical", "in", "is", "not", "and", "or")
	t.AddKeywords("constant.language", "True", "False", "None")
	t.AddKeywords("support.type",
		"int", "float", "str", "bool", "list", "dict", "set", "tuple",
		"bytes", "bytearray", "complex", "frozenset", "type", "object")
	t.AddKeywords("support.function.builtin",
		"print", "len", "range", "enumerate", "zip", "map", "filter",
		"open", "input", "isinstance", "issubclass", "hasattr", "getattr",
		"setattr", "delattr", "callable", "iter", "next", "sorted", "reversed",
		"sum", "min", "max", "abs", "round", "super")

	return t
}

// JavaScriptTokenizer returns a tokenizer for JavaScript and TypeScript.
func JavaScriptTokenizer() *RuleTokenizer {
	t := NewRuleTokenizer("javascript", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx")

	t.AddRegion("block-comment", "/*", "*/", "comment.block")
	t.AddEscapedRegion("template", "`", "`", '\\', "string.template")

	t.AddRule(patLineCommentSlash, "comment.line.double-slash")
	t.AddRule(patDoubleString, "string.quoted.double")
	t.AddRule(patSingleString, "string.quoted.single")
	t.AddRule(patHex, "constant.numeric.hex")
	t.AddRule(patOctal, "constant.numeric.octal")
	t.AddRule(patBinary, "constant.numeric.binary")
	t.AddRule(`\b\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?n?\b`, "constant.numeric")

	t.AddKeywords("keyword.control",
		"if", "else", "for", "while", "do", "switch", "case", "default",
		"break", "continue", "return", "throw", "try", "catch", "finally",
		"yield", "await")
	t.AddKeywords("storage.type",
		"var", "let", "const", "function", "class", "interface", "type",
		"enum", "async", "extends", "implements")
	t.AddKeywords("keyword.operator",
		"new", "delete", "typeof", "instanceof", "in", "of", "void")
	t.AddKeywords("keyword.other",
		"import", "export", "from", "as", "default")
	t.AddKeywords("constant.language",
		"true", "false", "null", "undefined", "NaN", "Infinity")
	t.AddKeywords("variable.language", "this", "super")

	return t
}

// RustTokenizer returns a tokenizer for Rust. Block comments nest.
func RustTokenizer() *RuleTokenizer {
	t := NewRuleTokenizer("rust", ".rs")

	t.AddNestedRegion("block-comment", "/*", "*/", "comment.block")
	t.AddEscapedRegion("string", `"`, `"`, '\\', "string.quoted.double")

	t.AddRule(patLineCommentSlash, "comment.line.double-slash")
	t.AddRule(`b?`+patCharLiteral, "constant.character")
	t.AddRule(`'[A-Za-z_]\w*\b`, "storage.modifier.lifetime")
	t.AddRule(`[A-Za-z_]\w*!`, "entity.name.function.macro")
	t.AddRule(patHex, "constant.numeric.hex")
	t.AddRule(patOctal, "constant.numeric.octal")
	t.AddRule(patBinary, "constant.numeric.binary")
	t.AddRule(`\b\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?(?:[iuf](?:8|16|32|64|128|size))?\b`, "constant.numeric")

	t.AddKeywords("keyword.control",
		"if", "else", "for", "while", "loop", "match", "break", "continue",
		"return", "in", "await")
	t.AddKeywords("storage.type",
		"fn", "let", "const", "static", "struct", "enum", "trait", "type",
		"impl", "mod", "union")
	t.AddKeywords("storage.modifier",
		"pub", "mut", "ref", "move", "unsafe", "async", "dyn", "extern")
	t.AddKeywords("keyword.other",
		"use", "crate", "super", "self", "Self", "where", "as")
	t.AddKeywords("constant.language", "true", "false")
	t.AddKeywords("support.type",
		"i8", "i16", "i32", "i64", "i128", "isize",
		"u8", "u16", "u32", "u64", "u128", "usize",
		"f32", "f64", "bool", "char", "str", "String", "Vec", "Option", "Result")

	return t
}

// MarkdownTokenizer returns a tokenizer for Markdown.
func MarkdownTokenizer() *RuleTokenizer {
	t := NewRuleTokenizer("markdown", ".md", ".markdown").WithScopeName("text.html.markdown")

	t.AddRegion("fenced-code", "```", "```", "markup.fenced_code.block")
	t.AddRegion("html-comment", "<!--", "-->", "comment.block.html")

	t.AddRule(`#{1,6}\s.*$`, "markup.heading")
	t.AddRule(`>.*$`, "markup.quote")
	t.AddRule("`[^`]+`", "markup.inline.raw")
	t.AddRule(`\*\*[^*]+\*\*|__[^_]+__`, "markup.bold")
	t.AddRule(`\*[^*\s][^*]*\*|_[^_\s][^_]*_`, "markup.italic")
	t.AddRule(`!?\[[^\]]*\]\([^)]*\)`, "markup.underline.link")
	t.AddRule(`(?:[-*+]|\d+\.)\s`, "punctuation.definition.list")

	return t
}
