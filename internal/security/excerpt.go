package security

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// TruncateSuffix は切り詰めたテキストの末尾に付ける文字列。
const TruncateSuffix = "..."

// StripHTML はHTMLからテキストノードのみを連結して返す。
// script/style要素の中身は含めない。連続する空白は1つにまとめる。
func StripHTML(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))

	var b strings.Builder
	skip := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isRawTextTag(string(name)) {
				skip++
			}
			if isBlockTag(string(name)) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isRawTextTag(string(name)) && skip > 0 {
				skip--
			}
			if isBlockTag(string(name)) {
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

// Truncate はテキストをmaxRunes文字以内に切り詰め、切り詰めた場合は "..." を付ける。
// maxRunesが0以下の場合はそのまま返す。
func Truncate(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + TruncateSuffix
}

// Excerpt はHTMLコンテンツから一覧表示用の抜粋を生成する。
func Excerpt(rawHTML string, maxRunes int) string {
	return Truncate(StripHTML(rawHTML), maxRunes)
}

func isRawTextTag(name string) bool {
	return name == "script" || name == "style"
}

func isBlockTag(name string) bool {
	switch name {
	case "p", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "div":
		return true
	}
	return false
}
