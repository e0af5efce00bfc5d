package sqlite

import "strings"

// statementTail returns the text after the first complete statement, or ""
// when the first statement runs to the end. Quotes, comments and the
// BEGIN ... END; body of CREATE TRIGGER are not split on.
func statementTail(sql string) string {
	var (
		lead       []string // first keywords, upper-cased
		inTrigger  bool
		afterSemi  bool // last token was ';' inside a trigger body
		endPending bool // END directly followed a ';' inside a trigger body
	)
	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case isSpace(c):
			i++
		case c == '-' && strings.HasPrefix(sql[i:], "--"):
			i = skipLine(sql, i)
		case c == '/' && strings.HasPrefix(sql[i:], "/*"):
			i = skipBlockComment(sql, i)
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sql, i, c)
			afterSemi, endPending = false, false
		case c == '[':
			i = skipQuoted(sql, i, ']')
			afterSemi, endPending = false, false
		case c == ';':
			if !inTrigger || endPending {
				return sql[i+1:]
			}
			afterSemi, endPending = true, false
			i++
		case isWordByte(c):
			j := i
			for j < len(sql) && isWordByte(sql[j]) {
				j++
			}
			word := strings.ToUpper(sql[i:j])
			if len(lead) < 5 {
				lead = append(lead, word)
				inTrigger = inTrigger || isCreateTrigger(lead)
			}
			endPending = inTrigger && afterSemi && word == "END"
			afterSemi = false
			i = j
		default:
			afterSemi, endPending = false, false
			i++
		}
	}
	return ""
}

// blank reports whether s holds only whitespace, comments and semicolons.
func blank(s string) bool {
	for i := 0; i < len(s); {
		switch {
		case isSpace(s[i]) || s[i] == ';':
			i++
		case strings.HasPrefix(s[i:], "--"):
			i = skipLine(s, i)
		case strings.HasPrefix(s[i:], "/*"):
			i = skipBlockComment(s, i)
		default:
			return false
		}
	}
	return true
}

func isCreateTrigger(words []string) bool {
	w := words
	if len(w) > 0 && w[0] == "EXPLAIN" {
		w = w[1:]
		if len(w) >= 2 && w[0] == "QUERY" && w[1] == "PLAN" {
			w = w[2:]
		}
	}
	if len(w) < 2 || w[0] != "CREATE" {
		return false
	}
	w = w[1:]
	if w[0] == "TEMP" || w[0] == "TEMPORARY" {
		w = w[1:]
	}
	return len(w) > 0 && w[0] == "TRIGGER"
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func skipLine(s string, i int) int {
	if n := strings.IndexByte(s[i:], '\n'); n >= 0 {
		return i + n + 1
	}
	return len(s)
}

func skipBlockComment(s string, i int) int {
	if n := strings.Index(s[i+2:], "*/"); n >= 0 {
		return i + 2 + n + 2
	}
	return len(s)
}

// skipQuoted returns the index after the quoted token starting at i. A
// doubled closing quote is an escape, except for [bracketed] names.
func skipQuoted(s string, i int, closing byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] != closing {
			continue
		}
		if closing != ']' && j+1 < len(s) && s[j+1] == closing {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}
