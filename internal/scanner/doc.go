// Package scanner locates field clauses inside free-form boolean text.
//
// A clause has the shape
//
//	[!]<field> <condition> "<value>"
//	[!]<field> <condition> [<item>, <item>, ...]
//
// with at least one whitespace byte between the parts. Everything else
// (&&, ||, parentheses, stray words) is interstitial text that is passed
// through untouched. Offsets are byte offsets into the input and clause
// spans are inclusive of the closing quote or bracket.
package scanner
