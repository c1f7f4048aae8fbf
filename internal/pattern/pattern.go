// Package pattern expands {...} placeholder tokens in message templates.
package pattern

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default lengths for the bare token forms.
const (
	DefaultRandomLen      = 8
	DefaultRandomDigitLen = 6
	DefaultRandomUpperLen = 8
)

const (
	alnumChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	digitChars = "0123456789"
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	randomRe      = regexp.MustCompile(`\{random:(\d+)\}`)
	randomDigitRe = regexp.MustCompile(`\{random_digit:(\d+)\}`)
	randomUpperRe = regexp.MustCompile(`\{random_upper:(\d+)\}`)
)

// Resolve expands every recognized token in text. link substitutes {link};
// when link is empty the {link} token is left as literal text. Unknown
// tokens are left untouched.
//
// Each parameterized occurrence ({random:N} and friends) gets its own fresh
// value. The bare forms ({random}, {random_digit}, {random_upper}) resolve
// to a single value shared by every occurrence in the template; this
// matches the long-standing behavior callers and tests rely on.
func Resolve(text, link string) string {
	if text == "" {
		return text
	}

	result := text
	result = replaceEach(result, randomRe, randomString)
	result = strings.ReplaceAll(result, "{random}", randomString(DefaultRandomLen))

	result = replaceEach(result, randomDigitRe, randomDigits)
	result = strings.ReplaceAll(result, "{random_digit}", randomDigits(DefaultRandomDigitLen))

	result = replaceEach(result, randomUpperRe, randomUpper)
	result = strings.ReplaceAll(result, "{random_upper}", randomUpper(DefaultRandomUpperLen))

	now := time.Now()
	result = strings.ReplaceAll(result, "{date}", now.Format("2006-01-02"))
	result = strings.ReplaceAll(result, "{time}", now.Format("15:04:05"))
	result = strings.ReplaceAll(result, "{uuid}", uuid.NewString()[:8])

	if link != "" {
		result = strings.ReplaceAll(result, "{link}", link)
	}

	return result
}

// replaceEach resolves every match of re separately, so identical tokens
// yield distinct values.
func replaceEach(s string, re *regexp.Regexp, gen func(int) string) string {
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		s = strings.Replace(s, m[0], gen(n), 1)
	}
	return s
}

func pick(chars string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))]
	}
	return string(b)
}

func randomString(n int) string { return pick(alnumChars, n) }
func randomDigits(n int) string { return pick(digitChars, n) }
func randomUpper(n int) string  { return pick(upperChars, n) }
