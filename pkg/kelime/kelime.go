package kelime

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Version returns the current version of the package.
func Version() string { return "0.2.0" }

// Normalize lowercases s for use as a dictionary key.
// Turkish casing rules apply, so the dotted and dotless I stay distinct:
// "İ" becomes "i" and "I" becomes "ı". Ş, Ü, Ç, Ö, Ğ, Â, Î and Û map to their
// lowercase forms and the rest of the string is lowercased as usual.
func Normalize(s string) string {
	// A Caser keeps state between calls, so build one per call.
	return cases.Lower(language.Turkish).String(s)
}

// Display returns the form of a word shown on a flashcard.
func Display(s string) string {
	return cases.Upper(language.Und).String(s)
}
