package agent

import (
	"errors"
)

// Script is a writing-system family detected by codepoint ranges.
type Script string

const (
	ScriptLatin      Script = "latin"
	ScriptArabic     Script = "arabic"
	ScriptDevanagari Script = "devanagari"
)

// ErrUnsupportedLanguage is returned by the language gate for utterances in a
// recognized but unsupported script.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageReply is the fixed apology returned for rejected
// utterances. It is never varied so clients can rely on it.
const UnsupportedLanguageReply = "Sorry, Hindi is not supported. Please use English or Urdu (اردو)."

// DetectScript classifies an utterance by script ranges. Devanagari wins over
// Arabic when both appear, since any Devanagari content marks the message as
// Hindi. Arabic presentation forms and the Arabic supplement block — what the
// transcription step emits when it mislabels spoken Urdu — are folded into
// the supported Arabic family rather than treated as a script of their own.
func DetectScript(text string) Script {
	arabic := false
	for _, r := range text {
		switch {
		case r >= 0x0900 && r <= 0x097F:
			return ScriptDevanagari
		case r >= 0x0600 && r <= 0x06FF,
			r >= 0x0750 && r <= 0x077F,
			r >= 0xFB50 && r <= 0xFDFF,
			r >= 0xFE70 && r <= 0xFEFF:
			arabic = true
		}
	}
	if arabic {
		return ScriptArabic
	}
	return ScriptLatin
}

// CheckLanguage rejects utterances in the Devanagari script. English (Latin)
// and Urdu (Arabic script) pass.
func CheckLanguage(text string) error {
	if DetectScript(text) == ScriptDevanagari {
		return ErrUnsupportedLanguage
	}
	return nil
}
