package agent

import (
	"errors"
	"testing"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Script
	}{
		{"english", "add a task to buy groceries", ScriptLatin},
		{"roman urdu", "yaad dilao dawai lena", ScriptLatin},
		{"urdu script", "مجھے یاد دلانا", ScriptArabic},
		{"arabic supplement", "ݐݑݒ", ScriptArabic},
		{"arabic presentation forms", "ﻣﻬﻢ", ScriptArabic},
		{"hindi devanagari", "कृपया कार्य जोड़ें", ScriptDevanagari},
		{"mixed urdu and devanagari", "یاد दिलाओ", ScriptDevanagari},
		{"mixed english and urdu", "add task برائے کل", ScriptArabic},
		{"empty", "", ScriptLatin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectScript(tt.text); got != tt.want {
				t.Errorf("DetectScript(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestCheckLanguage(t *testing.T) {
	if err := CheckLanguage("buy milk"); err != nil {
		t.Errorf("english rejected: %v", err)
	}
	if err := CheckLanguage("دودھ خریدنا"); err != nil {
		t.Errorf("urdu rejected: %v", err)
	}
	if err := CheckLanguage("दूध खरीदो"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("hindi: err = %v, want ErrUnsupportedLanguage", err)
	}
}
