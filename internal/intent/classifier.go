// Package intent classifies user utterances into task-management intents.
// Classification is advisory: it feeds logging and telemetry and never gates
// which tools the model may call.
package intent

import (
	"regexp"
	"strings"
)

// Intent is a classified user intention.
type Intent string

const (
	AddTask      Intent = "ADD_TASK"
	UpdateTask   Intent = "UPDATE_TASK"
	DeleteTask   Intent = "DELETE_TASK"
	ListTasks    Intent = "LIST_TASKS"
	CompleteTask Intent = "COMPLETE_TASK"
	Search       Intent = "SEARCH"
	Analytics    Intent = "ANALYTICS"
	Unclear      Intent = "UNCLEAR"
)

// Keyword families cover English, Roman Urdu and Urdu script.
var (
	addKeywords = []string{
		"add", "create", "new", "make", "remind", "remember", "schedule", "set",
		"buy", "call", "send", "write", "book", "plan", "organize",
		"banao", "banana", "yaad", "dilao", "karna", "karwana",
		"بنانا", "بناؤ", "یاد", "دلانا", "کرنا",
	}

	updateKeywords = []string{
		"update", "change", "modify", "edit", "move", "reschedule", "shift", "postpone",
		"rename", "alter", "adjust",
		"badlo", "badalna", "tabdeel",
		"بدلنا", "بدلو", "تبدیل",
	}

	deleteKeywords = []string{
		"delete", "remove", "cancel", "discard", "drop", "clear",
		"hatao", "khatam", "mitao",
		"ڈیلیٹ", "ہٹاؤ", "ختم", "مٹاؤ",
	}

	listKeywords = []string{
		"list", "show", "display", "view", "see", "get", "what", "fetch", "all",
		"dikhao", "dekho", "batao", "sab", "saray",
		"دکھاؤ", "دیکھو", "بتاؤ", "سب", "سارے",
	}

	completeKeywords = []string{
		"complete", "done", "finish", "mark", "tick", "check",
		"mukammal", "hogaya", "karliya", "khatam",
		"مکمل", "ہوگیا", "کرلیا", "ختم",
	}

	searchKeywords = []string{
		"search", "find", "look", "where",
		"dhundo", "khojo", "talash",
		"ڈھونڈو", "کھوجو", "تلاش",
	}

	analyticsKeywords = []string{
		"stats", "statistics", "summary", "analytics", "how many", "count",
	}

	// Explicit update verbs outrank the generic add family when both match.
	explicitUpdateKeywords = []string{"update", "change", "modify", "edit", "move", "reschedule"}

	// Unmarked action verbs imply task creation unless the user is asking
	// for a listing.
	actionVerbs = []string{"buy", "call", "send", "email", "write", "book", "pay", "clean", "fix"}

	taskIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)task\s+#?\d+`),
		regexp.MustCompile(`(?i)task\s+id\s+\d+`),
		regexp.MustCompile(`(?i)id[:\s]+\d+`),
		regexp.MustCompile(`#\d+`),
	}
)

// Classify maps a user utterance to an Intent. History is accepted for parity
// with the conversational call site but the rules are per-utterance.
func Classify(text string, history []string) Intent {
	msg := strings.ToLower(strings.TrimSpace(text))

	// Add is the most common intent, but explicit update verbs override it.
	if containsAny(msg, addKeywords) && !containsAny(msg, explicitUpdateKeywords) {
		return AddTask
	}

	if containsAny(msg, updateKeywords) {
		if hasTaskID(msg) || containsAny(msg, explicitUpdateKeywords) {
			return UpdateTask
		}
	}

	if containsAny(msg, completeKeywords) {
		return CompleteTask
	}

	if containsAny(msg, deleteKeywords) {
		return DeleteTask
	}

	if containsAny(msg, searchKeywords) {
		return Search
	}

	if containsAny(msg, listKeywords) {
		return ListTasks
	}

	if containsAny(msg, analyticsKeywords) {
		return Analytics
	}

	// "buy groceries", "call mom": implicit creation, unless it reads like a
	// listing request.
	if containsAny(msg, actionVerbs) && !containsAny(msg, []string{"show", "list", "what", "display"}) {
		return AddTask
	}

	return Unclear
}

// Confidence scores the classification in [0,1]. Canonical phrasings score
// high; weak signals fall back to a medium default. The score is telemetry
// only and never gates execution.
func Confidence(text string, in Intent) float64 {
	msg := strings.ToLower(text)

	switch in {
	case AddTask:
		if containsAny(msg, []string{"add task", "create task", "new task", "remind me"}) {
			return 0.95
		}
		if containsAny(msg, addKeywords[:10]) {
			return 0.85
		}
		return 0.70
	case UpdateTask:
		if hasTaskID(msg) && containsAny(msg, []string{"update", "change", "modify"}) {
			return 0.95
		}
		if containsAny(msg, updateKeywords[:5]) {
			return 0.85
		}
		return 0.70
	case DeleteTask:
		if hasTaskID(msg) && containsAny(msg, []string{"delete", "remove"}) {
			return 0.95
		}
		return 0.80
	case ListTasks:
		if containsAny(msg, []string{"show all", "list all", "show my"}) {
			return 0.90
		}
		return 0.75
	}

	return 0.60
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func hasTaskID(text string) bool {
	for _, p := range taskIDPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
