package agent

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
)

// Intent is what the keyword classifier makes of one message: either a tool
// call with arguments or a canned reply.
type Intent struct {
	Tool  string
	Args  map[string]any
	Reply string
}

const (
	untitledTask = "Untitled Task"

	replyCompleteWhich = "Which task would you like to complete? Please provide the task name or ID."
	replyDeleteWhich   = "Which task would you like to delete? Please provide the task name or ID."
	replyUpdateHow     = "To update a task, please provide the task ID and the new title or description."

	replyGreeting = "👋 Hi! I'm TaskAssistant.\n\n" +
		"I can help you manage your tasks. Try:\n" +
		"• \"Add task Buy groceries\"\n" +
		"• \"Show my tasks\"\n" +
		"• \"Complete task <id>\"\n" +
		"• \"Delete task <id>\""

	replyHelp = "🤖 I understand these commands:\n" +
		"• **Add/Create** — \"add task <title>\"\n" +
		"• **List/Show** — \"show my tasks\"\n" +
		"• **Complete** — \"complete task <id>\"\n" +
		"• **Delete** — \"delete task <id>\""
)

var (
	userIDPrefix = regexp.MustCompile(`^\s*\[user_id:[^\]]*\]\s*`)
	taskIDRe     = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

type keywordGroup struct {
	tool     string
	keywords []string
	// exact groups match whole words only; the others also match
	// inflections ("completed", "deleting", "adding").
	exact bool
}

// Checked in order; the first group with a hit wins.
var keywordGroups = []keywordGroup{
	{tool: dto.ToolAddTask, keywords: []string{"add", "create", "make"}},
	{tool: dto.ToolAddTask, keywords: []string{"new"}, exact: true},
	{tool: dto.ToolListTasks, keywords: []string{"list", "show", "view", "display", "my task", "all task", "get task"}},
	{tool: dto.ToolCompleteTask, keywords: []string{"complete", "done", "finish", "mark done"}},
	{tool: dto.ToolDeleteTask, keywords: []string{"delete", "remove"}},
	{tool: dto.ToolUpdateTask, keywords: []string{"update", "edit", "change", "rename"}},
	{tool: "greeting", keywords: []string{"hello", "hi", "hey", "help"}, exact: true},
}

// Most specific first.
var titlePrefixes = []string{
	"add task ", "create task ", "add a task ", "create a task ",
	"new task ", "make a task ", "add ", "create ", "make ", "new ",
}

// Classify maps a message to an intent without any state or I/O.
func Classify(text string) Intent {
	text = strings.TrimSpace(userIDPrefix.ReplaceAllString(text, ""))
	lower := strings.ToLower(text)
	// ids are hex and one starting "add" would otherwise read as a keyword
	words := splitWords(taskIDRe.ReplaceAllString(lower, " "))
	phrase := " " + strings.Join(words, " ") + " "

	for _, group := range keywordGroups {
		if !matchesAny(group, words, phrase) {
			continue
		}
		switch group.tool {
		case dto.ToolAddTask:
			return Intent{Tool: dto.ToolAddTask, Args: map[string]any{"title": extractTitle(text)}}
		case dto.ToolListTasks:
			return Intent{Tool: dto.ToolListTasks, Args: map[string]any{}}
		case dto.ToolCompleteTask:
			if id := taskIDRe.FindString(lower); id != "" {
				return Intent{Tool: dto.ToolCompleteTask, Args: map[string]any{"task_id": id}}
			}
			return Intent{Reply: replyCompleteWhich}
		case dto.ToolDeleteTask:
			if id := taskIDRe.FindString(lower); id != "" {
				return Intent{Tool: dto.ToolDeleteTask, Args: map[string]any{"task_id": id}}
			}
			return Intent{Reply: replyDeleteWhich}
		case dto.ToolUpdateTask:
			return Intent{Reply: replyUpdateHow}
		default:
			return Intent{Reply: replyGreeting}
		}
	}
	return Intent{Reply: replyHelp}
}

// Phrases match on word boundaries at the start and as a prefix at the end,
// so "my task" also hits "my tasks". Single keywords match a whole word in
// exact groups and a word starting with their stem otherwise.
func matchesAny(group keywordGroup, words []string, phrase string) bool {
	for _, kw := range group.keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(phrase, " "+kw) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == kw || (!group.exact && strings.HasPrefix(w, stem(kw))) {
				return true
			}
		}
	}
	return false
}

// stem drops a trailing "e" from longer verbs so "delete" covers "deleting"
// and "create" covers "creating". Short words keep it: "done" must not hit
// "don't".
func stem(kw string) string {
	if len(kw) >= 6 && strings.HasSuffix(kw, "e") {
		return kw[:len(kw)-1]
	}
	return kw
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func extractTitle(text string) string {
	title := text
	for _, p := range titlePrefixes {
		if len(text) >= len(p) && strings.EqualFold(text[:len(p)], p) {
			title = text[len(p):]
			break
		}
		if strings.EqualFold(text, strings.TrimSpace(p)) {
			title = ""
			break
		}
	}
	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"'`))
	if title == "" {
		return untitledTask
	}
	return title
}
