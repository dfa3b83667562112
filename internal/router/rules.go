package router

import "strings"

// rule matches when every word of one of its phrases appears in the text.
// Word-set matching keeps the rules robust against fillers the transcriber
// inserts, e.g. "stop talking please" still matches {"stop", "talking"}.
type rule struct {
	intent  Intent
	phrases [][]string
}

// rules are evaluated in order; the first match wins. IntentStop must stay
// ahead of the timer rules so "stop talking" is never read as a timer
// command, while "stop the timer" is caught by the cancel rule first.
var rules = []rule{
	{
		intent: IntentTimerCancel,
		phrases: [][]string{
			{"cancel", "timer"},
			{"cancel", "alarm"},
			{"delete", "timer"},
			{"delete", "alarm"},
			{"stop", "timer"},
			{"stop", "alarm"},
			{"remove", "timer"},
			{"remove", "alarm"},
		},
	},
	{
		intent: IntentTimerList,
		phrases: [][]string{
			{"list", "timers"},
			{"list", "alarms"},
			{"what", "timers"},
			{"what", "alarms"},
			{"which", "timers"},
			{"which", "alarms"},
		},
	},
	{
		intent: IntentStop,
		phrases: [][]string{
			{"stop", "talking"},
			{"shut", "up"},
			{"be", "quiet"},
			{"never", "mind"},
			{"nevermind"},
		},
	},
	{
		intent: IntentReset,
		phrases: [][]string{
			{"reset", "yourself"},
			{"reset", "conversation"},
			{"forget", "everything"},
			{"clear", "memory"},
		},
	},
	{
		intent: IntentLeave,
		phrases: [][]string{
			{"leave", "channel"},
			{"leave", "voice"},
			{"go", "away"},
			{"disconnect"},
		},
	},
	{
		intent: IntentTimerSet,
		phrases: [][]string{
			{"set", "timer"},
			{"set", "alarm"},
			{"start", "timer"},
			{"timer", "for"},
			{"alarm", "for"},
			{"remind", "me"},
		},
	},
	{
		intent: IntentSong,
		phrases: [][]string{
			{"play", "song"},
			{"play", "some"},
			{"put", "on"},
		},
	},
	{
		intent: IntentSearch,
		phrases: [][]string{
			{"search", "for"},
			{"look", "up"},
			{"google"},
		},
	},
}

// Classify maps cleaned text to an intent. Text that matches no rule is a
// chat request.
func (r *Router) Classify(text string) Intent {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(text)) {
		words[w] = struct{}{}
	}
	for _, ru := range rules {
		for _, phrase := range ru.phrases {
			if containsAll(words, phrase) {
				return ru.intent
			}
		}
	}
	return IntentChat
}

func containsAll(words map[string]struct{}, phrase []string) bool {
	for _, w := range phrase {
		if _, ok := words[w]; !ok {
			return false
		}
	}
	return true
}
