package bot

import (
	"strconv"
	"strings"
)

const (
	callbackSeparator = "_"
	actionDetails     = "details"
)

// callbackToken is the "<action>_<value>" payload attached to inline buttons.
type callbackToken struct {
	Action string
	Value  string
}

// parseCallbackToken splits data once on the first separator.
func parseCallbackToken(data string) (callbackToken, bool) {
	action, value, ok := strings.Cut(data, callbackSeparator)
	if !ok || action == "" {
		return callbackToken{}, false
	}
	return callbackToken{Action: action, Value: value}, true
}

func (t callbackToken) String() string {
	return t.Action + callbackSeparator + t.Value
}

func detailsToken(movieID int64) string {
	return callbackToken{Action: actionDetails, Value: strconv.FormatInt(movieID, 10)}.String()
}
