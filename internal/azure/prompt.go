package azure

import (
	"fmt"
	"time"

	"symptom-checker/backend/internal/model"
)

// DateTimeLayout renders e.g. "Thursday, October 15, 2026 at 3:04 PM UTC".
const DateTimeLayout = "Monday, January 2, 2006 at 3:04 PM MST"

const systemPromptTemplate = `You are a helpful AI assistant for a healthcare application called %q.
The current date and time is: %s.
If the user asks about time or date, use this information.`

// SystemTurn renders the system instruction for the given instant. It must be
// called per request since the embedded clock reading goes stale.
func SystemTurn(appName string, now time.Time, loc *time.Location) model.ChatTurn {
	if loc != nil {
		now = now.In(loc)
	}
	return model.ChatTurn{
		Role:    model.RoleSystem,
		Content: fmt.Sprintf(systemPromptTemplate, appName, now.Format(DateTimeLayout)),
	}
}
