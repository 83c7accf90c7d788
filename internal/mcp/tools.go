package mcp

func intPtr(v int) *int { return &v }

// ToolDefinitions returns the MCP tool definitions for the timebox daemon.
func ToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name: "start_timer",
			Description: "Start a new focus timer. Only one timer can be active at a time; " +
				"starting while one runs fails. The session is recorded as agent-initiated.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"duration_minutes": {Type: "number", Description: "Planned length in minutes (1-1440)",
						Minimum: intPtr(1), Maximum: intPtr(1440)},
					"label": {Type: "string", Description: "What this focus session is for (1-64 chars)"},
				},
				Required: []string{"duration_minutes", "label"},
			},
		},
		{
			Name: "stop_timer",
			Description: "Stop the currently running timer. Fails if no timer is running. " +
				"If the timer has just reached zero it completes instead of stopping.",
			InputSchema: InputSchema{
				Type: "object",
			},
		},
		{
			Name: "get_status",
			Description: "Get the current timer status: the active session (if any), " +
				"remaining seconds, and whether a timer is running. Never fails.",
			InputSchema: InputSchema{
				Type: "object",
			},
		},
		{
			Name: "get_history",
			Description: "List past sessions, newest first, with optional inclusive date " +
				"range filtering on the session start time.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"start_date": {Type: "string", Description: "Inclusive range start (RFC 3339 or YYYY-MM-DD)"},
					"end_date":   {Type: "string", Description: "Inclusive range end (RFC 3339 or YYYY-MM-DD)"},
				},
			},
		},
	}
}
