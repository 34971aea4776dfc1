package handlers

const (
	ScopeTasksWrite      = "tasks:write"
	ScopeResilienceRead  = "resilience:read"
	ScopeResilienceAdmin = "resilience:admin"
)
